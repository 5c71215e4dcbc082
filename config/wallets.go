package config

import (
	"bufio"
	"os"
	"strings"
)

// walletPrefix is the address convention used to recognize wallet lines.
const walletPrefix = "0x"

// LoadWallets reads a newline-delimited wallet address list.
// Only lines starting with the 0x address prefix are kept; everything
// else (comments, headers, blank lines) is ignored. A missing or
// unreadable file yields an empty list, not an error; the caller
// decides whether zero wallets is worth running with.
func LoadWallets(path string) []string {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var wallets []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, walletPrefix) {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		wallets = append(wallets, line)
	}

	return wallets
}
