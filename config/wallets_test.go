package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWallets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wallets.txt")
	content := `# mining wallets
0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA

not-an-address
  0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB
0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got := LoadWallets(path)
	want := []string{
		"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
	}
	if len(got) != len(want) {
		t.Fatalf("LoadWallets() = %d wallets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wallet[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadWallets_MissingFile(t *testing.T) {
	got := LoadWallets(filepath.Join(t.TempDir(), "nope.txt"))
	if len(got) != 0 {
		t.Errorf("LoadWallets() of missing file = %v, want empty", got)
	}
}

func TestLoadWallets_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := LoadWallets(path); len(got) != 0 {
		t.Errorf("LoadWallets() of empty file = %v, want empty", got)
	}
}
