package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestShortWallet(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0x1234567890abcdef1234567890abcdef12345678", "0x123456...5678"},
		{"0xshort", "0xshort"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ShortWallet(tc.in); got != tc.want {
			t.Errorf("ShortWallet(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Stats{
		Wallet:        "0x1234567890abcdef1234567890abcdef12345678",
		Uptime:        90 * time.Second,
		TotalEarned:   1.234567,
		Pending:       0.5,
		ReferralBonus: 0.15,
	})

	out := buf.String()
	for _, want := range []string{"0x123456...5678", "1.234567 KLDO", "0.500000 KLDO", "15.0%", "1m30s"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
}
