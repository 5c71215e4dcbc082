// Package report renders per-wallet mining status tables.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/anggasec28/kaleido/config"
)

// Stats is one wallet's display snapshot.
type Stats struct {
	Wallet        string
	Uptime        time.Duration
	TotalEarned   float64
	Pending       float64
	ReferralBonus float64
}

// ShortWallet abbreviates a wallet address for display: 0x1234abcd...ef01.
func ShortWallet(w string) string {
	if len(w) <= 12 {
		return w
	}
	return w[:8] + "..." + w[len(w)-4:]
}

// Render writes a status table for one wallet.
func Render(w io.Writer, s Stats) {
	fmt.Fprintln(w, "\nCurrent Mining Status:")

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Metric", "Value"})
	tbl.SetAlignment(tablewriter.ALIGN_LEFT)

	tbl.Append([]string{"Wallet", ShortWallet(s.Wallet)})
	tbl.Append([]string{"Uptime", s.Uptime.Truncate(time.Second).String()})
	tbl.Append([]string{"Hashrate", fmt.Sprintf("%.1f MH/s", config.BaseHashrate)})
	tbl.Append([]string{"Power", fmt.Sprintf("%d W", config.PowerConsumption)})
	tbl.Append([]string{"Total Earned", fmt.Sprintf("%.6f KLDO", s.TotalEarned)})
	tbl.Append([]string{"Pending", fmt.Sprintf("%.6f KLDO", s.Pending)})
	tbl.Append([]string{"Referral Bonus", fmt.Sprintf("%.1f%%", s.ReferralBonus*100)})

	tbl.Render()
}
