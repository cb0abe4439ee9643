package sheets

import (
	"fmt"
	"time"

	"kindra/internal/core"
)

// BuildDonationReport renders the donation collection into a report. Rows
// keep the upstream order; amounts are exported as plain decimal strings so
// the spreadsheet can sum them.
func BuildDonationReport(snap core.Snapshot, now time.Time) Report {
	rows := make([][]any, 0, len(snap.Donations))
	for _, d := range snap.Donations {
		date := ""
		if at := d.DonatedAt.OrNow(d.CreatedAt.Time); !at.IsZero() {
			date = at.UTC().Format("2006-01-02")
		}
		rows = append(rows, []any{
			date,
			d.DisplayDonor(),
			d.DisplayCampaign(),
			core.OrDefault(d.Method, "Unknown"),
			core.OrDefault(d.Status, "PENDING"),
			d.Amount.String(),
		})
	}

	return Report{
		Title:   fmt.Sprintf("Donations Export %s", now.UTC().Format("2006-01-02")),
		Headers: []string{"Date", "Donor", "Campaign", "Method", "Status", "Amount"},
		Rows:    rows,
	}
}
