package model

import "time"

// ReportRow joins a donation to its campaign for the admin report.
// CampaignTitle is "N/A" when the donation was not earmarked or the
// campaign has since been deleted.
type ReportRow struct {
	Email         string    `json:"email"`
	CampaignTitle string    `json:"campaign_title"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}
