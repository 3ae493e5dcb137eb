package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Donation struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Amount     float64   `json:"amount"`
	Type       string    `json:"type"`
	CampaignID string    `json:"campaign_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type DonationCreateRequest struct {
	Email      string
	Amount     float64
	Type       string
	CampaignID string
}

func (p DonationCreateRequest) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return fmt.Errorf("%w: amount is not a valid number", ErrValidation)
	}
	if p.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	return nil
}

// DonationFilter controls list queries.
type DonationFilter struct {
	Email      *string // donor's own records
	OwnerEmail *string // donations earmarked to this organization's campaigns
	CampaignID *string
	Limit      int
	Offset     int
	Desc       bool
}
