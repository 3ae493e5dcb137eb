package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Campaign struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"` // owning organization
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	GoalAmount   float64   `json:"goal_amount"`
	RaisedAmount float64   `json:"raised_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type CampaignCreateRequest struct {
	Email       string
	Title       string
	Description string
	GoalAmount  float64
}

func (p CampaignCreateRequest) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if math.IsNaN(p.GoalAmount) || math.IsInf(p.GoalAmount, 0) || p.GoalAmount < 0 {
		return fmt.Errorf("%w: goal_amount must be a non-negative number", ErrValidation)
	}
	return nil
}

type CampaignUpdateRequest struct {
	Title       string
	Description string
	GoalAmount  float64
}

func (p CampaignUpdateRequest) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if math.IsNaN(p.GoalAmount) || math.IsInf(p.GoalAmount, 0) || p.GoalAmount < 0 {
		return fmt.Errorf("%w: goal_amount must be a non-negative number", ErrValidation)
	}
	return nil
}
