package fixtures

import (
	"time"

	"github.com/nimasrn/donation-gateway/internal/model"
)

var (
	TestDonor = model.User{
		Email: "donor@example.com",
		Name:  "Test Donor",
		Role:  model.RoleDonor,
	}

	TestOrganization = model.User{
		Email: "org@example.com",
		Name:  "Test Organization",
		Role:  model.RoleOrganization,
	}

	TestAdmin = model.User{
		Email: "admin@example.com",
		Name:  "Test Admin",
		Role:  model.RoleAdmin,
	}
)

func NewTestDonation(email string, amount float64, campaignID string) *model.Donation {
	return &model.Donation{
		Email:      email,
		Amount:     amount,
		Type:       "one-time",
		CampaignID: campaignID,
		CreatedAt:  time.Now(),
	}
}

func NewTestDonationCreateRequest(email string, amount float64, campaignID string) model.DonationCreateRequest {
	return model.DonationCreateRequest{
		Email:      email,
		Amount:     amount,
		Type:       "one-time",
		CampaignID: campaignID,
	}
}

func NewTestCampaignCreateRequest(ownerEmail, title string, goal float64) model.CampaignCreateRequest {
	return model.CampaignCreateRequest{
		Email:      ownerEmail,
		Title:      title,
		GoalAmount: goal,
	}
}

func NewTestRegisterRequest(email, name, password string, role model.Role) model.RegisterRequest {
	return model.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     string(role),
	}
}
