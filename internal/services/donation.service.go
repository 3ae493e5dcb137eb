package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/repository"
	"github.com/nimasrn/donation-gateway/pkg/logger"
	"github.com/nimasrn/donation-gateway/pkg/prom"
)

type DonationRepository interface {
	Create(ctx context.Context, d *model.Donation) (*model.Donation, error)
	GetByID(ctx context.Context, id string) (*model.Donation, error)
	List(ctx context.Context, f model.DonationFilter) ([]*model.Donation, int64, error)
	SumForEmail(ctx context.Context, email string) (float64, error)
	Delete(ctx context.Context, id string) error
	DeleteByEmail(ctx context.Context, email string) error
	Report(ctx context.Context) ([]*model.ReportRow, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error)
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListByOwner(ctx context.Context, email string) ([]*model.Campaign, error)
	ListAll(ctx context.Context) ([]*model.Campaign, error)
	Update(ctx context.Context, id string, title, description string, goalAmount float64) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, email string) error
	AddRaised(ctx context.Context, id string, amount float64) error
	SubtractRaised(ctx context.Context, id string, amount float64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher pushes donation events onto the notification queue.
type EventPublisher interface {
	DonationRecorded(ctx context.Context, d *model.Donation) error
}

type DonationService struct {
	donations DonationRepository
	campaigns CampaignRepository
	publisher EventPublisher
}

func NewDonationService(donations DonationRepository, campaigns CampaignRepository, publisher EventPublisher) *DonationService {
	return &DonationService{
		donations: donations,
		campaigns: campaigns,
		publisher: publisher,
	}
}

// Record inserts the donation and credits the campaign in one
// transaction, then publishes the notification event after commit.
// Publish failures never fail the donation.
func (s *DonationService) Record(ctx context.Context, sess model.Session, p model.DonationCreateRequest) (*model.Donation, error) {
	if sess.Role != model.RoleDonor {
		return nil, ErrUnauthorized
	}

	p.Email = sess.Email
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.CampaignID != "" {
		if _, err := s.campaigns.GetByID(ctx, p.CampaignID); err != nil {
			if errors.Is(err, repository.ErrCampaignNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("get campaign: %w", err)
		}
	}

	d := &model.Donation{
		ID:         uuid.NewString(),
		Email:      p.Email,
		Amount:     p.Amount,
		Type:       p.Type,
		CampaignID: p.CampaignID,
	}

	var created *model.Donation
	err := s.campaigns.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.donations.Create(ctx, d)
		if err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		created = c

		if d.CampaignID != "" {
			if err := s.campaigns.AddRaised(ctx, d.CampaignID, d.Amount); err != nil {
				return fmt.Errorf("credit campaign: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.IncDonationRecorded()

	if s.publisher != nil {
		if err := s.publisher.DonationRecorded(ctx, created); err != nil {
			logger.Warn("donation event publish failed", "donation_id", created.ID, "error", err)
		}
	}

	return created, nil
}

// History returns the donor's own donations and their running total.
func (s *DonationService) History(ctx context.Context, sess model.Session) ([]*model.Donation, float64, error) {
	if sess.Role != model.RoleDonor {
		return nil, 0, ErrUnauthorized
	}

	email := sess.Email
	donations, _, err := s.donations.List(ctx, model.DonationFilter{Email: &email, Desc: true, Limit: 1000})
	if err != nil {
		return nil, 0, fmt.Errorf("list donations: %w", err)
	}

	total, err := s.donations.SumForEmail(ctx, email)
	if err != nil {
		return nil, 0, fmt.Errorf("sum donations: %w", err)
	}

	return donations, total, nil
}

// Total is the donor's lifetime donated amount.
func (s *DonationService) Total(ctx context.Context, sess model.Session) (float64, error) {
	if sess.Role != model.RoleDonor {
		return 0, ErrUnauthorized
	}
	return s.donations.SumForEmail(ctx, sess.Email)
}

// Delete removes one of the donor's own donations and debits the
// campaign it credited, in one transaction.
func (s *DonationService) Delete(ctx context.Context, sess model.Session, donationID string) error {
	if sess.Role != model.RoleDonor {
		return ErrUnauthorized
	}

	d, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get donation: %w", err)
	}
	if d.Email != sess.Email {
		return ErrUnauthorized
	}

	return s.campaigns.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.donations.Delete(ctx, donationID); err != nil {
			if errors.Is(err, repository.ErrDonationNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete donation: %w", err)
		}

		if d.CampaignID != "" {
			err := s.campaigns.SubtractRaised(ctx, d.CampaignID, d.Amount)
			// The campaign may have been deleted since the donation
			if err != nil && !errors.Is(err, repository.ErrCampaignNotFound) {
				return fmt.Errorf("debit campaign: %w", err)
			}
		}
		return nil
	})
}
