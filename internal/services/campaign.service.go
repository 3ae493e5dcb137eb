package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/repository"
)

type CampaignService struct {
	campaigns CampaignRepository
	donations DonationRepository
}

func NewCampaignService(campaigns CampaignRepository, donations DonationRepository) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		donations: donations,
	}
}

func (s *CampaignService) Create(ctx context.Context, sess model.Session, p model.CampaignCreateRequest) (*model.Campaign, error) {
	if sess.Role != model.RoleOrganization {
		return nil, ErrUnauthorized
	}

	p.Email = sess.Email
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c := &model.Campaign{
		ID:          uuid.NewString(),
		Email:       p.Email,
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		GoalAmount:  p.GoalAmount,
	}

	created, err := s.campaigns.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return created, nil
}

// Get fetches one campaign for its owner, for the update form.
func (s *CampaignService) Get(ctx context.Context, sess model.Session, id string) (*model.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if sess.Role != model.RoleAdmin && c.Email != sess.Email {
		return nil, ErrUnauthorized
	}
	return c, nil
}

func (s *CampaignService) Update(ctx context.Context, sess model.Session, id string, p model.CampaignUpdateRequest) error {
	if sess.Role != model.RoleOrganization {
		return ErrUnauthorized
	}
	if err := p.Validate(); err != nil {
		return err
	}

	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get campaign: %w", err)
	}
	if c.Email != sess.Email {
		return ErrUnauthorized
	}

	if err := s.campaigns.Update(ctx, id, strings.TrimSpace(p.Title), p.Description, p.GoalAmount); err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

// Delete removes an owned campaign. Donations that referenced it keep
// their campaign id and show up as "N/A" in reports.
func (s *CampaignService) Delete(ctx context.Context, sess model.Session, id string) error {
	if sess.Role != model.RoleOrganization {
		return ErrUnauthorized
	}

	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get campaign: %w", err)
	}
	if c.Email != sess.Email {
		return ErrUnauthorized
	}

	if err := s.campaigns.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}

func (s *CampaignService) ListForOwner(ctx context.Context, sess model.Session) ([]*model.Campaign, error) {
	if sess.Role != model.RoleOrganization {
		return nil, ErrUnauthorized
	}
	return s.campaigns.ListByOwner(ctx, sess.Email)
}

// ListAll is the donor browse view.
func (s *CampaignService) ListAll(ctx context.Context) ([]*model.Campaign, error) {
	return s.campaigns.ListAll(ctx)
}

// ListDonationsForOwner returns donations earmarked to any of the
// organization's campaigns.
func (s *CampaignService) ListDonationsForOwner(ctx context.Context, sess model.Session) ([]*model.Donation, int64, error) {
	if sess.Role != model.RoleOrganization {
		return nil, 0, ErrUnauthorized
	}
	owner := sess.Email
	return s.donations.List(ctx, model.DonationFilter{OwnerEmail: &owner, Desc: true, Limit: 1000})
}
