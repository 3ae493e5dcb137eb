package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/repository"
)

type AdminService struct {
	users     UserRepository
	donations DonationRepository
	campaigns CampaignRepository
}

func NewAdminService(users UserRepository, donations DonationRepository, campaigns CampaignRepository) *AdminService {
	return &AdminService{
		users:     users,
		donations: donations,
		campaigns: campaigns,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, sess model.Session) ([]*model.User, error) {
	if sess.Role != model.RoleAdmin {
		return nil, ErrUnauthorized
	}
	return s.users.List(ctx)
}

// DeleteUser removes the target together with their donations and
// campaigns in one transaction. Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, sess model.Session, targetEmail string) error {
	if sess.Role != model.RoleAdmin {
		return ErrUnauthorized
	}

	targetEmail = normalizeEmail(targetEmail)
	if targetEmail == sess.Email {
		return ErrUnauthorized
	}

	return s.campaigns.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.donations.DeleteByEmail(ctx, targetEmail); err != nil {
			return fmt.Errorf("delete donations: %w", err)
		}
		if err := s.campaigns.DeleteByOwner(ctx, targetEmail); err != nil {
			return fmt.Errorf("delete campaigns: %w", err)
		}
		if err := s.users.Delete(ctx, targetEmail); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

func (s *AdminService) Report(ctx context.Context, sess model.Session) ([]*model.ReportRow, error) {
	if sess.Role != model.RoleAdmin {
		return nil, ErrUnauthorized
	}
	return s.donations.Report(ctx)
}
