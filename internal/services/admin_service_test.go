package services

import (
	"context"
	"testing"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func adminSession() model.Session {
	return model.Session{Token: "tok", Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin}
}

func TestAdminService_ListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("admin lists users", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewAdminService(users, new(MockDonationRepository), new(MockCampaignRepository))

		users.On("List", ctx).Return([]*model.User{{Email: "a@b.c"}}, nil)

		items, err := svc.ListUsers(ctx, adminSession())
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		svc := NewAdminService(new(MockUserRepository), new(MockDonationRepository), new(MockCampaignRepository))

		_, err := svc.ListUsers(ctx, donorSession())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAdminService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to donations and campaigns", func(t *testing.T) {
		users := new(MockUserRepository)
		donations := new(MockDonationRepository)
		campaigns := new(MockCampaignRepository)
		svc := NewAdminService(users, donations, campaigns)

		campaigns.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).
			Return(nil)
		donations.On("DeleteByEmail", ctx, "target@example.com").Return(nil)
		campaigns.On("DeleteByOwner", ctx, "target@example.com").Return(nil)
		users.On("Delete", ctx, "target@example.com").Return(nil)

		err := svc.DeleteUser(ctx, adminSession(), "target@example.com")
		require.NoError(t, err)

		users.AssertExpectations(t)
		donations.AssertExpectations(t)
		campaigns.AssertExpectations(t)
	})

	t.Run("self-deletion rejected", func(t *testing.T) {
		svc := NewAdminService(new(MockUserRepository), new(MockDonationRepository), new(MockCampaignRepository))

		err := svc.DeleteUser(ctx, adminSession(), "Admin@Example.com")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		donations := new(MockDonationRepository)
		campaigns := new(MockCampaignRepository)
		svc := NewAdminService(users, donations, campaigns)

		campaigns.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).
			Return(nil)
		donations.On("DeleteByEmail", ctx, "ghost@example.com").Return(nil)
		campaigns.On("DeleteByOwner", ctx, "ghost@example.com").Return(nil)
		users.On("Delete", ctx, "ghost@example.com").Return(repository.ErrUserNotFound)

		err := svc.DeleteUser(ctx, adminSession(), "ghost@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		svc := NewAdminService(new(MockUserRepository), new(MockDonationRepository), new(MockCampaignRepository))

		err := svc.DeleteUser(ctx, orgSession(), "target@example.com")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAdminService_Report(t *testing.T) {
	ctx := context.Background()

	t.Run("admin gets joined rows", func(t *testing.T) {
		donations := new(MockDonationRepository)
		svc := NewAdminService(new(MockUserRepository), donations, new(MockCampaignRepository))

		donations.On("Report", ctx).Return([]*model.ReportRow{
			{Email: "a@b.c", CampaignTitle: "Relief", Amount: 20},
			{Email: "d@e.f", CampaignTitle: "N/A", Amount: 30},
		}, nil)

		rows, err := svc.Report(ctx, adminSession())
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		svc := NewAdminService(new(MockUserRepository), new(MockDonationRepository), new(MockCampaignRepository))

		_, err := svc.Report(ctx, donorSession())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
