package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignRepository_AddRaised(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	t.Run("successful increment", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Campaign{
			ID:         "camp-1",
			Email:      "org@example.com",
			Title:      "Clean Water",
			GoalAmount: 1000,
		})
		require.NoError(t, err)

		err = repo.AddRaised(ctx, "camp-1", 200)
		assert.NoError(t, err)

		raised, err := repo.GetRaised(ctx, "camp-1")
		require.NoError(t, err)
		assert.Equal(t, float64(200), raised)
	})

	t.Run("successive increments accumulate", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Campaign{
			ID:         "camp-2",
			Email:      "org@example.com",
			Title:      "School Fund",
			GoalAmount: 1000,
		})
		require.NoError(t, err)

		err = repo.AddRaised(ctx, "camp-2", 200)
		assert.NoError(t, err)

		err = repo.AddRaised(ctx, "camp-2", 300)
		assert.NoError(t, err)

		raised, err := repo.GetRaised(ctx, "camp-2")
		require.NoError(t, err)
		assert.Equal(t, float64(500), raised)
	})

	t.Run("campaign not found", func(t *testing.T) {
		err := repo.AddRaised(ctx, "missing", 100)
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})
}

func TestCampaignRepository_SubtractRaised(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.Campaign{
		ID:           "camp-1",
		Email:        "org@example.com",
		Title:        "Food Drive",
		GoalAmount:   500,
		RaisedAmount: 300,
	})
	require.NoError(t, err)

	err = repo.SubtractRaised(ctx, "camp-1", 100)
	assert.NoError(t, err)

	raised, err := repo.GetRaised(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, float64(200), raised)
}

func TestCampaignRepository_Update(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	t.Run("update mutable fields", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Campaign{
			ID:           "camp-1",
			Email:        "org@example.com",
			Title:        "Old Title",
			Description:  "old",
			GoalAmount:   100,
			RaisedAmount: 40,
		})
		require.NoError(t, err)

		err = repo.Update(ctx, "camp-1", "New Title", "new", 250)
		assert.NoError(t, err)

		c, err := repo.GetByID(ctx, "camp-1")
		require.NoError(t, err)
		assert.Equal(t, "New Title", c.Title)
		assert.Equal(t, "new", c.Description)
		assert.Equal(t, float64(250), c.GoalAmount)
		assert.Equal(t, float64(40), c.RaisedAmount)
	})

	t.Run("campaign not found", func(t *testing.T) {
		err := repo.Update(ctx, "missing", "x", "y", 1)
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})
}

func TestCampaignRepository_Delete(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	t.Run("delete existing campaign", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Campaign{
			ID:         "camp-1",
			Email:      "org@example.com",
			Title:      "Short Lived",
			GoalAmount: 10,
		})
		require.NoError(t, err)

		err = repo.Delete(ctx, "camp-1")
		assert.NoError(t, err)

		_, err = repo.GetByID(ctx, "camp-1")
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})

	t.Run("delete missing campaign", func(t *testing.T) {
		err := repo.Delete(ctx, "missing")
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})
}

func TestCampaignRepository_ListByOwner(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	for i, id := range []string{"a", "b"} {
		_, err := repo.Create(ctx, &model.Campaign{
			ID:         id,
			Email:      "owner@example.com",
			Title:      "Campaign",
			GoalAmount: float64(i + 1),
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &model.Campaign{
		ID:         "c",
		Email:      "other@example.com",
		Title:      "Other",
		GoalAmount: 1,
	})
	require.NoError(t, err)

	campaigns, err := repo.ListByOwner(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Len(t, campaigns, 2)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
