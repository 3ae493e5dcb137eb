package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

type CampaignRepository struct {
	*pg.DB
}

func NewCampaignRepository(db *pg.DB) *CampaignRepository {
	return &CampaignRepository{
		db,
	}
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	entity := toCampaignEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toCampaignModel(entity), nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	var entity CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return toCampaignModel(&entity), nil
}

func (r *CampaignRepository) ListByOwner(ctx context.Context, email string) ([]*model.Campaign, error) {
	var entities []*CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("email = ?", email).
		Order("created_at ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCampaignModels(entities), nil
}

func (r *CampaignRepository) ListAll(ctx context.Context) ([]*model.Campaign, error) {
	var entities []*CampaignEntity
	if err := r.Read(ctx).WithContext(ctx).Order("created_at ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toCampaignModels(entities), nil
}

// Update overwrites the mutable fields of an owned campaign. The raised
// amount is never written here, it only moves through AddRaised and
// SubtractRaised.
func (r *CampaignRepository) Update(ctx context.Context, id string, title, description string, goalAmount float64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CampaignEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       title,
			"description": description,
			"goal_amount": goalAmount,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&CampaignEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

func (r *CampaignRepository) DeleteByOwner(ctx context.Context, email string) error {
	return r.Write(ctx).WithContext(ctx).
		Where("email = ?", email).
		Delete(&CampaignEntity{}).
		Error
}

// AddRaised atomically increments a campaign's raised amount with
// automatic retry. This is the only write path for donation credits.
func (r *CampaignRepository) AddRaised(ctx context.Context, id string, amount float64) error {
	return r.adjustRaised(ctx, id, amount)
}

// SubtractRaised reverses a previous increment when a donation is deleted.
func (r *CampaignRepository) SubtractRaised(ctx context.Context, id string, amount float64) error {
	return r.adjustRaised(ctx, id, -amount)
}

func (r *CampaignRepository) adjustRaised(ctx context.Context, id string, delta float64) error {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := r.adjustRaisedAttempt(ctx, id, delta)

		if err == nil {
			return nil
		}

		// Don't retry on permanent errors
		if errors.Is(err, ErrCampaignNotFound) {
			return err
		}

		// Retry on transient errors
		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<attempt) // 2ms, 4ms, 8ms
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}

	return fmt.Errorf("%w: failed after %d attempts", ErrMaxRetriesExceeded, maxRetries+1)
}

func (r *CampaignRepository) adjustRaisedAttempt(ctx context.Context, id string, delta float64) error {
	var entity CampaignEntity

	// SELECT FOR UPDATE serializes concurrent donations to one campaign
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&CampaignEntity{}).
		Where("id = ?", id).
		Update("raised_amount", gorm.Expr("raised_amount + ?", delta))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}

	return nil
}

func (r *CampaignRepository) GetRaised(ctx context.Context, id string) (float64, error) {
	var entity CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Select("raised_amount").
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCampaignNotFound
		}
		return 0, err
	}
	return entity.RaisedAmount, nil
}
