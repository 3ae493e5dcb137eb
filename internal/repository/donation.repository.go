package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrDonationNotFound is returned when a donation does not exist.
	ErrDonationNotFound = errors.New("donation not found")
)

type DonationRepository struct {
	*pg.DB
}

func NewDonationRepository(db *pg.DB) *DonationRepository {
	return &DonationRepository{
		db,
	}
}

func (r *DonationRepository) Create(ctx context.Context, d *model.Donation) (*model.Donation, error) {
	entity := toDonationEntity(d)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toDonationModel(entity), nil
}

func (r *DonationRepository) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	var entity DonationEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return toDonationModel(&entity), nil
}

func (r *DonationRepository) List(ctx context.Context, f model.DonationFilter) ([]*model.Donation, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&DonationEntity{})

	if f.Email != nil {
		q = q.Where("email = ?", *f.Email)
	}
	if f.CampaignID != nil && *f.CampaignID != "" {
		q = q.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.OwnerEmail != nil {
		q = q.Where("campaign_id IN (?)",
			r.Read(ctx).WithContext(ctx).
				Model(&CampaignEntity{}).
				Select("id").
				Where("email = ?", *f.OwnerEmail))
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*DonationEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toDonationModels(entities), total, nil
}

// SumForEmail is the donor's running total across all their donations.
func (r *DonationRepository) SumForEmail(ctx context.Context, email string) (float64, error) {
	var total float64
	err := r.Read(ctx).WithContext(ctx).
		Model(&DonationEntity{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("email = ?", email).
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&DonationEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDonationNotFound
	}
	return nil
}

func (r *DonationRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.Write(ctx).WithContext(ctx).
		Where("email = ?", email).
		Delete(&DonationEntity{}).
		Error
}

// Report joins every donation to its campaign title, substituting
// "N/A" for unearmarked donations and dangling campaign references.
func (r *DonationRepository) Report(ctx context.Context) ([]*model.ReportRow, error) {
	var entities []*reportRowEntity
	err := r.Read(ctx).WithContext(ctx).
		Table("donations AS d").
		Select(`
            d.email                      AS email,
            COALESCE(c.title, 'N/A')     AS campaign_title,
            d.amount                     AS amount,
            d.created_at                 AS created_at
        `).
		Joins("LEFT JOIN campaigns AS c ON c.id = d.campaign_id").
		Order("d.created_at ASC").
		Scan(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toReportRows(entities), nil
}
