package repository

import (
	"database/sql"
	"time"

	"github.com/nimasrn/donation-gateway/internal/model"
)

type DonationEntity struct {
	ID         string         `db:"id"          gorm:"primaryKey;column:id"`
	Email      string         `db:"email"       gorm:"column:email;not null;index"`
	Amount     float64        `db:"amount"      gorm:"column:amount;not null"`
	Type       string         `db:"type"        gorm:"column:type"`
	CampaignID sql.NullString `db:"campaign_id" gorm:"column:campaign_id;index"`
	CreatedAt  time.Time      `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (DonationEntity) TableName() string {
	return "donations"
}

func toDonationEntity(d *model.Donation) *DonationEntity {
	if d == nil {
		return nil
	}
	e := &DonationEntity{
		ID:        d.ID,
		Email:     d.Email,
		Amount:    d.Amount,
		Type:      d.Type,
		CreatedAt: d.CreatedAt,
	}
	if d.CampaignID != "" {
		e.CampaignID = sql.NullString{String: d.CampaignID, Valid: true}
	}
	return e
}

func toDonationModel(e *DonationEntity) *model.Donation {
	if e == nil {
		return nil
	}
	m := &model.Donation{
		ID:        e.ID,
		Email:     e.Email,
		Amount:    e.Amount,
		Type:      e.Type,
		CreatedAt: e.CreatedAt,
	}
	if e.CampaignID.Valid {
		m.CampaignID = e.CampaignID.String
	}
	return m
}

func toDonationModels(entities []*DonationEntity) []*model.Donation {
	if entities == nil {
		return nil
	}
	models := make([]*model.Donation, len(entities))
	for i, e := range entities {
		models[i] = toDonationModel(e)
	}
	return models
}

type reportRowEntity struct {
	Email         string    `gorm:"column:email"`
	CampaignTitle string    `gorm:"column:campaign_title"`
	Amount        float64   `gorm:"column:amount"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func toReportRows(entities []*reportRowEntity) []*model.ReportRow {
	if entities == nil {
		return nil
	}
	rows := make([]*model.ReportRow, len(entities))
	for i, e := range entities {
		rows[i] = &model.ReportRow{
			Email:         e.Email,
			CampaignTitle: e.CampaignTitle,
			Amount:        e.Amount,
			CreatedAt:     e.CreatedAt,
		}
	}
	return rows
}
