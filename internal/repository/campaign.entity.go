package repository

import (
	"time"

	"github.com/nimasrn/donation-gateway/internal/model"
)

type CampaignEntity struct {
	ID           string    `db:"id"            gorm:"primaryKey;column:id"`
	Email        string    `db:"email"         gorm:"column:email;not null;index"`
	Title        string    `db:"title"         gorm:"column:title;not null"`
	Description  string    `db:"description"   gorm:"column:description"`
	GoalAmount   float64   `db:"goal_amount"   gorm:"column:goal_amount;not null"`
	RaisedAmount float64   `db:"raised_amount" gorm:"column:raised_amount;not null;default:0"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (CampaignEntity) TableName() string {
	return "campaigns"
}

func toCampaignEntity(c *model.Campaign) *CampaignEntity {
	if c == nil {
		return nil
	}
	return &CampaignEntity{
		ID:           c.ID,
		Email:        c.Email,
		Title:        c.Title,
		Description:  c.Description,
		GoalAmount:   c.GoalAmount,
		RaisedAmount: c.RaisedAmount,
		CreatedAt:    c.CreatedAt,
	}
}

func toCampaignModel(e *CampaignEntity) *model.Campaign {
	if e == nil {
		return nil
	}
	return &model.Campaign{
		ID:           e.ID,
		Email:        e.Email,
		Title:        e.Title,
		Description:  e.Description,
		GoalAmount:   e.GoalAmount,
		RaisedAmount: e.RaisedAmount,
		CreatedAt:    e.CreatedAt,
	}
}

func toCampaignModels(entities []*CampaignEntity) []*model.Campaign {
	if entities == nil {
		return nil
	}
	models := make([]*model.Campaign, len(entities))
	for i, e := range entities {
		models[i] = toCampaignModel(e)
	}
	return models
}
