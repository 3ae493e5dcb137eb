package repository

import (
	"time"

	"github.com/nimasrn/donation-gateway/internal/model"
)

type UserEntity struct {
	Email     string    `db:"email"      gorm:"primaryKey;column:email"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	Password  string    `db:"password"   gorm:"column:password;not null"`
	Role      string    `db:"role"       gorm:"column:role;not null;index"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserEntity(u *model.User) *UserEntity {
	if u == nil {
		return nil
	}
	return &UserEntity{
		Email:     u.Email,
		Name:      u.Name,
		Password:  u.Password,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		Email:     e.Email,
		Name:      e.Name,
		Password:  e.Password,
		Role:      model.Role(e.Role),
		CreatedAt: e.CreatedAt,
	}
}

func toUserModels(entities []*UserEntity) []*model.User {
	if entities == nil {
		return nil
	}
	models := make([]*model.User, len(entities))
	for i, e := range entities {
		models[i] = toUserModel(e)
	}
	return models
}
