package helpers

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/nimasrn/donation-gateway/internal/repository"
	"github.com/nimasrn/donation-gateway/pkg/pg"
	"github.com/nimasrn/donation-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.UserEntity{},
		&repository.CampaignEntity{},
		&repository.DonationEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestUser(t *testing.T, db *pg.DB, email, password, role string) *repository.UserEntity {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &repository.UserEntity{
		Email:    email,
		Name:     "Test User",
		Password: string(hash),
		Role:     role,
	}
	err = db.Write(ctx).Create(user).Error
	require.NoError(t, err)
	return user
}

func CreateTestCampaign(t *testing.T, db *pg.DB, ownerEmail, title string, goal float64) *repository.CampaignEntity {
	ctx := context.Background()
	campaign := &repository.CampaignEntity{
		ID:         uuid.NewString(),
		Email:      ownerEmail,
		Title:      title,
		GoalAmount: goal,
	}
	err := db.Write(ctx).Create(campaign).Error
	require.NoError(t, err)
	return campaign
}

func CreateTestDonation(t *testing.T, db *pg.DB, email string, amount float64, campaignID string) *repository.DonationEntity {
	ctx := context.Background()
	donation := &repository.DonationEntity{
		ID:        uuid.NewString(),
		Email:     email,
		Amount:    amount,
		Type:      "one-time",
		CreatedAt: time.Now(),
	}
	if campaignID != "" {
		donation.CampaignID.String = campaignID
		donation.CampaignID.Valid = true
	}
	err := db.Write(ctx).Create(donation).Error
	require.NoError(t, err)
	return donation
}
