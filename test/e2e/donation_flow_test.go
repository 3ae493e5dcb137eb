package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/notifier"
	"github.com/nimasrn/donation-gateway/internal/queue"
	"github.com/nimasrn/donation-gateway/internal/repository"
	"github.com/nimasrn/donation-gateway/internal/services"
	"github.com/nimasrn/donation-gateway/internal/session"
	"github.com/nimasrn/donation-gateway/pkg/pg"
	"github.com/nimasrn/donation-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TestEnvironment struct {
	DB              *pg.DB
	Redis           *miniredis.Miniredis
	RedisAdapter    redis.RedisAdapter
	Queue           *queue.Queue
	Sessions        *session.Store
	UserRepo        *repository.UserRepository
	CampaignRepo    *repository.CampaignRepository
	DonationRepo    *repository.DonationRepository
	AccountService  *services.AccountService
	DonationService *services.DonationService
	CampaignService *services.CampaignService
	AdminService    *services.AdminService
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
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

	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	redisAdapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	q, err := queue.New(redisAdapter, queue.Config{
		Name:              "test:events",
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	})
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(pgDB)
	campaignRepo := repository.NewCampaignRepository(pgDB)
	donationRepo := repository.NewDonationRepository(pgDB)

	sessions := session.NewStore(redisAdapter, time.Hour)
	publisher := notifier.NewPublisher(q)

	accountService := services.NewAccountService(userRepo, sessions)
	donationService := services.NewDonationService(donationRepo, campaignRepo, publisher)
	campaignService := services.NewCampaignService(campaignRepo, donationRepo)
	adminService := services.NewAdminService(userRepo, donationRepo, campaignRepo)

	return &TestEnvironment{
		DB:              pgDB,
		Redis:           mr,
		RedisAdapter:    redisAdapter,
		Queue:           q,
		Sessions:        sessions,
		UserRepo:        userRepo,
		CampaignRepo:    campaignRepo,
		DonationRepo:    donationRepo,
		AccountService:  accountService,
		DonationService: donationService,
		CampaignService: campaignService,
		AdminService:    adminService,
	}
}

func (env *TestEnvironment) Cleanup() {
	if env.Queue != nil {
		_ = env.Queue.Stop(5 * time.Second)
	}
	time.Sleep(100 * time.Millisecond)
	if env.Redis != nil {
		env.Redis.Close()
	}
}

func (env *TestEnvironment) registerAndLogin(t *testing.T, email, name, password string, role model.Role) model.Session {
	ctx := context.Background()

	_, err := env.AccountService.Register(ctx, model.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     string(role),
	})
	require.NoError(t, err)

	sess, err := env.AccountService.Login(ctx, model.LoginRequest{
		Email:    email,
		Password: password,
		Role:     string(role),
	})
	require.NoError(t, err)

	return *sess
}

func TestE2E_RegisterLoginDonate(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	donor := env.registerAndLogin(t, "donor@example.com", "Donor", "secret123", model.RoleDonor)

	donation, err := env.DonationService.Record(ctx, donor, model.DonationCreateRequest{
		Amount: 150,
		Type:   "one-time",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, donation.ID)
	assert.Equal(t, "donor@example.com", donation.Email)

	items, total, err := env.DonationService.History(ctx, donor)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, float64(150), total)

	stats, err := env.Queue.GetStats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.TotalMessages, int64(1))
}

func TestE2E_CampaignRaisedAccumulation(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	org := env.registerAndLogin(t, "org@example.com", "Org", "secret123", model.RoleOrganization)
	donor := env.registerAndLogin(t, "donor@example.com", "Donor", "secret123", model.RoleDonor)

	campaign, err := env.CampaignService.Create(ctx, org, model.CampaignCreateRequest{
		Title:      "Flood Relief",
		GoalAmount: 1000,
	})
	require.NoError(t, err)

	_, err = env.DonationService.Record(ctx, donor, model.DonationCreateRequest{
		Amount:     200,
		Type:       "one-time",
		CampaignID: campaign.ID,
	})
	require.NoError(t, err)

	_, err = env.DonationService.Record(ctx, donor, model.DonationCreateRequest{
		Amount:     300,
		Type:       "one-time",
		CampaignID: campaign.ID,
	})
	require.NoError(t, err)

	updated, err := env.CampaignService.Get(ctx, org, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(500), updated.RaisedAmount)
}

func TestE2E_DonationToUnknownCampaign(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	donor := env.registerAndLogin(t, "donor@example.com", "Donor", "secret123", model.RoleDonor)

	_, err := env.DonationService.Record(ctx, donor, model.DonationCreateRequest{
		Amount:     50,
		Type:       "one-time",
		CampaignID: "no-such-campaign",
	})
	assert.ErrorIs(t, err, services.ErrNotFound)

	items, total, err := env.DonationService.History(ctx, donor)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, float64(0), total)
}

func TestE2E_DeleteDonationRestoresRaised(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	org := env.registerAndLogin(t, "org@example.com", "Org", "secret123", model.RoleOrganization)
	donor := env.registerAndLogin(t, "donor@example.com", "Donor", "secret123", model.RoleDonor)

	campaign, err := env.CampaignService.Create(ctx, org, model.CampaignCreateRequest{
		Title:      "Winter Shelter",
		GoalAmount: 2000,
	})
	require.NoError(t, err)

	donation, err := env.DonationService.Record(ctx, donor, model.DonationCreateRequest{
		Amount:     400,
		Type:       "one-time",
		CampaignID: campaign.ID,
	})
	require.NoError(t, err)

	err = env.DonationService.Delete(ctx, donor, donation.ID)
	require.NoError(t, err)

	updated, err := env.CampaignService.Get(ctx, org, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), updated.RaisedAmount)

	items, _, err := env.DonationService.History(ctx, donor)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestE2E_CampaignOwnershipDenied(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	orgA := env.registerAndLogin(t, "org-a@example.com", "Org A", "secret123", model.RoleOrganization)
	orgB := env.registerAndLogin(t, "org-b@example.com", "Org B", "secret123", model.RoleOrganization)

	campaign, err := env.CampaignService.Create(ctx, orgA, model.CampaignCreateRequest{
		Title:      "Org A Campaign",
		GoalAmount: 500,
	})
	require.NoError(t, err)

	err = env.CampaignService.Update(ctx, orgB, campaign.ID, model.CampaignUpdateRequest{
		Title:      "Hijacked",
		GoalAmount: 1,
	})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	err = env.CampaignService.Delete(ctx, orgB, campaign.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestE2E_AdminCascadeDelete(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	admin := env.registerAndLogin(t, "admin@example.com", "Admin", "secret123", model.RoleAdmin)
	org := env.registerAndLogin(t, "org@example.com", "Org", "secret123", model.RoleOrganization)
	donor := env.registerAndLogin(t, "donor@example.com", "Donor", "secret123", model.RoleDonor)

	campaign, err := env.CampaignService.Create(ctx, org, model.CampaignCreateRequest{
		Title:      "Doomed Campaign",
		GoalAmount: 100,
	})
	require.NoError(t, err)

	_, err = env.DonationService.Record(ctx, donor, model.DonationCreateRequest{
		Amount:     25,
		Type:       "one-time",
		CampaignID: campaign.ID,
	})
	require.NoError(t, err)

	err = env.AdminService.DeleteUser(ctx, admin, "donor@example.com")
	require.NoError(t, err)

	var donationCount int64
	env.DB.Read(ctx).Model(&repository.DonationEntity{}).Where("email = ?", "donor@example.com").Count(&donationCount)
	assert.Equal(t, int64(0), donationCount)

	var userCount int64
	env.DB.Read(ctx).Model(&repository.UserEntity{}).Where("email = ?", "donor@example.com").Count(&userCount)
	assert.Equal(t, int64(0), userCount)

	err = env.AdminService.DeleteUser(ctx, admin, "org@example.com")
	require.NoError(t, err)

	var campaignCount int64
	env.DB.Read(ctx).Model(&repository.CampaignEntity{}).Where("email = ?", "org@example.com").Count(&campaignCount)
	assert.Equal(t, int64(0), campaignCount)
}

func TestE2E_SessionLifecycle(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	donor := env.registerAndLogin(t, "donor@example.com", "Donor", "secret123", model.RoleDonor)

	sess, err := env.AccountService.Authenticate(donor.Token)
	require.NoError(t, err)
	assert.Equal(t, "donor@example.com", sess.Email)
	assert.Equal(t, model.RoleDonor, sess.Role)

	err = env.AccountService.Logout(donor.Token)
	require.NoError(t, err)

	_, err = env.AccountService.Authenticate(donor.Token)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestE2E_DonationEventConsumption(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	donor := env.registerAndLogin(t, "donor@example.com", "Donor", "secret123", model.RoleDonor)

	donation, err := env.DonationService.Record(ctx, donor, model.DonationCreateRequest{
		Amount: 75,
		Type:   "one-time",
	})
	require.NoError(t, err)

	received := make(chan bool, 1)
	handler := func(ctx context.Context, qMsg *queue.Message) error {
		var event notifier.DonationEvent
		err := json.Unmarshal(qMsg.Data, &event)
		assert.NoError(t, err)
		assert.Equal(t, donation.ID, event.DonationID)
		assert.Equal(t, "donor@example.com", event.Email)
		assert.Equal(t, float64(75), event.Amount)
		received <- true
		return nil
	}

	err = env.Queue.Consume(handler)
	require.NoError(t, err)

	select {
	case <-received:
	case <-time.After(3 * time.Second):
		t.Fatal("donation event not consumed within timeout")
	}
}
