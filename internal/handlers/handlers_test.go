package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/services"
	xhttp "github.com/nimasrn/donation-gateway/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, p model.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, p model.LoginRequest) (*model.Session, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAccountService) Authenticate(token string) (*model.Session, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAccountService) Logout(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

type MockDonationService struct {
	mock.Mock
}

func (m *MockDonationService) Record(ctx context.Context, sess model.Session, p model.DonationCreateRequest) (*model.Donation, error) {
	args := m.Called(ctx, sess, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Donation), args.Error(1)
}

func (m *MockDonationService) History(ctx context.Context, sess model.Session) ([]*model.Donation, float64, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Get(1).(float64), args.Error(2)
	}
	return args.Get(0).([]*model.Donation), args.Get(1).(float64), args.Error(2)
}

func (m *MockDonationService) Total(ctx context.Context, sess model.Session) (float64, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockDonationService) Delete(ctx context.Context, sess model.Session, donationID string) error {
	args := m.Called(ctx, sess, donationID)
	return args.Error(0)
}

type MockCampaignBrowser struct {
	mock.Mock
}

func (m *MockCampaignBrowser) ListAll(ctx context.Context) ([]*model.Campaign, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Campaign), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func authedContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := setupTestContext(method, path, body)
	ctx.Request.Header.Set("Authorization", "Bearer test-token")
	return ctx
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		svc := new(MockAccountService)
		handler := NewAuthHandler(svc)

		body, _ := json.Marshal(loginRequest{Email: "alice@example.com", Password: "secret", Role: "donor"})

		svc.On("Login", mock.Anything, mock.MatchedBy(func(p model.LoginRequest) bool {
			return p.Email == "alice@example.com" && p.Role == "donor"
		})).Return(&model.Session{Token: "tok", Email: "alice@example.com", Role: model.RoleDonor}, nil)

		ctx := setupTestContext("POST", "/login", body)
		handler.Login(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var resp loginResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "donor", resp.Role)

		svc.AssertExpectations(t)
	})

	t.Run("invalid credentials map to 401", func(t *testing.T) {
		svc := new(MockAccountService)
		handler := NewAuthHandler(svc)

		body, _ := json.Marshal(loginRequest{Email: "alice@example.com", Password: "wrong", Role: "donor"})

		svc.On("Login", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidCredentials)

		ctx := setupTestContext("POST", "/login", body)
		handler.Login(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockAccountService)
		handler := NewAuthHandler(svc)

		ctx := setupTestContext("POST", "/login", []byte("not json"))
		handler.Login(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("duplicate email maps to 409", func(t *testing.T) {
		svc := new(MockAccountService)
		handler := NewAuthHandler(svc)

		body, _ := json.Marshal(registerRequest{Name: "Alice", Email: "alice@example.com", Password: "x", Role: "donor"})

		svc.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrEmailTaken)

		ctx := setupTestContext("POST", "/register", body)
		handler.Register(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		svc := new(MockAccountService)
		handler := NewAuthHandler(svc)

		body, _ := json.Marshal(registerRequest{Email: "alice@example.com"})

		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, model.RegisterRequest{}.Validate())

		ctx := setupTestContext("POST", "/register", body)
		handler.Register(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestDonorHandler_RecordDonation(t *testing.T) {
	donorSess := &model.Session{Token: "test-token", Email: "donor@example.com", Role: model.RoleDonor}

	t.Run("successful donation", func(t *testing.T) {
		accounts := new(MockAccountService)
		donations := new(MockDonationService)
		campaigns := new(MockCampaignBrowser)
		handler := NewDonorHandler(donations, campaigns, NewGuard(accounts))

		accounts.On("Authenticate", "test-token").Return(donorSess, nil)

		body, _ := json.Marshal(recordDonationRequest{Amount: 200, Type: "one-time", CampaignID: "camp-1"})

		donations.On("Record", mock.Anything, *donorSess, mock.MatchedBy(func(p model.DonationCreateRequest) bool {
			return p.Amount == 200 && p.CampaignID == "camp-1"
		})).Return(&model.Donation{ID: "d-1", Email: "donor@example.com", Amount: 200}, nil)

		ctx := authedContext("POST", "/donor/dashboard", body)
		handler.RecordDonation(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		donations.AssertExpectations(t)
	})

	t.Run("missing token maps to 401", func(t *testing.T) {
		accounts := new(MockAccountService)
		handler := NewDonorHandler(new(MockDonationService), new(MockCampaignBrowser), NewGuard(accounts))

		ctx := setupTestContext("POST", "/donor/dashboard", []byte(`{"amount":10}`))
		handler.RecordDonation(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("wrong role maps to 403", func(t *testing.T) {
		accounts := new(MockAccountService)
		handler := NewDonorHandler(new(MockDonationService), new(MockCampaignBrowser), NewGuard(accounts))

		accounts.On("Authenticate", "test-token").
			Return(&model.Session{Token: "test-token", Email: "org@example.com", Role: model.RoleOrganization}, nil)

		ctx := authedContext("POST", "/donor/dashboard", []byte(`{"amount":10}`))
		handler.RecordDonation(ctx)

		assert.Equal(t, 403, ctx.Response.StatusCode())
	})

	t.Run("expired session maps to 401", func(t *testing.T) {
		accounts := new(MockAccountService)
		handler := NewDonorHandler(new(MockDonationService), new(MockCampaignBrowser), NewGuard(accounts))

		accounts.On("Authenticate", "test-token").Return(nil, services.ErrInvalidCredentials)

		ctx := authedContext("POST", "/donor/dashboard", []byte(`{"amount":10}`))
		handler.RecordDonation(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})
}

func TestDonorHandler_Dashboard(t *testing.T) {
	donorSess := &model.Session{Token: "test-token", Email: "donor@example.com", Role: model.RoleDonor}

	accounts := new(MockAccountService)
	donations := new(MockDonationService)
	campaigns := new(MockCampaignBrowser)
	handler := NewDonorHandler(donations, campaigns, NewGuard(accounts))

	accounts.On("Authenticate", "test-token").Return(donorSess, nil)
	campaigns.On("ListAll", mock.Anything).Return([]*model.Campaign{{ID: "camp-1", Title: "Relief"}}, nil)
	donations.On("Total", mock.Anything, *donorSess).Return(float64(50), nil)

	ctx := authedContext("GET", "/donor/dashboard", nil)
	handler.Dashboard(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Len(t, resp.Campaigns, 1)
	assert.Equal(t, float64(50), resp.Total)
}

func TestDonorHandler_DeleteDonation(t *testing.T) {
	donorSess := &model.Session{Token: "test-token", Email: "donor@example.com", Role: model.RoleDonor}

	t.Run("missing donation_id", func(t *testing.T) {
		accounts := new(MockAccountService)
		handler := NewDonorHandler(new(MockDonationService), new(MockCampaignBrowser), NewGuard(accounts))

		accounts.On("Authenticate", "test-token").Return(donorSess, nil)

		ctx := authedContext("POST", "/donation_history", []byte(`{}`))
		handler.DeleteDonation(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("unknown donation maps to 404", func(t *testing.T) {
		accounts := new(MockAccountService)
		donations := new(MockDonationService)
		handler := NewDonorHandler(donations, new(MockCampaignBrowser), NewGuard(accounts))

		accounts.On("Authenticate", "test-token").Return(donorSess, nil)
		donations.On("Delete", mock.Anything, *donorSess, "missing").Return(services.ErrNotFound)

		ctx := authedContext("POST", "/donation_history", []byte(`{"donation_id":"missing"}`))
		handler.DeleteDonation(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}
