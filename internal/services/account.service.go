package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/repository"
	"github.com/nimasrn/donation-gateway/internal/session"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, email string) error
}

type SessionStore interface {
	Create(u *model.User) (*model.Session, error)
	Get(token string) (*model.Session, error)
	Delete(token string) error
}

type AccountService struct {
	users    UserRepository
	sessions SessionStore
}

func NewAccountService(users UserRepository, sessions SessionStore) *AccountService {
	return &AccountService{
		users:    users,
		sessions: sessions,
	}
}

func (s *AccountService) Register(ctx context.Context, p model.RegisterRequest) (*model.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	role, err := model.ParseRole(p.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:    normalizeEmail(p.Email),
		Name:     strings.TrimSpace(p.Name),
		Password: string(hash),
		Role:     role,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// Login verifies email, password, and requested role, collapsing every
// failure mode into the same credentials error.
func (s *AccountService) Login(ctx context.Context, p model.LoginRequest) (*model.Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	role, err := model.ParseRole(p.Role)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, normalizeEmail(p.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(p.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Role != role {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(u)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Authenticate resolves a bearer token to its session.
func (s *AccountService) Authenticate(token string) (*model.Session, error) {
	sess, err := s.sessions.Get(token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *AccountService) Logout(token string) error {
	return s.sessions.Delete(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
