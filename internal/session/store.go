package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/pkg/redis"
)

var ErrSessionNotFound = errors.New("session not found or expired")

const keyPrefix = "session:"

// Store keeps sessions server-side as redis hashes keyed by an opaque
// bearer token. Expiry is enforced by redis TTL, revocation by Delete.
type Store struct {
	redis redis.RedisAdapter
	ttl   time.Duration
}

func NewStore(adapter redis.RedisAdapter, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		redis: adapter,
		ttl:   ttl,
	}
}

// Create mints a fresh token for the user and stores the session hash.
func (s *Store) Create(u *model.User) (*model.Session, error) {
	token := uuid.NewString()
	key := keyPrefix + token

	err := s.redis.HSetAll(key, map[string]interface{}{
		"email": u.Email,
		"name":  u.Name,
		"role":  string(u.Role),
	})
	if err != nil {
		return nil, err
	}
	if err := s.redis.Expire(key, s.ttl); err != nil {
		return nil, err
	}

	return &model.Session{
		Token: token,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}

// Get resolves a bearer token to its session, sliding the TTL forward.
func (s *Store) Get(token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	key := keyPrefix + token

	fields, err := s.redis.HGetAll(key)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	role, err := model.ParseRole(fields["role"])
	if err != nil {
		return nil, ErrSessionNotFound
	}

	if err := s.redis.Expire(key, s.ttl); err != nil {
		return nil, err
	}

	return &model.Session{
		Token: token,
		Email: fields["email"],
		Name:  fields["name"],
		Role:  role,
	}, nil
}

// Delete revokes a token. Deleting an unknown token is not an error.
func (s *Store) Delete(token string) error {
	if token == "" {
		return nil
	}
	return s.redis.Del(keyPrefix + token)
}
