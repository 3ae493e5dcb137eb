package session

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, NewStore(adapter, time.Hour)
}

func TestStore_CreateAndGet(t *testing.T) {
	_, store := setupTestStore(t)

	created, err := store.Create(&model.User{
		Email: "alice@example.com",
		Name:  "Alice",
		Role:  model.RoleDonor,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Token)

	got, err := store.Get(created.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, model.RoleDonor, got.Role)
	assert.Equal(t, created.Token, got.Token)
}

func TestStore_TokensAreUnique(t *testing.T) {
	_, store := setupTestStore(t)

	u := &model.User{Email: "alice@example.com", Name: "Alice", Role: model.RoleDonor}

	first, err := store.Create(u)
	require.NoError(t, err)
	second, err := store.Create(u)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)

	// Both sessions resolve independently
	_, err = store.Get(first.Token)
	assert.NoError(t, err)
	_, err = store.Get(second.Token)
	assert.NoError(t, err)
}

func TestStore_GetUnknownToken(t *testing.T) {
	_, store := setupTestStore(t)

	_, err := store.Get("not-a-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get("")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_Expiry(t *testing.T) {
	mr, store := setupTestStore(t)

	created, err := store.Create(&model.User{
		Email: "alice@example.com",
		Name:  "Alice",
		Role:  model.RoleDonor,
	})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Get(created.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_Delete(t *testing.T) {
	_, store := setupTestStore(t)

	created, err := store.Create(&model.User{
		Email: "alice@example.com",
		Name:  "Alice",
		Role:  model.RoleAdmin,
	})
	require.NoError(t, err)

	err = store.Delete(created.Token)
	assert.NoError(t, err)

	_, err = store.Get(created.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting again is a no-op
	err = store.Delete(created.Token)
	assert.NoError(t, err)
}
