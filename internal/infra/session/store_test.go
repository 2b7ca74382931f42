package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() *State {
	return &State{
		AppointmentID: uuid.New(),
		ClientID:      7,
		ProviderID:    1,
		ServiceID:     10,
		TotalPrice:    270.0,
		Quantity:      3,
		CreatedAt:     time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	state := testState()

	require.NoError(t, store.Set(ctx, state, time.Minute))

	got, err := store.Get(ctx, state.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, state, got)

	require.NoError(t, store.Delete(ctx, state.AppointmentID))

	_, err = store.Get(ctx, state.AppointmentID)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	state := testState()

	require.NoError(t, store.Set(ctx, state, -time.Second))

	_, err := store.Get(ctx, state.AppointmentID)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	state := testState()

	require.NoError(t, store.Set(ctx, state, time.Minute))

	got, err := store.Get(ctx, state.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, state.AppointmentID, got.AppointmentID)
	assert.Equal(t, state.TotalPrice, got.TotalPrice)
	assert.Equal(t, state.Quantity, got.Quantity)
	assert.True(t, state.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, store.Delete(ctx, state.AppointmentID))

	_, err = store.Get(ctx, state.AppointmentID)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	state := testState()

	require.NoError(t, store.Set(ctx, state, 30*time.Minute))

	// Окно оплаты истекло
	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, state.AppointmentID)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStore_GetUnknown(t *testing.T) {
	store, _ := newRedisStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStateNotFound)
}
