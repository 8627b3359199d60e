package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) (*Manager, *MemoryStore, *time.Time) {
	store := NewMemoryStore()
	m := NewManager(store, ttl, zerolog.Nop())
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, store, &clock
}

func TestManager_CreateLookupDestroy(t *testing.T) {
	m, _, _ := newTestManager(24 * time.Hour)
	ctx := context.Background()

	s, err := m.Create(ctx, 7, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, s.CreatedAt.Add(24*time.Hour), s.ExpiresAt)

	got, err := m.Lookup(ctx, s.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, m.Destroy(ctx, s.Token))
	require.NoError(t, m.Destroy(ctx, s.Token))
	got, err = m.Lookup(ctx, s.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManager_TokensAreUnique(t *testing.T) {
	m, _, _ := newTestManager(time.Hour)
	a, err := m.Create(context.Background(), 1, "a")
	require.NoError(t, err)
	b, err := m.Create(context.Background(), 1, "a")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestManager_ExpiredSessionIsGone(t *testing.T) {
	m, store, clock := newTestManager(time.Hour)
	ctx := context.Background()

	s, err := m.Create(ctx, 1, "alice")
	require.NoError(t, err)

	*clock = clock.Add(time.Hour)
	got, err := m.Lookup(ctx, s.Token)
	require.NoError(t, err)
	assert.Nil(t, got)

	raw, _ := store.Load(ctx, s.Token)
	assert.Nil(t, raw, "expired session should be removed on lookup")
}

func TestManager_EmptyToken(t *testing.T) {
	m, _, _ := newTestManager(time.Hour)
	got, err := m.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, m.Destroy(context.Background(), ""))
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	m, store, clock := newTestManager(time.Hour)
	ctx := context.Background()
	_, err := m.Create(ctx, 1, "a")
	require.NoError(t, err)
	*clock = clock.Add(30 * time.Minute)
	fresh, err := m.Create(ctx, 2, "b")
	require.NoError(t, err)

	n, err := store.DeleteExpired(ctx, clock.Add(45*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := store.Load(ctx, fresh.Token)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRedisStore_RefusesExpiredSession(t *testing.T) {
	// The address is never dialed: the expiry check comes first.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	m := NewManager(NewRedisStore(client), time.Hour, zerolog.Nop())
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	sess, err := m.Create(context.Background(), 1, "a")
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.Contains(t, err.Error(), "already expired")
}
