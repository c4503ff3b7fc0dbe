package codestore

import (
	"context"
	"testing"
	"time"

	"microcredit-api/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), srv
}

func TestRedisStoreSetGetDelete(t *testing.T) {
	store, srv := newTestRedisStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Get(ctx, "a@b.com")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)

	require.NoError(t, store.Set(ctx, &domain.VerificationCode{
		Email: "a@b.com", Code: "654321", IssuedAt: now, ExpiresAt: now.Add(10 * time.Minute), Attempts: 2,
	}))
	assert.True(t, srv.Exists("verification:a@b.com"))

	ttl := srv.TTL("verification:a@b.com")
	assert.True(t, ttl > 9*time.Minute && ttl <= 10*time.Minute, "ttl=%s", ttl)

	got, err := store.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "654321", got.Code)
	assert.Equal(t, 2, got.Attempts)

	require.NoError(t, store.Delete(ctx, "a@b.com"))
	_, err = store.Get(ctx, "a@b.com")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestRedisStoreExpiresWithTTL(t *testing.T) {
	store, srv := newTestRedisStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Set(ctx, &domain.VerificationCode{Email: "a@b.com", Code: "654321", ExpiresAt: now.Add(time.Minute)}))
	srv.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "a@b.com")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)

	removed, err := store.Sweep(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestRedisStoreSetExpiredDeletes(t *testing.T) {
	store, srv := newTestRedisStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Set(ctx, &domain.VerificationCode{Email: "a@b.com", Code: "1", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Set(ctx, &domain.VerificationCode{Email: "a@b.com", Code: "2", ExpiresAt: now.Add(-time.Minute)}))
	assert.False(t, srv.Exists("verification:a@b.com"))
}

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer client.Close()
	store := NewRedisStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "a@b.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCodeNotFound)
}
