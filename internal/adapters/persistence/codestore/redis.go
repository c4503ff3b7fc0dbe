package codestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"microcredit-api/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "verification:"

// RedisStore keeps codes as JSON values whose TTL matches the code expiry,
// so expired codes disappear without a sweep.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a store on top of an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func key(email string) string {
	return keyPrefix + email
}

// Get returns the stored code or domain.ErrCodeNotFound
func (s *RedisStore) Get(ctx context.Context, email string) (*domain.VerificationCode, error) {
	raw, err := s.client.Get(ctx, key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var code domain.VerificationCode
	if err := json.Unmarshal(raw, &code); err != nil {
		return nil, fmt.Errorf("decode verification code: %w", err)
	}
	return &code, nil
}

// Set writes code with a TTL ending at its expiry. A code that is already
// past expiry is removed instead.
func (s *RedisStore) Set(ctx context.Context, code *domain.VerificationCode) error {
	ttl := code.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, code.Email)
	}

	raw, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encode verification code: %w", err)
	}
	if err := s.client.Set(ctx, key(code.Email), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the code for email
func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Sweep is a no-op: Redis expires keys on its own.
func (s *RedisStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
