package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/anandgupta07/coach-sub000/internal/checkout/domain"
)

// RedisStore keeps sessions in Redis under portal:checkout:session:{id}.
// Every save refreshes the key's TTL. Confirmation claims live under
// portal:checkout:confirm:{id}.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := encode(session)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, Key(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", session.ID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	data, err := r.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	return decode(data)
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", id, err)
	}
	return nil
}

// ClaimConfirmation sets the claim key with SET NX, so only one caller wins.
func (r *RedisStore) ClaimConfirmation(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := r.client.SetNX(ctx, ClaimKey(id), 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", ClaimKey(id), err)
	}
	return ok, nil
}

func (r *RedisStore) ReleaseConfirmation(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, ClaimKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", ClaimKey(id), err)
	}
	return nil
}

var _ domain.SessionStore = (*RedisStore)(nil)
