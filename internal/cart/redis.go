package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL keeps an idle cart for 30 days.
const DefaultTTL = 30 * 24 * time.Hour

// RedisStore keeps one JSON snapshot per cart under "cart:<id>". Every save
// refreshes the expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Cart, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	c, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (r *RedisStore) Save(ctx context.Context, c *Cart) error {
	data, err := EncodeSnapshot(c)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKey(c.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func redisKey(id string) string {
	return fmt.Sprintf("cart:%s", id)
}
