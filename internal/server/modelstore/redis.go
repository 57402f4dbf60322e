package modelstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the part of redis.Cmdable used by RedisBlobStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type RedisBlobStore struct {
	client RedisClient
	prefix string
}

// NewRedisBlobStore stores blobs under prefix + key without expiry.
func NewRedisBlobStore(client RedisClient, prefix string) *RedisBlobStore {
	return &RedisBlobStore{client: client, prefix: prefix}
}

func (r *RedisBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.prefix+key, err)
	}
	return nil
}

func (r *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(r.prefix + key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.prefix+key, err)
	}
	return data, nil
}
