package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketbay/cartengine/internal/cart"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "cart:snapshot"

// redisOpTimeout bounds each slot operation. The cart engine's
// operations are synchronous, so a hung Redis must not wedge the UI.
const redisOpTimeout = 3 * time.Second

// Redis is a snapshot slot stored under a single key on a Redis
// instance. It trades the file adapter's zero-dependency durability for
// a slot that several storefront processes on the same host can share
// (still last-writer-wins, like browser tabs on one localStorage key).
type Redis struct {
	client redis.Cmdable
	key    string
}

// NewRedis creates a Redis-backed slot. The caller owns the client's
// lifecycle. An empty key defaults to DefaultRedisKey.
func NewRedis(client redis.Cmdable, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Load reads the slot key. A missing key or malformed snapshot loads as
// an empty cart; transport failures are returned.
func (r *Redis) Load() ([]cart.LineItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	items, err := DecodeSnapshot(data)
	if err != nil {
		return nil, nil
	}
	return items, nil
}

// Save replaces the slot key with the serialized items. The key does
// not expire: the snapshot lives until the next save or an explicit
// flush, like a localStorage entry.
func (r *Redis) Save(items []cart.LineItem) error {
	data, err := EncodeSnapshot(items)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
