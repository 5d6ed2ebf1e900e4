// Package cache is a small JSON layer over Redis used by the read-through
// store cache. Every key lives under Namespace.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace prefixes every key written by this package.
const Namespace = "tvcatalog"

// scanBatch is the COUNT hint for SCAN and the unlink batch size.
const scanBatch = 100

// ErrMiss is returned by Load when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Redis holds a go-redis client.
type Redis struct {
	client *redis.Client
}

// New parses a Redis URL ("redis://host:6379/0"). It does not dial; use Ping.
func New(rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// Ping checks the connection to Redis.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close shuts down the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Key joins parts under Namespace: Key("search", "ab12") is "tvcatalog:search:ab12".
func Key(parts ...string) string {
	return Namespace + ":" + strings.Join(parts, ":")
}

// Load reads key and decodes its JSON value.
func Load[T any](ctx context.Context, r *Redis, key string) (T, error) {
	var v T
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return v, ErrMiss
	case err != nil:
		return v, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return v, nil
}

// Store encodes v as JSON under key with the given TTL.
func (r *Redis) Store(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Drop unlinks the given keys. Missing keys are not an error.
func (r *Redis) Drop(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Unlink(ctx, keys...).Err()
}

// DropMatching unlinks every key matching a glob pattern, walking the
// keyspace with SCAN in batches.
func (r *Redis) DropMatching(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := r.Drop(ctx, batch...); err != nil {
				return fmt.Errorf("cache drop %s: %w", pattern, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	if err := r.Drop(ctx, batch...); err != nil {
		return fmt.Errorf("cache drop %s: %w", pattern, err)
	}
	return nil
}
