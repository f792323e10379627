// Package redis is implementation of cache interface on top of redis.
// The snapshot is stored as a single JSON value, so every write replaces it atomically.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Decentr-net/citypulse/internal/cache"
)

// DefaultKey ...
const DefaultKey = "citypulse:snapshot"

type rc struct {
	client redis.Cmdable
	key    string
}

// New returns cache stored under key.
func New(client redis.Cmdable, key string) cache.Cache {
	if key == "" {
		key = DefaultKey
	}

	return rc{
		client: client,
		key:    key,
	}
}

func (c rc) Read(ctx context.Context) (*cache.Snapshot, error) {
	b, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.New(), nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var s cache.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return s.Normalize(), nil
}

func (c rc) Write(ctx context.Context, s *cache.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key, b, 0).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}
