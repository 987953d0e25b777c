// Package redis caches generated reputation profiles.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

const reputationPrefix = "reputation:"

// NewClient builds a client from a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

type reputationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReputationCache(rdb *redis.Client, ttl time.Duration) ports.ReputationCache {
	return &reputationCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *reputationCache) Get(ctx context.Context, seed string) (*domain.ReputationProfile, error) {
	raw, err := c.rdb.Get(ctx, reputationPrefix+seed).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read reputation: %w", err)
	}

	var profile domain.ReputationProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode reputation: %w", err)
	}
	return &profile, nil
}

func (c *reputationCache) Set(ctx context.Context, seed string, profile domain.ReputationProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode reputation: %w", err)
	}
	if err := c.rdb.Set(ctx, reputationPrefix+seed, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write reputation: %w", err)
	}
	return nil
}
