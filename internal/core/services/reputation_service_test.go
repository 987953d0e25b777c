package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/reputation"
)

type mapCache struct {
	profiles map[string]domain.ReputationProfile
	gets     int
	sets     int
	err      error
}

func (c *mapCache) Get(_ context.Context, seed string) (*domain.ReputationProfile, error) {
	c.gets++
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.profiles[seed]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *mapCache) Set(_ context.Context, seed string, p domain.ReputationProfile) error {
	c.sets++
	if c.err != nil {
		return c.err
	}
	c.profiles[seed] = p
	return nil
}

func TestGetProfileWithoutCache(t *testing.T) {
	svc := NewReputationService(nil, nil)

	got, err := svc.GetProfile(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, reputation.Generate(alice), got)
}

func TestGetProfileFillsCache(t *testing.T) {
	cache := &mapCache{profiles: map[string]domain.ReputationProfile{}}
	svc := NewReputationService(cache, nil)
	ctx := context.Background()

	first, err := svc.GetProfile(ctx, bob)
	require.NoError(t, err)
	second, err := svc.GetProfile(ctx, bob)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestGetProfileServesCachedValue(t *testing.T) {
	stale := domain.ReputationProfile{Rating: 4.2}
	cache := &mapCache{profiles: map[string]domain.ReputationProfile{bob: stale}}
	svc := NewReputationService(cache, nil)

	got, err := svc.GetProfile(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, stale, got)
}

func TestGetProfileIgnoresCacheFailures(t *testing.T) {
	cache := &mapCache{profiles: map[string]domain.ReputationProfile{}, err: errors.New("connection refused")}
	svc := NewReputationService(cache, nil)

	got, err := svc.GetProfile(context.Background(), "governance")
	require.NoError(t, err)
	assert.Equal(t, reputation.Generate("governance"), got)
}
