package services

import (
	"context"
	"log/slog"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
	"github.com/vncsmyrnk/crowdvote/internal/core/reputation"
)

type reputationService struct {
	cache  ports.ReputationCache
	logger *slog.Logger
}

// NewReputationService accepts a nil cache, in which case every profile is
// generated on demand.
func NewReputationService(cache ports.ReputationCache, logger *slog.Logger) ports.ReputationService {
	return &reputationService{
		cache:  cache,
		logger: resolveLogger(logger),
	}
}

func (s *reputationService) GetProfile(ctx context.Context, seed string) (domain.ReputationProfile, error) {
	if s.cache == nil {
		return reputation.Generate(seed), nil
	}

	cached, err := s.cache.Get(ctx, seed)
	if err != nil {
		s.logger.Warn("reputation cache read failed",
			"event", "reputation_cache_read_failed",
			"seed", seed,
			"error", err,
		)
	}
	if cached != nil {
		return *cached, nil
	}

	profile := reputation.Generate(seed)
	if err := s.cache.Set(ctx, seed, profile); err != nil {
		s.logger.Warn("reputation cache write failed",
			"event", "reputation_cache_write_failed",
			"seed", seed,
			"error", err,
		)
	}
	return profile, nil
}
