package ports

import (
	"context"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

type ReputationCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, seed string) (*domain.ReputationProfile, error)
	Set(ctx context.Context, seed string, profile domain.ReputationProfile) error
}

type ReputationService interface {
	GetProfile(ctx context.Context, seed string) (domain.ReputationProfile, error)
}
