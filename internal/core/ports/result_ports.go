package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

type ResultRepository interface {
	Save(ctx context.Context, result *domain.ProposalResult) error
	// GetByProposal returns nil, nil when no result has been stored.
	GetByProposal(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalResult, error)
}

type ResultService interface {
	Finalize(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalResult, error)
	GetResults(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalResult, error)
}

type SchedulerService interface {
	ProcessDue(ctx context.Context) error
}
