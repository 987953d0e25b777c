package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

type ProposalRepository interface {
	Save(ctx context.Context, proposal *domain.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error)
	List(ctx context.Context, limit, offset int, status domain.ProposalStatus) ([]*domain.Proposal, error)
	// UpdateStatus moves a proposal from one status to another only if it is
	// still in the expected status; otherwise it returns ErrInvalidStatusTransition.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ProposalStatus) error
	// ListDue returns pending proposals whose window has opened and active
	// proposals whose window has closed.
	ListDue(ctx context.Context, now time.Time) ([]*domain.Proposal, error)
}

type CreateOptionInput struct {
	Title    string
	Metadata json.RawMessage
}

type CreateProposalInput struct {
	Title       string
	Description string
	CreatedBy   string
	Options     []CreateOptionInput
	Eligibility domain.EligibilityRule
	StartsAt    time.Time
	EndsAt      time.Time
}

type ListProposalsInput struct {
	Page   int
	Status domain.ProposalStatus
}

type ProposalService interface {
	Create(ctx context.Context, input CreateProposalInput) (*domain.Proposal, error)
	GetProposal(ctx context.Context, id string) (*domain.Proposal, error)
	ListProposals(ctx context.Context, input ListProposalsInput) ([]*domain.Proposal, error)
	Activate(ctx context.Context, id uuid.UUID, actorID string) (*domain.Proposal, error)
	Cancel(ctx context.Context, id uuid.UUID, actorID string) (*domain.Proposal, error)
}
