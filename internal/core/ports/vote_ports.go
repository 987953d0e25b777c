package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

// VoteStore is the append-only home of cast votes. Append must reject a
// second vote for the same (proposal, voter) pair with ErrAlreadyVoted, and a
// vote for a proposal that is no longer active with ErrVotingClosed. Both
// checks must be atomic with the insert.
type VoteStore interface {
	Append(ctx context.Context, vote *domain.Vote) error
	AllFor(ctx context.Context, proposalID uuid.UUID) ([]domain.Vote, error)
	FindByVoter(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error)
}

type VoteInput struct {
	ProposalID uuid.UUID
	OptionID   uuid.UUID
	VoterID    string
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (*domain.Vote, error)
	CheckEligibility(ctx context.Context, proposalID uuid.UUID, voterID string) (domain.EligibilityDecision, error)
	MyVote(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error)
}
