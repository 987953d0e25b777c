package ports

import (
	"context"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

type VoterRepository interface {
	// Upsert creates the voter or updates its attributes, leaving IsVerified
	// untouched for an existing voter.
	Upsert(ctx context.Context, voter *domain.Voter) error
	GetByID(ctx context.Context, id string) (*domain.Voter, error)
	SetVerified(ctx context.Context, id string, verified bool) error
}

type RegisterVoterInput struct {
	ID         string
	Age        int
	IsResident bool
	Role       string
}

type VoterService interface {
	Register(ctx context.Context, input RegisterVoterInput) (*domain.Voter, error)
	Get(ctx context.Context, id string) (*domain.Voter, error)
	Verify(ctx context.Context, actorID, voterID string) (*domain.Voter, error)
}
