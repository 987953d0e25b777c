package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
	"github.com/vncsmyrnk/crowdvote/internal/core/tally"
)

type resultService struct {
	proposalRepo ports.ProposalRepository
	voteStore    ports.VoteStore
	resultRepo   ports.ResultRepository
	clock        ports.Clock
	logger       *slog.Logger
}

func NewResultService(proposalRepo ports.ProposalRepository, voteStore ports.VoteStore, resultRepo ports.ResultRepository, clock ports.Clock, logger *slog.Logger) ports.ResultService {
	return &resultService{
		proposalRepo: proposalRepo,
		voteStore:    voteStore,
		resultRepo:   resultRepo,
		clock:        resolveClock(clock),
		logger:       resolveLogger(logger),
	}
}

// Finalize closes voting on an active proposal and freezes its tally.
// The status moves to completed before the votes are read, so no vote can be
// accepted after the count. Calling it again on a completed proposal returns
// the stored result.
func (s *resultService) Finalize(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalResult, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	switch proposal.Status {
	case domain.ProposalCompleted:
	case domain.ProposalActive:
		if err := s.close(ctx, proposalID); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrInvalidStatusTransition
	}

	return s.seal(ctx, proposal)
}

// close moves the proposal from active to completed. Losing the race to
// another finalizer is fine; losing it to anything else is not.
func (s *resultService) close(ctx context.Context, proposalID uuid.UUID) error {
	err := s.proposalRepo.UpdateStatus(ctx, proposalID, domain.ProposalActive, domain.ProposalCompleted)
	if !errors.Is(err, domain.ErrInvalidStatusTransition) {
		return err
	}

	current, getErr := s.proposalRepo.GetByID(ctx, proposalID)
	if getErr != nil {
		return getErr
	}
	if current.Status != domain.ProposalCompleted {
		return err
	}
	return nil
}

// seal stores the tally of a completed proposal unless one is already
// stored, and returns whichever result was stored first.
func (s *resultService) seal(ctx context.Context, proposal *domain.Proposal) (*domain.ProposalResult, error) {
	existing, err := s.resultRepo.GetByProposal(ctx, proposal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	votes, err := s.voteStore.AllFor(ctx, proposal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	result := &domain.ProposalResult{
		ProposalID:  proposal.ID,
		Tally:       tally.Tally(*proposal, votes),
		FinalizedAt: s.clock.Now(),
	}
	if err := s.resultRepo.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Info("proposal finalized",
		"event", "proposal_finalized",
		"proposal_id", proposal.ID,
		"total_votes", result.Tally.TotalVotes,
		"winner_option_id", result.Tally.WinnerOptionID,
	)
	return s.storedResult(ctx, proposal.ID)
}

// GetResults only reveals the tally once the proposal is completed.
func (s *resultService) GetResults(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalResult, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != domain.ProposalCompleted {
		return nil, domain.ErrResultsNotFinal
	}
	return s.storedResult(ctx, proposalID)
}

func (s *resultService) storedResult(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalResult, error) {
	result, err := s.resultRepo.GetByProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if result == nil {
		return nil, domain.ErrResultsNotFinal
	}
	return result, nil
}
