package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/eligibility"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type voteService struct {
	proposalRepo ports.ProposalRepository
	voteStore    ports.VoteStore
	voterRepo    ports.VoterRepository
	clock        ports.Clock
	logger       *slog.Logger
}

func NewVoteService(proposalRepo ports.ProposalRepository, voteStore ports.VoteStore, voterRepo ports.VoterRepository, clock ports.Clock, logger *slog.Logger) ports.VoteService {
	return &voteService{
		proposalRepo: proposalRepo,
		voteStore:    voteStore,
		voterRepo:    voterRepo,
		clock:        resolveClock(clock),
		logger:       resolveLogger(logger),
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*domain.Vote, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if proposal.Status != domain.ProposalActive || !proposal.Window.Contains(now) {
		return nil, domain.ErrVotingClosed
	}
	if !proposal.HasOption(input.OptionID) {
		return nil, domain.ErrInvalidOption
	}

	decision, err := s.evaluate(ctx, proposal, input.VoterID)
	if err != nil {
		return nil, err
	}
	if !decision.Eligible {
		s.logger.Info("vote rejected",
			"event", "vote_rejected",
			"proposal_id", proposal.ID,
			"voter_id", input.VoterID,
			"reason", decision.Reason,
		)
		return nil, &domain.EligibilityError{Reason: decision.Reason}
	}

	vote := &domain.Vote{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		OptionID:   input.OptionID,
		VoterID:    input.VoterID,
		Weight:     decision.Weight,
		CastAt:     now,
	}

	// The store has the last word when two requests from one voter race.
	if err := s.voteStore.Append(ctx, vote); err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) {
			return nil, &domain.EligibilityError{Reason: domain.ReasonAlreadyVoted}
		}
		return nil, err
	}

	s.logger.Info("vote cast",
		"event", "vote_cast",
		"proposal_id", vote.ProposalID,
		"option_id", vote.OptionID,
		"voter_id", vote.VoterID,
		"weight", vote.Weight,
	)
	return vote, nil
}

func (s *voteService) CheckEligibility(ctx context.Context, proposalID uuid.UUID, voterID string) (domain.EligibilityDecision, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return domain.EligibilityDecision{}, err
	}
	return s.evaluate(ctx, proposal, voterID)
}

func (s *voteService) MyVote(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error) {
	if _, err := s.proposalRepo.GetByID(ctx, proposalID); err != nil {
		return nil, err
	}

	vote, err := s.voteStore.FindByVoter(ctx, proposalID, voterID)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return nil, domain.ErrVoteNotFound
	}
	return vote, nil
}

func (s *voteService) evaluate(ctx context.Context, proposal *domain.Proposal, voterID string) (domain.EligibilityDecision, error) {
	voter, err := s.voterRepo.GetByID(ctx, voterID)
	if err != nil {
		return domain.EligibilityDecision{}, err
	}

	prior, err := s.voteStore.FindByVoter(ctx, proposal.ID, voterID)
	if err != nil {
		return domain.EligibilityDecision{}, err
	}

	return eligibility.Evaluate(proposal.Eligibility, voter.Record(prior != nil)), nil
}
