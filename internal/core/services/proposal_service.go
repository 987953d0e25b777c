package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type proposalService struct {
	repo   ports.ProposalRepository
	clock  ports.Clock
	logger *slog.Logger
}

func NewProposalService(repo ports.ProposalRepository, clock ports.Clock, logger *slog.Logger) ports.ProposalService {
	return &proposalService{
		repo:   repo,
		clock:  resolveClock(clock),
		logger: resolveLogger(logger),
	}
}

func (s *proposalService) Create(ctx context.Context, input ports.CreateProposalInput) (*domain.Proposal, error) {
	title := sanitizeTitle(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidProposal)
	}
	creator, err := domain.NormalizeWallet(input.CreatedBy)
	if err != nil {
		return nil, err
	}

	proposalID := uuid.New()
	now := s.clock.Now()

	proposal := &domain.Proposal{
		ID:          proposalID,
		Title:       title,
		Description: sanitizeDescription(input.Description),
		CreatedBy:   creator,
		Eligibility: normalizeRule(input.Eligibility),
		Window: domain.VotingWindow{
			Start: input.StartsAt.UTC(),
			End:   input.EndsAt.UTC(),
		},
		Status:    domain.ProposalPending,
		CreatedAt: now,
	}
	if proposal.Window.Start.IsZero() {
		proposal.Window.Start = now
	}

	for _, opt := range input.Options {
		optTitle := sanitizeTitle(opt.Title)
		if optTitle == "" {
			continue
		}
		proposal.Options = append(proposal.Options, domain.VotingOption{
			ID:         uuid.New(),
			ProposalID: proposalID,
			Title:      optTitle,
			Metadata:   opt.Metadata,
		})
	}

	if len(proposal.Options) < 2 {
		return nil, fmt.Errorf("%w: at least two valid options are required", domain.ErrInvalidProposal)
	}
	if !proposal.Window.End.After(proposal.Window.Start) {
		return nil, fmt.Errorf("%w: voting window must end after it starts", domain.ErrInvalidProposal)
	}
	if err := proposal.Validate(); err != nil {
		return nil, err
	}
	if !proposal.Window.End.After(now) {
		return nil, fmt.Errorf("%w: voting window already ended", domain.ErrInvalidProposal)
	}
	if proposal.Window.Contains(now) {
		proposal.Status = domain.ProposalActive
	}

	if err := s.repo.Save(ctx, proposal); err != nil {
		return nil, err
	}

	s.logger.Info("proposal created",
		"event", "proposal_created",
		"proposal_id", proposal.ID,
		"status", proposal.Status,
		"options", len(proposal.Options),
	)
	return proposal, nil
}

func (s *proposalService) GetProposal(ctx context.Context, id string) (*domain.Proposal, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidProposalID
	}

	return s.repo.GetByID(ctx, proposalID)
}

func (s *proposalService) ListProposals(ctx context.Context, input ports.ListProposalsInput) ([]*domain.Proposal, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidProposal, input.Status)
	}
	return s.repo.List(ctx, pageSize, pageOffset(input.Page), input.Status)
}

func (s *proposalService) Activate(ctx context.Context, id uuid.UUID, actorID string) (*domain.Proposal, error) {
	return s.transition(ctx, id, actorID, domain.ProposalActive)
}

func (s *proposalService) Cancel(ctx context.Context, id uuid.UUID, actorID string) (*domain.Proposal, error) {
	return s.transition(ctx, id, actorID, domain.ProposalCancelled)
}

func (s *proposalService) transition(ctx context.Context, id uuid.UUID, actorID string, to domain.ProposalStatus) (*domain.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(proposal.CreatedBy, strings.TrimSpace(actorID)) {
		return nil, domain.ErrForbidden
	}

	from := proposal.Status
	if err := proposal.Transition(to); err != nil {
		return nil, err
	}
	if to == domain.ProposalActive && !proposal.Window.End.After(s.clock.Now()) {
		return nil, fmt.Errorf("%w: voting window already ended", domain.ErrInvalidStatusTransition)
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		if !errors.Is(err, domain.ErrInvalidStatusTransition) {
			s.logger.Error("proposal status update failed",
				"event", "proposal_status_update_failed",
				"proposal_id", id,
				"error", err,
			)
		}
		return nil, err
	}

	s.logger.Info("proposal status changed",
		"event", "proposal_status_changed",
		"proposal_id", id,
		"from", from,
		"to", to,
	)
	return proposal, nil
}

func normalizeRule(rule domain.EligibilityRule) domain.EligibilityRule {
	roles := make([]string, 0, len(rule.AllowedRoles))
	for _, role := range rule.AllowedRoles {
		role = strings.TrimSpace(role)
		if role != "" {
			roles = append(roles, role)
		}
	}
	rule.AllowedRoles = roles
	return rule
}
