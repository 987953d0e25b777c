package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type voterService struct {
	repo   ports.VoterRepository
	admins map[string]bool
	clock  ports.Clock
	logger *slog.Logger
}

// NewVoterService only lets the given wallets hold the admin role.
// Malformed entries are ignored.
func NewVoterService(repo ports.VoterRepository, adminWallets []string, clock ports.Clock, logger *slog.Logger) ports.VoterService {
	admins := make(map[string]bool, len(adminWallets))
	for _, w := range adminWallets {
		if id, err := domain.NormalizeWallet(w); err == nil {
			admins[id] = true
		}
	}
	return &voterService{
		repo:   repo,
		admins: admins,
		clock:  resolveClock(clock),
		logger: resolveLogger(logger),
	}
}

func (s *voterService) Register(ctx context.Context, input ports.RegisterVoterInput) (*domain.Voter, error) {
	id, err := domain.NormalizeWallet(input.ID)
	if err != nil {
		return nil, err
	}
	if input.Age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", domain.ErrInvalidVoter)
	}

	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = domain.RoleMember
	}
	if role == domain.RoleAdmin && !s.admins[id] {
		return nil, fmt.Errorf("%w: wallet may not hold the admin role", domain.ErrForbidden)
	}

	now := s.clock.Now()
	voter := &domain.Voter{
		ID:         id,
		Age:        input.Age,
		IsResident: input.IsResident,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Upsert(ctx, voter); err != nil {
		return nil, fmt.Errorf("failed to register voter: %w", err)
	}

	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("voter registered", "event", "voter_registered", "voter_id", id, "role", role)
	return stored, nil
}

func (s *voterService) Get(ctx context.Context, id string) (*domain.Voter, error) {
	return s.repo.GetByID(ctx, strings.ToLower(strings.TrimSpace(id)))
}

// Verify marks a voter as verified. Only registered admins that are still on
// the allowlist may do it.
func (s *voterService) Verify(ctx context.Context, actorID, voterID string) (*domain.Voter, error) {
	actor, err := s.repo.GetByID(ctx, strings.ToLower(strings.TrimSpace(actorID)))
	if err != nil {
		if errors.Is(err, domain.ErrVoterNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if actor.Role != domain.RoleAdmin || !s.admins[actor.ID] {
		return nil, domain.ErrForbidden
	}

	voterID = strings.ToLower(strings.TrimSpace(voterID))
	if err := s.repo.SetVerified(ctx, voterID, true); err != nil {
		return nil, err
	}

	s.logger.Info("voter verified", "event", "voter_verified", "voter_id", voterID, "by", actor.ID)
	return s.repo.GetByID(ctx, voterID)
}
