package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type schedulerService struct {
	proposalRepo  ports.ProposalRepository
	resultService ports.ResultService
	clock         ports.Clock
	logger        *slog.Logger
}

func NewSchedulerService(proposalRepo ports.ProposalRepository, resultService ports.ResultService, clock ports.Clock, logger *slog.Logger) ports.SchedulerService {
	return &schedulerService{
		proposalRepo:  proposalRepo,
		resultService: resultService,
		clock:         resolveClock(clock),
		logger:        resolveLogger(logger),
	}
}

// ProcessDue opens pending proposals whose window has started and finalizes
// active proposals whose window has ended. Each proposal is handled in its
// own goroutine; the first error is returned once all of them are done.
func (s *schedulerService) ProcessDue(ctx context.Context) error {
	now := s.clock.Now()
	proposals, err := s.proposalRepo.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to fetch due proposals: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(proposals))

	for _, p := range proposals {
		wg.Add(1)
		go func(p *domain.Proposal) {
			defer wg.Done()
			if err := s.process(ctx, p); err != nil {
				errChan <- fmt.Errorf("failed to process proposal %s: %w", p.ID, err)
			}
		}(p)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	if len(proposals) > 0 {
		s.logger.Info("due proposals processed", "event", "scheduler_run", "count", len(proposals))
	}
	return nil
}

func (s *schedulerService) process(ctx context.Context, p *domain.Proposal) error {
	now := s.clock.Now()
	switch p.Status {
	case domain.ProposalPending:
		if now.Before(p.Window.Start) {
			return nil
		}
		if err := s.open(ctx, p.ID); err != nil {
			return err
		}
		if !now.Before(p.Window.End) {
			return s.finalize(ctx, p.ID)
		}
		return nil
	case domain.ProposalActive:
		if now.Before(p.Window.End) {
			return nil
		}
		return s.finalize(ctx, p.ID)
	}
	return nil
}

func (s *schedulerService) open(ctx context.Context, id uuid.UUID) error {
	err := s.proposalRepo.UpdateStatus(ctx, id, domain.ProposalPending, domain.ProposalActive)
	if errors.Is(err, domain.ErrInvalidStatusTransition) {
		// Someone else moved it first.
		return nil
	}
	if err == nil {
		s.logger.Info("proposal opened", "event", "proposal_opened", "proposal_id", id)
	}
	return err
}

func (s *schedulerService) finalize(ctx context.Context, id uuid.UUID) error {
	_, err := s.resultService.Finalize(ctx, id)
	if errors.Is(err, domain.ErrInvalidStatusTransition) {
		return nil
	}
	return err
}
