package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type campaignService struct {
	repo      ports.CampaignRepository
	submitter ports.TransactionSubmitter
	clock     ports.Clock
	logger    *slog.Logger
}

func NewCampaignService(repo ports.CampaignRepository, submitter ports.TransactionSubmitter, clock ports.Clock, logger *slog.Logger) ports.CampaignService {
	return &campaignService{
		repo:      repo,
		submitter: submitter,
		clock:     resolveClock(clock),
		logger:    resolveLogger(logger),
	}
}

func (s *campaignService) Create(ctx context.Context, input ports.CreateCampaignInput) (*domain.Campaign, error) {
	title := sanitizeTitle(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidCampaign)
	}
	if !input.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidCampaign, input.Category)
	}
	if !input.Goal.IsPositive() {
		return nil, fmt.Errorf("%w: goal must be greater than zero", domain.ErrInvalidCampaign)
	}
	creator, err := domain.NormalizeWallet(input.Creator)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !input.Deadline.After(now) {
		return nil, fmt.Errorf("%w: deadline must be in the future", domain.ErrInvalidCampaign)
	}

	campaign := &domain.Campaign{
		ID:          uuid.New(),
		Title:       title,
		Description: sanitizeDescription(input.Description),
		Category:    input.Category,
		Creator:     creator,
		Goal:        input.Goal,
		Deadline:    input.Deadline.UTC(),
		Status:      domain.CampaignActive,
		CreatedAt:   now,
	}

	if err := s.repo.Save(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("campaign created",
		"event", "campaign_created",
		"campaign_id", campaign.ID,
		"category", campaign.Category,
		"goal", campaign.Goal.String(),
	)
	return campaign, nil
}

func (s *campaignService) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	campaignID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid campaign id", domain.ErrInvalidCampaign)
	}
	return s.repo.GetByID(ctx, campaignID)
}

func (s *campaignService) List(ctx context.Context, input ports.ListCampaignsInput) ([]*domain.Campaign, error) {
	if input.Category != "" && !input.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidCampaign, input.Category)
	}
	return s.repo.List(ctx, pageSize, pageOffset(input.Page), input.Category)
}

func (s *campaignService) Donate(ctx context.Context, input ports.DonateInput) (*domain.Donation, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	donor, err := domain.NormalizeWallet(input.Donor)
	if err != nil {
		return nil, err
	}

	campaign, err := s.repo.GetByID(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.AcceptsDonations(s.clock.Now()) {
		return nil, domain.ErrCampaignClosed
	}

	receipt, err := s.submitter.Submit(ctx, domain.Transaction{
		Kind:   domain.TxDonation,
		From:   donor,
		To:     campaign.Creator,
		Amount: input.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit donation: %w", err)
	}

	donation := &domain.Donation{
		ID:         uuid.New(),
		CampaignID: campaign.ID,
		Donor:      donor,
		Amount:     input.Amount,
		TxHash:     receipt.Hash,
		CreatedAt:  receipt.ConfirmedAt,
	}
	if err := s.repo.RecordDonation(ctx, donation); err != nil {
		s.logger.Error("donation confirmed but not recorded",
			"event", "donation_record_failed",
			"campaign_id", campaign.ID,
			"tx_hash", receipt.Hash,
			"error", err,
		)
		return nil, fmt.Errorf("failed to record donation: %w", err)
	}

	s.logger.Info("donation received",
		"event", "donation_received",
		"campaign_id", campaign.ID,
		"donor", donor,
		"amount", input.Amount.String(),
		"tx_hash", receipt.Hash,
		"block", receipt.BlockNumber,
	)
	return donation, nil
}

// Withdraw sends funds to the campaign creator, who is the only one allowed
// to ask for them.
func (s *campaignService) Withdraw(ctx context.Context, input ports.WithdrawInput) (*domain.Withdrawal, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	campaign, err := s.repo.GetByID(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(campaign.Creator, strings.TrimSpace(input.Actor)) {
		return nil, domain.ErrForbidden
	}
	if input.Amount.GreaterThan(campaign.Available()) {
		return nil, domain.ErrInsufficientFunds
	}

	receipt, err := s.submitter.Submit(ctx, domain.Transaction{
		Kind:   domain.TxWithdrawal,
		From:   campaign.ID.String(),
		To:     campaign.Creator,
		Amount: input.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit withdrawal: %w", err)
	}

	withdrawal := &domain.Withdrawal{
		ID:         uuid.New(),
		CampaignID: campaign.ID,
		Recipient:  campaign.Creator,
		Amount:     input.Amount,
		TxHash:     receipt.Hash,
		CreatedAt:  receipt.ConfirmedAt,
	}
	if err := s.repo.RecordWithdrawal(ctx, withdrawal); err != nil {
		s.logger.Error("withdrawal confirmed but not recorded",
			"event", "withdrawal_record_failed",
			"campaign_id", campaign.ID,
			"tx_hash", receipt.Hash,
			"error", err,
		)
		return nil, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	s.logger.Info("withdrawal sent",
		"event", "withdrawal_sent",
		"campaign_id", campaign.ID,
		"amount", input.Amount.String(),
		"tx_hash", receipt.Hash,
	)
	return withdrawal, nil
}

func (s *campaignService) ListDonations(ctx context.Context, campaignID uuid.UUID) ([]domain.Donation, error) {
	if _, err := s.repo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.repo.ListDonations(ctx, campaignID)
}
