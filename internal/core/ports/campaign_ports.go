package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

type CampaignRepository interface {
	Save(ctx context.Context, campaign *domain.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	List(ctx context.Context, limit, offset int, category domain.CampaignCategory) ([]*domain.Campaign, error)
	// RecordDonation stores the donation and raises the campaign total in one step.
	RecordDonation(ctx context.Context, donation *domain.Donation) error
	// RecordWithdrawal stores the withdrawal only if the campaign still holds
	// enough funds; otherwise it returns ErrInsufficientFunds.
	RecordWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) error
	ListDonations(ctx context.Context, campaignID uuid.UUID) ([]domain.Donation, error)
}

type CreateCampaignInput struct {
	Title       string
	Description string
	Category    domain.CampaignCategory
	Creator     string
	Goal        decimal.Decimal
	Deadline    time.Time
}

type ListCampaignsInput struct {
	Page     int
	Category domain.CampaignCategory
}

type DonateInput struct {
	CampaignID uuid.UUID
	Donor      string
	Amount     decimal.Decimal
}

type WithdrawInput struct {
	CampaignID uuid.UUID
	Actor      string
	Amount     decimal.Decimal
}

type CampaignService interface {
	Create(ctx context.Context, input CreateCampaignInput) (*domain.Campaign, error)
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context, input ListCampaignsInput) ([]*domain.Campaign, error)
	Donate(ctx context.Context, input DonateInput) (*domain.Donation, error)
	Withdraw(ctx context.Context, input WithdrawInput) (*domain.Withdrawal, error)
	ListDonations(ctx context.Context, campaignID uuid.UUID) ([]domain.Donation, error)
}
