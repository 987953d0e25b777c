package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CampaignCategory string

const (
	CategoryTechnology  CampaignCategory = "technology"
	CategoryCommunity   CampaignCategory = "community"
	CategoryEnvironment CampaignCategory = "environment"
	CategoryEducation   CampaignCategory = "education"
	CategoryHealth      CampaignCategory = "health"
	CategoryArt         CampaignCategory = "art"
)

func (c CampaignCategory) Valid() bool {
	switch c {
	case CategoryTechnology, CategoryCommunity, CategoryEnvironment,
		CategoryEducation, CategoryHealth, CategoryArt:
		return true
	}
	return false
}

type CampaignStatus string

const (
	CampaignActive CampaignStatus = "active"
	CampaignClosed CampaignStatus = "closed"
)

type Campaign struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Category    CampaignCategory `json:"category"`
	Creator     string           `json:"creator"`
	Goal        decimal.Decimal  `json:"goal"`
	Raised      decimal.Decimal  `json:"raised"`
	Withdrawn   decimal.Decimal  `json:"withdrawn"`
	Deadline    time.Time        `json:"deadline"`
	Status      CampaignStatus   `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Available is what the creator can still withdraw.
func (c *Campaign) Available() decimal.Decimal {
	return c.Raised.Sub(c.Withdrawn)
}

// AcceptsDonations is false once the campaign is closed or past its deadline.
func (c *Campaign) AcceptsDonations(now time.Time) bool {
	return c.Status == CampaignActive && now.Before(c.Deadline)
}

type Donation struct {
	ID         uuid.UUID       `json:"id"`
	CampaignID uuid.UUID       `json:"campaign_id"`
	Donor      string          `json:"donor"`
	Amount     decimal.Decimal `json:"amount"`
	TxHash     string          `json:"tx_hash"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Withdrawal struct {
	ID         uuid.UUID       `json:"id"`
	CampaignID uuid.UUID       `json:"campaign_id"`
	Recipient  string          `json:"recipient"`
	Amount     decimal.Decimal `json:"amount"`
	TxHash     string          `json:"tx_hash"`
	CreatedAt  time.Time       `json:"created_at"`
}
