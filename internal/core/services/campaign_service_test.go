package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/crowdvote/internal/adapters/chain/mock"
	"github.com/vncsmyrnk/crowdvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

func newCampaignService(t *testing.T) (ports.CampaignService, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	svc := NewCampaignService(memory.NewStore().Campaigns(), mock.NewSubmitter(0, nil), clock, nil)
	return svc, clock
}

func validCampaignInput() ports.CreateCampaignInput {
	return ports.CreateCampaignInput{
		Title:       "Community solar roof",
		Description: "<p>Panels for the library</p>",
		Category:    domain.CategoryEnvironment,
		Creator:     alice,
		Goal:        decimal.RequireFromString("12.5"),
		Deadline:    epoch.Add(30 * 24 * time.Hour),
	}
}

func TestCreateCampaign(t *testing.T) {
	svc, _ := newCampaignService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, validCampaignInput())
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignActive, c.Status)
	assert.True(t, c.Raised.IsZero())

	got, err := svc.Get(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCampaign)
	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestCreateCampaignValidation(t *testing.T) {
	cases := map[string]func(in *ports.CreateCampaignInput){
		"no title":        func(in *ports.CreateCampaignInput) { in.Title = "" },
		"bad category":    func(in *ports.CreateCampaignInput) { in.Category = "gaming" },
		"zero goal":       func(in *ports.CreateCampaignInput) { in.Goal = decimal.Zero },
		"past deadline":   func(in *ports.CreateCampaignInput) { in.Deadline = epoch.Add(-time.Hour) },
		"negative goal":   func(in *ports.CreateCampaignInput) { in.Goal = decimal.NewFromInt(-1) },
		"deadline is now": func(in *ports.CreateCampaignInput) { in.Deadline = epoch },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, _ := newCampaignService(t)
			in := validCampaignInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidCampaign)
		})
	}
}

func TestDonateAndWithdraw(t *testing.T) {
	svc, _ := newCampaignService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, validCampaignInput())
	require.NoError(t, err)

	d, err := svc.Donate(ctx, ports.DonateInput{CampaignID: c.ID, Donor: bob, Amount: decimal.RequireFromString("0.75")})
	require.NoError(t, err)
	assert.Regexp(t, `^0x[0-9a-f]{64}$`, d.TxHash)

	_, err = svc.Donate(ctx, ports.DonateInput{CampaignID: c.ID, Donor: carol, Amount: decimal.RequireFromString("1.25")})
	require.NoError(t, err)

	got, err := svc.Get(ctx, c.ID.String())
	require.NoError(t, err)
	assert.True(t, got.Raised.Equal(decimal.NewFromInt(2)), got.Raised.String())

	donations, err := svc.ListDonations(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, donations, 2)

	_, err = svc.Withdraw(ctx, ports.WithdrawInput{CampaignID: c.ID, Actor: bob, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Withdraw(ctx, ports.WithdrawInput{CampaignID: c.ID, Actor: alice, Amount: decimal.RequireFromString("2.01")})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	w, err := svc.Withdraw(ctx, ports.WithdrawInput{CampaignID: c.ID, Actor: alice, Amount: decimal.RequireFromString("1.5")})
	require.NoError(t, err)
	assert.Equal(t, alice, w.Recipient)

	got, err = svc.Get(ctx, c.ID.String())
	require.NoError(t, err)
	assert.True(t, got.Available().Equal(decimal.RequireFromString("0.5")))
}

func TestDonateRejections(t *testing.T) {
	svc, clock := newCampaignService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, validCampaignInput())
	require.NoError(t, err)

	_, err = svc.Donate(ctx, ports.DonateInput{CampaignID: c.ID, Donor: bob, Amount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Donate(ctx, ports.DonateInput{CampaignID: c.ID, Donor: "bob", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidWallet)

	_, err = svc.Donate(ctx, ports.DonateInput{CampaignID: uuid.New(), Donor: bob, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrCampaignNotFound)

	clock.Advance(31 * 24 * time.Hour)
	_, err = svc.Donate(ctx, ports.DonateInput{CampaignID: c.ID, Donor: bob, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrCampaignClosed)
}

func TestListCampaignsByCategory(t *testing.T) {
	svc, clock := newCampaignService(t)
	ctx := context.Background()

	for _, cat := range []domain.CampaignCategory{domain.CategoryArt, domain.CategoryHealth, domain.CategoryArt} {
		in := validCampaignInput()
		in.Category = cat
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	art, err := svc.List(ctx, ports.ListCampaignsInput{Category: domain.CategoryArt})
	require.NoError(t, err)
	assert.Len(t, art, 2)

	all, err := svc.List(ctx, ports.ListCampaignsInput{Page: 1})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.List(ctx, ports.ListCampaignsInput{Category: "gaming"})
	assert.ErrorIs(t, err, domain.ErrInvalidCampaign)
}

type drainedCampaigns struct {
	ports.CampaignRepository
}

// RecordWithdrawal behaves as if another withdrawal emptied the campaign
// after the balance check.
func (drainedCampaigns) RecordWithdrawal(context.Context, *domain.Withdrawal) error {
	return domain.ErrInsufficientFunds
}

func TestWithdrawLogsUnrecordedTransaction(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	repo := drainedCampaigns{memory.NewStore().Campaigns()}
	svc := NewCampaignService(repo, mock.NewSubmitter(0, nil), newFakeClock(), logger)
	ctx := context.Background()

	c, err := svc.Create(ctx, validCampaignInput())
	require.NoError(t, err)
	_, err = svc.Donate(ctx, ports.DonateInput{CampaignID: c.ID, Donor: bob, Amount: decimal.NewFromInt(2)})
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, ports.WithdrawInput{CampaignID: c.ID, Actor: alice, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Contains(t, logs.String(), `"event":"withdrawal_record_failed"`)
	assert.Contains(t, logs.String(), `"tx_hash":"0x`)
}
