package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

func validProposalInput(start time.Time) ports.CreateProposalInput {
	return ports.CreateProposalInput{
		Title:       "<b>Park</b> cleanup",
		Description: `<p>Saturday <script>alert(1)</script>morning</p>`,
		CreatedBy:   "0x742D35CC6634C0532925A3B844BC454E4438F44E",
		Options: []ports.CreateOptionInput{
			{Title: "Yes"},
			{Title: "No", Metadata: []byte(`{"color":"red"}`)},
		},
		Eligibility: domain.EligibilityRule{MinAge: 18, AllowedRoles: []string{" member ", ""}},
		StartsAt:    start,
		EndsAt:      start.Add(time.Hour),
	}
}

func TestCreateProposal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.proposals.Create(ctx, validProposalInput(epoch.Add(time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, "Park cleanup", p.Title)
	assert.Equal(t, "<p>Saturday morning</p>", p.Description)
	assert.Equal(t, alice, p.CreatedBy)
	assert.Equal(t, domain.ProposalPending, p.Status)
	assert.Equal(t, []string{"member"}, p.Eligibility.AllowedRoles)
	require.Len(t, p.Options, 2)
	assert.NotEqual(t, p.Options[0].ID, p.Options[1].ID)
	assert.Equal(t, p.ID, p.Options[1].ProposalID)
	assert.JSONEq(t, `{"color":"red"}`, string(p.Options[1].Metadata))

	stored, err := e.proposals.GetProposal(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.Title, stored.Title)
}

func TestCreateProposalActiveWhenWindowStarted(t *testing.T) {
	e := newEnv(t)

	p, err := e.proposals.Create(context.Background(), validProposalInput(epoch.Add(-time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalActive, p.Status)
}

func TestCreateProposalRejectsInvalidInput(t *testing.T) {
	cases := map[string]func(in *ports.CreateProposalInput){
		"empty title":     func(in *ports.CreateProposalInput) { in.Title = "  <i></i> " },
		"one option":      func(in *ports.CreateProposalInput) { in.Options = in.Options[:1] },
		"blank option":    func(in *ports.CreateProposalInput) { in.Options[1].Title = " " },
		"inverted window": func(in *ports.CreateProposalInput) { in.EndsAt = in.StartsAt.Add(-time.Second) },
		"empty window":    func(in *ports.CreateProposalInput) { in.EndsAt = in.StartsAt },
		"ended window": func(in *ports.CreateProposalInput) {
			in.StartsAt, in.EndsAt = epoch.Add(-2*time.Hour), epoch.Add(-time.Hour)
		},
		"negative min age": func(in *ports.CreateProposalInput) { in.Eligibility.MinAge = -1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			in := validProposalInput(epoch.Add(time.Hour))
			mutate(&in)

			_, err := e.proposals.Create(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidProposal)
		})
	}

	t.Run("bad creator wallet", func(t *testing.T) {
		e := newEnv(t)
		in := validProposalInput(epoch.Add(time.Hour))
		in.CreatedBy = "not-a-wallet"

		_, err := e.proposals.Create(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidWallet)
	})
}

func TestGetProposalErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.proposals.GetProposal(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidProposalID)

	_, err = e.proposals.GetProposal(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}

func TestListProposals(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := e.proposals.Create(ctx, validProposalInput(epoch.Add(time.Hour)))
		require.NoError(t, err)
		e.clock.Advance(time.Second)
	}

	first, err := e.proposals.ListProposals(ctx, ports.ListProposalsInput{Page: 1})
	require.NoError(t, err)
	assert.Len(t, first, 10)

	second, err := e.proposals.ListProposals(ctx, ports.ListProposalsInput{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second, 2)

	active, err := e.proposals.ListProposals(ctx, ports.ListProposalsInput{Status: domain.ProposalActive})
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = e.proposals.ListProposals(ctx, ports.ListProposalsInput{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidProposal)
}

func TestActivateAndCancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.proposals.Create(ctx, validProposalInput(epoch.Add(time.Hour)))
	require.NoError(t, err)

	_, err = e.proposals.Activate(ctx, p.ID, bob)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	activated, err := e.proposals.Activate(ctx, p.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalActive, activated.Status)

	_, err = e.proposals.Activate(ctx, p.ID, alice)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	cancelled, err := e.proposals.Cancel(ctx, p.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalCancelled, cancelled.Status)

	_, err = e.proposals.Activate(ctx, p.ID, alice)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	_, err = e.proposals.Cancel(ctx, uuid.New(), alice)
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}
