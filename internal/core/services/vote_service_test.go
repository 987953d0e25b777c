package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

func TestVoteRecordsWeightedVote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.openProposal(t, domain.EligibilityRule{})
	e.register(t, bob, 30, true, "")

	vote, err := e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[0].ID, VoterID: bob})
	require.NoError(t, err)
	assert.Equal(t, 1.0, vote.Weight)
	assert.Equal(t, epoch, vote.CastAt)

	mine, err := e.votes.MyVote(ctx, p.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, vote.ID, mine.ID)
}

func TestVoteRejectsSecondVote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.openProposal(t, domain.EligibilityRule{})
	e.register(t, bob, 30, true, "")

	_, err := e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[0].ID, VoterID: bob})
	require.NoError(t, err)

	_, err = e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[1].ID, VoterID: bob})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	var eligErr *domain.EligibilityError
	require.True(t, errors.As(err, &eligErr))
	assert.Equal(t, domain.ReasonAlreadyVoted, eligErr.Reason)
}

func TestVoteRejectsUnderageVoter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.openProposal(t, domain.EligibilityRule{MinAge: 18})
	e.register(t, bob, 17, true, "")

	_, err := e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[0].ID, VoterID: bob})
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	var eligErr *domain.EligibilityError
	require.True(t, errors.As(err, &eligErr))
	assert.Equal(t, domain.ReasonBelowMinimumAge, eligErr.Reason)

	votes, err := e.store.Votes().AllFor(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestVoteWindowAndStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pending proposal", func(t *testing.T) {
		e := newEnv(t)
		in := validProposalInput(epoch.Add(time.Hour))
		p, err := e.proposals.Create(ctx, in)
		require.NoError(t, err)
		e.register(t, bob, 30, true, "")

		_, err = e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[0].ID, VoterID: bob})
		assert.ErrorIs(t, err, domain.ErrVotingClosed)
	})

	t.Run("window ended", func(t *testing.T) {
		e := newEnv(t)
		p := e.openProposal(t, domain.EligibilityRule{})
		e.register(t, bob, 30, true, "")
		e.clock.Advance(24 * time.Hour)

		_, err := e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[0].ID, VoterID: bob})
		assert.ErrorIs(t, err, domain.ErrVotingClosed)
	})

	t.Run("cancelled", func(t *testing.T) {
		e := newEnv(t)
		p := e.openProposal(t, domain.EligibilityRule{})
		e.register(t, bob, 30, true, "")
		_, err := e.proposals.Cancel(ctx, p.ID, alice)
		require.NoError(t, err)

		_, err = e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[0].ID, VoterID: bob})
		assert.ErrorIs(t, err, domain.ErrVotingClosed)
	})
}

func TestVoteInputErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.openProposal(t, domain.EligibilityRule{})
	e.register(t, bob, 30, true, "")

	_, err := e.votes.Vote(ctx, ports.VoteInput{ProposalID: uuid.New(), OptionID: p.Options[0].ID, VoterID: bob})
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)

	_, err = e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: uuid.New(), VoterID: bob})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	_, err = e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[0].ID, VoterID: carol})
	assert.ErrorIs(t, err, domain.ErrVoterNotFound)

	_, err = e.votes.MyVote(ctx, p.ID, bob)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)
}

func TestCheckEligibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.openProposal(t, domain.EligibilityRule{VerificationRequired: true, ResidencyRequired: true})
	e.register(t, bob, 30, false, "")

	decision, err := e.votes.CheckEligibility(ctx, p.ID, bob)
	require.NoError(t, err)
	assert.False(t, decision.Eligible)
	assert.Equal(t, domain.ReasonVerificationRequired, decision.Reason)
	assert.Zero(t, decision.Weight)

	_, err = e.votes.CheckEligibility(ctx, p.ID, carol)
	assert.ErrorIs(t, err, domain.ErrVoterNotFound)
}

func TestConcurrentVotesFromOneVoterCountOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.openProposal(t, domain.EligibilityRule{})
	e.register(t, bob, 30, true, "")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.votes.Vote(ctx, ports.VoteInput{ProposalID: p.ID, OptionID: p.Options[i%2].ID, VoterID: bob})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrAlreadyVoted):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 19, rejected)
}
