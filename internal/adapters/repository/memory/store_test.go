package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newProposal(status domain.ProposalStatus, start, end time.Time) *domain.Proposal {
	id := uuid.New()
	return &domain.Proposal{
		ID:    id,
		Title: "Fund the community garden",
		Options: []domain.VotingOption{
			{ID: uuid.New(), ProposalID: id, Title: "Yes"},
			{ID: uuid.New(), ProposalID: id, Title: "No"},
		},
		Window:    domain.VotingWindow{Start: start, End: end},
		Status:    status,
		CreatedAt: start,
	}
}

func TestAppendRejectsSecondVoteFromSameVoter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	votes := store.Votes()
	p := newProposal(domain.ProposalActive, now, now.Add(time.Hour))
	elsewhere := newProposal(domain.ProposalActive, now, now.Add(time.Hour))
	require.NoError(t, store.Proposals().Save(ctx, p))
	require.NoError(t, store.Proposals().Save(ctx, elsewhere))
	proposalID := p.ID

	first := &domain.Vote{ID: uuid.New(), ProposalID: proposalID, OptionID: uuid.New(), VoterID: "0xaa", Weight: 1}
	require.NoError(t, votes.Append(ctx, first))

	second := &domain.Vote{ID: uuid.New(), ProposalID: proposalID, OptionID: uuid.New(), VoterID: "0xaa", Weight: 1}
	assert.ErrorIs(t, votes.Append(ctx, second), domain.ErrAlreadyVoted)

	other := &domain.Vote{ID: uuid.New(), ProposalID: elsewhere.ID, OptionID: uuid.New(), VoterID: "0xaa", Weight: 1}
	assert.NoError(t, votes.Append(ctx, other))

	all, err := votes.AllFor(ctx, proposalID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)

	found, err := votes.FindByVoter(ctx, proposalID, "0xaa")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.OptionID, found.OptionID)

	missing, err := votes.FindByVoter(ctx, proposalID, "0xbb")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAppendConcurrentSameVoterAcceptsOne(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	votes := store.Votes()
	p := newProposal(domain.ProposalActive, now, now.Add(time.Hour))
	require.NoError(t, store.Proposals().Save(ctx, p))
	proposalID := p.ID

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := votes.Append(ctx, &domain.Vote{ID: uuid.New(), ProposalID: proposalID, VoterID: "0xaa", Weight: 1})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	all, err := votes.AllFor(ctx, proposalID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAppendRequiresActiveProposal(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	votes := store.Votes()
	p := newProposal(domain.ProposalActive, now, now.Add(time.Hour))
	require.NoError(t, store.Proposals().Save(ctx, p))

	err := votes.Append(ctx, &domain.Vote{ID: uuid.New(), ProposalID: uuid.New(), VoterID: "0xaa", Weight: 1})
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)

	require.NoError(t, store.Proposals().UpdateStatus(ctx, p.ID, domain.ProposalActive, domain.ProposalCompleted))
	err = votes.Append(ctx, &domain.Vote{ID: uuid.New(), ProposalID: p.ID, VoterID: "0xaa", Weight: 1})
	assert.ErrorIs(t, err, domain.ErrVotingClosed)

	all, err := votes.AllFor(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProposalReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Proposals()
	p := newProposal(domain.ProposalActive, now, now.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Options[0].Title = "changed"
	got.Status = domain.ProposalCancelled

	again, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yes", again.Options[0].Title)
	assert.Equal(t, domain.ProposalActive, again.Status)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}

func TestUpdateStatusIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Proposals()
	p := newProposal(domain.ProposalPending, now, now.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, p))

	require.NoError(t, repo.UpdateStatus(ctx, p.ID, domain.ProposalPending, domain.ProposalActive))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, p.ID, domain.ProposalPending, domain.ProposalCancelled), domain.ErrInvalidStatusTransition)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), domain.ProposalPending, domain.ProposalActive), domain.ErrProposalNotFound)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalActive, got.Status)
}

func TestListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Proposals()
	for i := 0; i < 3; i++ {
		p := newProposal(domain.ProposalActive, now.Add(time.Duration(i)*time.Minute), now.Add(time.Hour))
		require.NoError(t, repo.Save(ctx, p))
	}
	require.NoError(t, repo.Save(ctx, newProposal(domain.ProposalCancelled, now, now.Add(time.Hour))))

	active, err := repo.List(ctx, 10, 0, domain.ProposalActive)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.True(t, active[0].CreatedAt.After(active[1].CreatedAt))

	all, err := repo.List(ctx, 10, 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	second, err := repo.List(ctx, 2, 2, "")
	require.NoError(t, err)
	assert.Len(t, second, 2)

	beyond, err := repo.List(ctx, 2, 10, "")
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestListDue(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Proposals()

	opening := newProposal(domain.ProposalPending, now.Add(-time.Minute), now.Add(time.Hour))
	future := newProposal(domain.ProposalPending, now.Add(time.Minute), now.Add(time.Hour))
	closing := newProposal(domain.ProposalActive, now.Add(-time.Hour), now)
	running := newProposal(domain.ProposalActive, now.Add(-time.Hour), now.Add(time.Hour))
	done := newProposal(domain.ProposalCompleted, now.Add(-2*time.Hour), now.Add(-time.Hour))
	for _, p := range []*domain.Proposal{opening, future, closing, running, done} {
		require.NoError(t, repo.Save(ctx, p))
	}

	due, err := repo.ListDue(ctx, now)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(due))
	for _, p := range due {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{opening.ID, closing.ID}, ids)
}

func TestVoterUpsertKeepsVerification(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Voters()

	require.NoError(t, repo.Upsert(ctx, &domain.Voter{ID: "0xaa", Age: 30, Role: domain.RoleMember, CreatedAt: now}))
	require.NoError(t, repo.SetVerified(ctx, "0xaa", true))
	require.NoError(t, repo.Upsert(ctx, &domain.Voter{ID: "0xaa", Age: 31, Role: domain.RoleMember, CreatedAt: now.Add(time.Hour)}))

	v, err := repo.GetByID(ctx, "0xaa")
	require.NoError(t, err)
	assert.True(t, v.IsVerified)
	assert.Equal(t, 31, v.Age)
	assert.Equal(t, now, v.CreatedAt)

	assert.ErrorIs(t, repo.SetVerified(ctx, "0xbb", true), domain.ErrVoterNotFound)
	_, err = repo.GetByID(ctx, "0xbb")
	assert.ErrorIs(t, err, domain.ErrVoterNotFound)
}

func TestResultSaveKeepsFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Results()
	proposalID := uuid.New()

	got, err := repo.GetByProposal(ctx, proposalID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Save(ctx, &domain.ProposalResult{ProposalID: proposalID, Tally: domain.TallyResult{TotalVotes: 3}, FinalizedAt: now}))
	require.NoError(t, repo.Save(ctx, &domain.ProposalResult{ProposalID: proposalID, Tally: domain.TallyResult{TotalVotes: 5}, FinalizedAt: now.Add(time.Minute)}))

	got, err = repo.GetByProposal(ctx, proposalID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.Tally.TotalVotes)
}

func TestCampaignFunds(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Campaigns()
	c := &domain.Campaign{
		ID:       uuid.New(),
		Title:    "Solar panels",
		Category: domain.CategoryEnvironment,
		Creator:  "0xaa",
		Goal:     decimal.NewFromInt(10),
		Deadline: now.Add(24 * time.Hour),
		Status:   domain.CampaignActive,
	}
	require.NoError(t, repo.Save(ctx, c))

	require.NoError(t, repo.RecordDonation(ctx, &domain.Donation{ID: uuid.New(), CampaignID: c.ID, Donor: "0xbb", Amount: decimal.RequireFromString("1.5")}))
	require.NoError(t, repo.RecordDonation(ctx, &domain.Donation{ID: uuid.New(), CampaignID: c.ID, Donor: "0xcc", Amount: decimal.RequireFromString("2.25")}))

	require.NoError(t, repo.RecordWithdrawal(ctx, &domain.Withdrawal{ID: uuid.New(), CampaignID: c.ID, Amount: decimal.NewFromInt(3)}))
	err := repo.RecordWithdrawal(ctx, &domain.Withdrawal{ID: uuid.New(), CampaignID: c.ID, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Raised.Equal(decimal.RequireFromString("3.75")))
	assert.True(t, got.Withdrawn.Equal(decimal.NewFromInt(3)))
	assert.True(t, got.Available().Equal(decimal.RequireFromString("0.75")))

	donations, err := repo.ListDonations(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, donations, 2)
	assert.Equal(t, "0xbb", donations[0].Donor)

	assert.ErrorIs(t, repo.RecordDonation(ctx, &domain.Donation{CampaignID: uuid.New(), Amount: decimal.NewFromInt(1)}), domain.ErrCampaignNotFound)
}
