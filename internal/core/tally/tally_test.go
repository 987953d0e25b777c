package tally

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

func newProposal(titles ...string) domain.Proposal {
	p := domain.Proposal{ID: uuid.New(), Title: "Treasury allocation", Status: domain.ProposalActive}
	for _, title := range titles {
		p.Options = append(p.Options, domain.VotingOption{ID: uuid.New(), ProposalID: p.ID, Title: title})
	}
	return p
}

func voteFor(p domain.Proposal, option int, weight float64) domain.Vote {
	return domain.Vote{
		ID:         uuid.New(),
		ProposalID: p.ID,
		OptionID:   p.Options[option].ID,
		VoterID:    uuid.NewString(),
		Weight:     weight,
		CastAt:     time.Now(),
	}
}

func TestTallyMajority(t *testing.T) {
	p := newProposal("A", "B")
	votes := []domain.Vote{voteFor(p, 0, 1), voteFor(p, 0, 1), voteFor(p, 1, 1)}

	result := Tally(p, votes)

	assert.Equal(t, int64(3), result.TotalVotes)
	assert.Equal(t, 3.0, result.TotalWeight)
	require.Len(t, result.PerOption, 2)
	assert.Equal(t, p.Options[0].ID, result.PerOption[0].OptionID)
	assert.Equal(t, int64(2), result.PerOption[0].Votes)
	assert.Equal(t, 66.7, result.PerOption[0].Percentage)
	assert.Equal(t, int64(1), result.PerOption[1].Votes)
	assert.Equal(t, 33.3, result.PerOption[1].Percentage)
	require.NotNil(t, result.WinnerOptionID)
	assert.Equal(t, p.Options[0].ID, *result.WinnerOptionID)
}

func TestTallyTieHasNoWinner(t *testing.T) {
	p := newProposal("A", "B")

	result := Tally(p, []domain.Vote{voteFor(p, 0, 1), voteFor(p, 1, 1)})

	assert.Nil(t, result.WinnerOptionID)
	assert.Equal(t, 50.0, result.PerOption[0].Percentage)
	assert.Equal(t, 50.0, result.PerOption[1].Percentage)
}

func TestTallyTieForFirstAmongMany(t *testing.T) {
	p := newProposal("A", "B", "C")
	votes := []domain.Vote{voteFor(p, 0, 1), voteFor(p, 1, 2), voteFor(p, 2, 2)}

	assert.Nil(t, Tally(p, votes).WinnerOptionID)
}

func TestTallyTieBelowFirstStillHasWinner(t *testing.T) {
	p := newProposal("A", "B", "C")
	votes := []domain.Vote{voteFor(p, 0, 3), voteFor(p, 1, 1), voteFor(p, 2, 1)}

	result := Tally(p, votes)

	require.NotNil(t, result.WinnerOptionID)
	assert.Equal(t, p.Options[0].ID, *result.WinnerOptionID)
}

func TestTallyNoVotes(t *testing.T) {
	p := newProposal("A", "B", "C")

	result := Tally(p, nil)

	assert.Zero(t, result.TotalVotes)
	assert.Zero(t, result.TotalWeight)
	assert.Nil(t, result.WinnerOptionID)
	require.Len(t, result.PerOption, 3)
	for _, opt := range result.PerOption {
		assert.Zero(t, opt.Votes)
		assert.Zero(t, opt.Percentage)
	}
}

func TestTallyZeroWeightVotes(t *testing.T) {
	p := newProposal("A", "B")

	result := Tally(p, []domain.Vote{voteFor(p, 0, 0), voteFor(p, 0, 0)})

	assert.Equal(t, int64(2), result.TotalVotes)
	assert.Zero(t, result.TotalWeight)
	assert.Nil(t, result.WinnerOptionID)
	assert.Zero(t, result.PerOption[0].Percentage)
}

func TestTallyProposalWithoutOptions(t *testing.T) {
	p := domain.Proposal{ID: uuid.New()}
	stray := domain.Vote{ProposalID: p.ID, OptionID: uuid.New(), Weight: 1}

	result := Tally(p, []domain.Vote{stray})

	assert.Empty(t, result.PerOption)
	assert.NotNil(t, result.PerOption)
	assert.Nil(t, result.WinnerOptionID)
	assert.Zero(t, result.TotalVotes)
}

func TestTallyIgnoresUnknownOptionsAndBadWeights(t *testing.T) {
	p := newProposal("A", "B")
	other := newProposal("X", "Y")
	votes := []domain.Vote{
		voteFor(p, 1, 1),
		voteFor(other, 0, 1),
		voteFor(p, 0, -1),
		voteFor(p, 0, math.NaN()),
	}

	result := Tally(p, votes)

	assert.Equal(t, int64(1), result.TotalVotes)
	assert.Equal(t, 100.0, result.PerOption[1].Percentage)
	assert.Zero(t, result.PerOption[0].Votes)
	require.NotNil(t, result.WinnerOptionID)
	assert.Equal(t, p.Options[1].ID, *result.WinnerOptionID)
}

func TestTallyDoesNotMutateInputs(t *testing.T) {
	p := newProposal("A", "B")
	votes := []domain.Vote{voteFor(p, 0, 1), voteFor(p, 1, 1), voteFor(p, 1, 1)}
	optionsBefore := append([]domain.VotingOption(nil), p.Options...)
	votesBefore := append([]domain.Vote(nil), votes...)

	first := Tally(p, votes)
	second := Tally(p, votes)

	assert.Equal(t, first, second)
	assert.Equal(t, optionsBefore, p.Options)
	assert.Equal(t, votesBefore, votes)
}

func TestTallyIsOrderIndependent(t *testing.T) {
	p := newProposal("A", "B", "C", "D")
	rng := rand.New(rand.NewSource(42))
	var votes []domain.Vote
	for i := 0; i < 97; i++ {
		votes = append(votes, voteFor(p, rng.Intn(len(p.Options)), 1))
	}
	want := Tally(p, votes)

	for i := 0; i < 20; i++ {
		shuffled := append([]domain.Vote(nil), votes...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Tally(p, shuffled))
	}
}

// Each percentage is rounded on its own, so the sum may drift from 100 by at
// most half a tenth per option.
func TestTallyPercentagesSumToHundred(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 500; round++ {
		n := 2 + rng.Intn(11)
		titles := make([]string, n)
		for i := range titles {
			titles[i] = string(rune('A' + i))
		}
		p := newProposal(titles...)

		var votes []domain.Vote
		for i := 0; i < 1+rng.Intn(60); i++ {
			votes = append(votes, voteFor(p, rng.Intn(n), float64(1+rng.Intn(5))))
		}

		result := Tally(p, votes)

		var sum float64
		for _, opt := range result.PerOption {
			sum += opt.Percentage
		}
		assert.InDelta(t, 100.0, sum, 0.05*float64(n)+1e-9, "round %d, %d options", round, n)
	}
}

func TestTallySixEqualOptionsDriftAboveHundred(t *testing.T) {
	p := newProposal("A", "B", "C", "D", "E", "F")
	var votes []domain.Vote
	for i := range p.Options {
		votes = append(votes, voteFor(p, i, 1))
	}

	result := Tally(p, votes)

	var sum float64
	for _, opt := range result.PerOption {
		assert.Equal(t, 16.7, opt.Percentage)
		sum += opt.Percentage
	}
	assert.InDelta(t, 100.2, sum, 1e-9)
	assert.Nil(t, result.WinnerOptionID)
}

func TestRoundTenthHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 12.4, roundTenth(12.35))
	assert.Equal(t, 0.1, roundTenth(0.05))
	assert.Equal(t, 66.7, roundTenth(200.0/3))
	assert.Equal(t, 33.3, roundTenth(100.0/3))
}
