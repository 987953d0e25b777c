package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/crowdvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

const (
	alice = "0x742d35cc6634c0532925a3b844bc454e4438f44e"
	bob   = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	carol = "0x1111111111111111111111111111111111111111"
	admin = "0xadadadadadadadadadadadadadadadadadadadad"
)

var epoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	store     *memory.Store
	clock     *fakeClock
	proposals ports.ProposalService
	votes     ports.VoteService
	results   ports.ResultService
	voters    ports.VoterService
	scheduler ports.SchedulerService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	clock := newFakeClock()
	results := NewResultService(store.Proposals(), store.Votes(), store.Results(), clock, nil)
	return &env{
		store:     store,
		clock:     clock,
		proposals: NewProposalService(store.Proposals(), clock, nil),
		votes:     NewVoteService(store.Proposals(), store.Votes(), store.Voters(), clock, nil),
		results:   results,
		voters:    NewVoterService(store.Voters(), []string{admin}, clock, nil),
		scheduler: NewSchedulerService(store.Proposals(), results, clock, nil),
	}
}

// openProposal creates a proposal whose window is already running.
func (e *env) openProposal(t *testing.T, rule domain.EligibilityRule, options ...string) *domain.Proposal {
	t.Helper()
	if len(options) == 0 {
		options = []string{"Yes", "No"}
	}
	in := ports.CreateProposalInput{
		Title:       "Repave the main square",
		CreatedBy:   alice,
		Eligibility: rule,
		StartsAt:    e.clock.Now(),
		EndsAt:      e.clock.Now().Add(24 * time.Hour),
	}
	for _, o := range options {
		in.Options = append(in.Options, ports.CreateOptionInput{Title: o})
	}
	p, err := e.proposals.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, domain.ProposalActive, p.Status)
	return p
}

func (e *env) register(t *testing.T, id string, age int, resident bool, role string) {
	t.Helper()
	_, err := e.voters.Register(context.Background(), ports.RegisterVoterInput{ID: id, Age: age, IsResident: resident, Role: role})
	require.NoError(t, err)
}
