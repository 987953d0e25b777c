// Package memory keeps every repository in process memory. It backs the
// server when no database is configured and the service tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type voteKey struct {
	proposalID uuid.UUID
	voterID    string
}

// Store is the shared state behind the repositories. One lock guards all of
// it, so every write is atomic with respect to every read.
type Store struct {
	mu sync.RWMutex

	proposals   map[uuid.UUID]domain.Proposal
	votes       map[uuid.UUID][]domain.Vote
	votesByPair map[voteKey]int
	voters      map[string]domain.Voter
	results     map[uuid.UUID]domain.ProposalResult
	campaigns   map[uuid.UUID]domain.Campaign
	donations   map[uuid.UUID][]domain.Donation
	withdrawals map[uuid.UUID][]domain.Withdrawal
}

func NewStore() *Store {
	return &Store{
		proposals:   make(map[uuid.UUID]domain.Proposal),
		votes:       make(map[uuid.UUID][]domain.Vote),
		votesByPair: make(map[voteKey]int),
		voters:      make(map[string]domain.Voter),
		results:     make(map[uuid.UUID]domain.ProposalResult),
		campaigns:   make(map[uuid.UUID]domain.Campaign),
		donations:   make(map[uuid.UUID][]domain.Donation),
		withdrawals: make(map[uuid.UUID][]domain.Withdrawal),
	}
}

func (s *Store) Proposals() ports.ProposalRepository { return proposalRepository{s} }
func (s *Store) Votes() ports.VoteStore              { return voteStore{s} }
func (s *Store) Voters() ports.VoterRepository       { return voterRepository{s} }
func (s *Store) Results() ports.ResultRepository     { return resultRepository{s} }
func (s *Store) Campaigns() ports.CampaignRepository { return campaignRepository{s} }

// Proposals

type proposalRepository struct{ s *Store }

func (r proposalRepository) Save(_ context.Context, proposal *domain.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.proposals[proposal.ID] = cloneProposal(*proposal)
	return nil
}

func (r proposalRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	out := cloneProposal(p)
	return &out, nil
}

// List returns proposals newest first.
func (r proposalRepository) List(_ context.Context, limit, offset int, status domain.ProposalStatus) ([]*domain.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]domain.Proposal, 0, len(r.s.proposals))
	for _, p := range r.s.proposals {
		if status != "" && p.Status != status {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	out := make([]*domain.Proposal, 0, limit)
	for _, p := range page(all, limit, offset) {
		c := cloneProposal(p)
		out = append(out, &c)
	}
	return out, nil
}

func (r proposalRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.ProposalStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.proposals[id]
	if !ok {
		return domain.ErrProposalNotFound
	}
	if p.Status != from {
		return domain.ErrInvalidStatusTransition
	}
	p.Status = to
	r.s.proposals[id] = p
	return nil
}

func (r proposalRepository) ListDue(_ context.Context, now time.Time) ([]*domain.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Proposal
	for _, p := range r.s.proposals {
		due := (p.Status == domain.ProposalPending && !now.Before(p.Window.Start)) ||
			(p.Status == domain.ProposalActive && !now.Before(p.Window.End))
		if due {
			c := cloneProposal(p)
			out = append(out, &c)
		}
	}
	return out, nil
}

// Votes

type voteStore struct{ s *Store }

func (r voteStore) Append(_ context.Context, vote *domain.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.proposals[vote.ProposalID]
	if !ok {
		return domain.ErrProposalNotFound
	}
	if p.Status != domain.ProposalActive {
		return domain.ErrVotingClosed
	}

	key := voteKey{vote.ProposalID, vote.VoterID}
	if _, dup := r.s.votesByPair[key]; dup {
		return domain.ErrAlreadyVoted
	}
	r.s.votesByPair[key] = len(r.s.votes[vote.ProposalID])
	r.s.votes[vote.ProposalID] = append(r.s.votes[vote.ProposalID], *vote)
	return nil
}

func (r voteStore) AllFor(_ context.Context, proposalID uuid.UUID) ([]domain.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return slices.Clone(r.s.votes[proposalID]), nil
}

func (r voteStore) FindByVoter(_ context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.votesByPair[voteKey{proposalID, voterID}]
	if !ok {
		return nil, nil
	}
	v := r.s.votes[proposalID][i]
	return &v, nil
}

// Voters

type voterRepository struct{ s *Store }

func (r voterRepository) Upsert(_ context.Context, voter *domain.Voter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v := *voter
	if existing, ok := r.s.voters[v.ID]; ok {
		v.IsVerified = existing.IsVerified
		v.CreatedAt = existing.CreatedAt
	}
	r.s.voters[v.ID] = v
	return nil
}

func (r voterRepository) GetByID(_ context.Context, id string) (*domain.Voter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.voters[id]
	if !ok {
		return nil, domain.ErrVoterNotFound
	}
	return &v, nil
}

func (r voterRepository) SetVerified(_ context.Context, id string, verified bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.voters[id]
	if !ok {
		return domain.ErrVoterNotFound
	}
	v.IsVerified = verified
	r.s.voters[id] = v
	return nil
}

// Results

type resultRepository struct{ s *Store }

// Save keeps the first result stored for a proposal.
func (r resultRepository) Save(_ context.Context, result *domain.ProposalResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.results[result.ProposalID]; ok {
		return nil
	}
	res := *result
	res.Tally.PerOption = slices.Clone(result.Tally.PerOption)
	r.s.results[result.ProposalID] = res
	return nil
}

func (r resultRepository) GetByProposal(_ context.Context, proposalID uuid.UUID) (*domain.ProposalResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.results[proposalID]
	if !ok {
		return nil, nil
	}
	res.Tally.PerOption = slices.Clone(res.Tally.PerOption)
	return &res, nil
}

// Campaigns

type campaignRepository struct{ s *Store }

func (r campaignRepository) Save(_ context.Context, campaign *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.campaigns[campaign.ID] = *campaign
	return nil
}

func (r campaignRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return &c, nil
}

func (r campaignRepository) List(_ context.Context, limit, offset int, category domain.CampaignCategory) ([]*domain.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]domain.Campaign, 0, len(r.s.campaigns))
	for _, c := range r.s.campaigns {
		if category != "" && c.Category != category {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	out := make([]*domain.Campaign, 0, limit)
	for _, c := range page(all, limit, offset) {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

func (r campaignRepository) RecordDonation(_ context.Context, donation *domain.Donation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[donation.CampaignID]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	c.Raised = c.Raised.Add(donation.Amount)
	r.s.campaigns[c.ID] = c
	r.s.donations[c.ID] = append(r.s.donations[c.ID], *donation)
	return nil
}

func (r campaignRepository) RecordWithdrawal(_ context.Context, withdrawal *domain.Withdrawal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[withdrawal.CampaignID]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	if withdrawal.Amount.GreaterThan(c.Available()) {
		return domain.ErrInsufficientFunds
	}
	c.Withdrawn = c.Withdrawn.Add(withdrawal.Amount)
	r.s.campaigns[c.ID] = c
	r.s.withdrawals[c.ID] = append(r.s.withdrawals[c.ID], *withdrawal)
	return nil
}

// ListDonations returns donations oldest first.
func (r campaignRepository) ListDonations(_ context.Context, campaignID uuid.UUID) ([]domain.Donation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return append([]domain.Donation{}, r.s.donations[campaignID]...), nil
}

func cloneProposal(p domain.Proposal) domain.Proposal {
	p.Options = slices.Clone(p.Options)
	p.Eligibility.AllowedRoles = slices.Clone(p.Eligibility.AllowedRoles)
	return p
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
