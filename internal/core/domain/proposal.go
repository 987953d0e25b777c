package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalActive    ProposalStatus = "active"
	ProposalCompleted ProposalStatus = "completed"
	ProposalCancelled ProposalStatus = "cancelled"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalPending, ProposalActive, ProposalCompleted, ProposalCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Statuses only move forward: pending -> active -> completed, and pending or
// active -> cancelled.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	switch s {
	case ProposalPending:
		return next == ProposalActive || next == ProposalCancelled
	case ProposalActive:
		return next == ProposalCompleted || next == ProposalCancelled
	}
	return false
}

type Proposal struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	CreatedBy   string          `json:"created_by"`
	Options     []VotingOption  `json:"options"`
	Eligibility EligibilityRule `json:"eligibility"`
	Window      VotingWindow    `json:"voting_window"`
	Status      ProposalStatus  `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type VotingOption struct {
	ID         uuid.UUID       `json:"id"`
	ProposalID uuid.UUID       `json:"proposal_id"`
	Title      string          `json:"title"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

type VotingWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside [Start, End).
func (w VotingWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (p *Proposal) Validate() error {
	if p.Title == "" {
		return ErrInvalidProposal
	}
	if len(p.Options) < 2 {
		return ErrInvalidProposal
	}
	seen := make(map[uuid.UUID]struct{}, len(p.Options))
	for _, opt := range p.Options {
		if _, dup := seen[opt.ID]; dup {
			return ErrInvalidProposal
		}
		seen[opt.ID] = struct{}{}
	}
	if !p.Window.End.After(p.Window.Start) {
		return ErrInvalidProposal
	}
	if p.Eligibility.MinAge < 0 {
		return ErrInvalidProposal
	}
	return nil
}

func (p *Proposal) HasOption(optionID uuid.UUID) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

func (p *Proposal) Transition(next ProposalStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	p.Status = next
	return nil
}
