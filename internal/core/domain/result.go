package domain

import (
	"time"

	"github.com/google/uuid"
)

type OptionTally struct {
	OptionID   uuid.UUID `json:"option_id"`
	Votes      int64     `json:"votes"`
	Weight     float64   `json:"weight"`
	Percentage float64   `json:"percentage"`
}

type TallyResult struct {
	TotalVotes     int64         `json:"total_votes"`
	TotalWeight    float64       `json:"total_weight"`
	PerOption      []OptionTally `json:"per_option"`
	WinnerOptionID *uuid.UUID    `json:"winner_option_id"`
}

// ProposalResult is the tally frozen when a proposal is finalized.
type ProposalResult struct {
	ProposalID  uuid.UUID   `json:"proposal_id"`
	Tally       TallyResult `json:"tally"`
	FinalizedAt time.Time   `json:"finalized_at"`
}
