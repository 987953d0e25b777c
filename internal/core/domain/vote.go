package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID         uuid.UUID `json:"id"`
	ProposalID uuid.UUID `json:"proposal_id"`
	OptionID   uuid.UUID `json:"option_id"`
	VoterID    string    `json:"voter_id"`
	Weight     float64   `json:"weight"`
	CastAt     time.Time `json:"cast_at"`
}
