package domain

const (
	ReasonAlreadyVoted         = "already voted"
	ReasonVerificationRequired = "verification required"
	ReasonResidencyRequired    = "residency required"
	ReasonBelowMinimumAge      = "below minimum age"
	ReasonRoleNotPermitted     = "role not permitted"
)

type EligibilityRule struct {
	MinAge               int      `json:"min_age"`
	ResidencyRequired    bool     `json:"residency_required"`
	VerificationRequired bool     `json:"verification_required"`
	AllowedRoles         []string `json:"allowed_roles"`
}

type VoterRecord struct {
	Age          int
	IsResident   bool
	IsVerified   bool
	Role         string
	HasPriorVote bool
}

type EligibilityDecision struct {
	Eligible bool    `json:"eligible"`
	Reason   string  `json:"reason,omitempty"`
	Weight   float64 `json:"weight"`
}
