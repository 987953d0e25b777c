// Package eligibility decides whether a voter may cast a vote under a
// proposal's eligibility rule.
package eligibility

import (
	"slices"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

// FlatWeight is the voting power of every accepted vote.
const FlatWeight = 1.0

// Evaluate runs the checks in a fixed order and reports the first one that
// fails. It has no side effects; recording the vote is up to the caller.
func Evaluate(rule domain.EligibilityRule, voter domain.VoterRecord) domain.EligibilityDecision {
	if reason := firstViolation(rule, voter); reason != "" {
		return domain.EligibilityDecision{Eligible: false, Reason: reason}
	}
	return domain.EligibilityDecision{Eligible: true, Weight: FlatWeight}
}

func firstViolation(rule domain.EligibilityRule, voter domain.VoterRecord) string {
	switch {
	case voter.HasPriorVote:
		return domain.ReasonAlreadyVoted
	case rule.VerificationRequired && !voter.IsVerified:
		return domain.ReasonVerificationRequired
	case rule.ResidencyRequired && !voter.IsResident:
		return domain.ReasonResidencyRequired
	case voter.Age < rule.MinAge:
		return domain.ReasonBelowMinimumAge
	case len(rule.AllowedRoles) > 0 && !slices.Contains(rule.AllowedRoles, voter.Role):
		return domain.ReasonRoleNotPermitted
	}
	return ""
}
