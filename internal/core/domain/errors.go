package domain

import "errors"

var (
	ErrProposalNotFound        = errors.New("proposal not found")
	ErrInvalidProposalID       = errors.New("invalid proposal id")
	ErrInvalidProposal         = errors.New("invalid proposal")
	ErrInvalidOption           = errors.New("invalid option for this proposal")
	ErrInvalidStatusTransition = errors.New("invalid proposal status transition")
	ErrVotingClosed            = errors.New("voting is not open for this proposal")
	ErrAlreadyVoted            = errors.New("voter has already voted")
	ErrNotEligible             = errors.New("voter is not eligible")
	ErrVoteNotFound            = errors.New("voter did not vote on this proposal")
	ErrResultsNotFinal         = errors.New("results are not final yet")
	ErrVoterNotFound           = errors.New("voter not found")
	ErrInvalidVoter            = errors.New("invalid voter")
	ErrCampaignNotFound        = errors.New("campaign not found")
	ErrInvalidCampaign         = errors.New("invalid campaign")
	ErrCampaignClosed          = errors.New("campaign is not accepting donations")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrInsufficientFunds       = errors.New("insufficient campaign funds")
	ErrInvalidWallet           = errors.New("invalid wallet address")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
)

// EligibilityError reports why a voter was turned away. It unwraps to
// ErrAlreadyVoted for repeat voters and to ErrNotEligible otherwise.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string {
	return "voter is not eligible: " + e.Reason
}

func (e *EligibilityError) Unwrap() error {
	if e.Reason == ReasonAlreadyVoted {
		return ErrAlreadyVoted
	}
	return ErrNotEligible
}
