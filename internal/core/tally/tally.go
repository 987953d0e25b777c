// Package tally aggregates cast votes into per-option counts, weights,
// percentages and a winner.
package tally

import (
	"math"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

type bucket struct {
	votes  int64
	weight float64
}

// Tally never fails and never mutates its inputs. Votes for options that do
// not belong to the proposal, and votes carrying a negative or NaN weight,
// are skipped. Options are reported in proposal order, including those that
// received nothing.
//
// The winner is the option with the strictly greatest weight. A tie for the
// top spot, or no weight at all, yields no winner.
func Tally(proposal domain.Proposal, votes []domain.Vote) domain.TallyResult {
	buckets := make(map[uuid.UUID]*bucket, len(proposal.Options))
	for _, opt := range proposal.Options {
		buckets[opt.ID] = &bucket{}
	}

	for _, v := range votes {
		b, ok := buckets[v.OptionID]
		if !ok || v.Weight < 0 || math.IsNaN(v.Weight) {
			continue
		}
		b.votes++
		b.weight += v.Weight
	}

	result := domain.TallyResult{
		PerOption: make([]domain.OptionTally, 0, len(proposal.Options)),
	}
	counted := make(map[uuid.UUID]bool, len(proposal.Options))
	for _, opt := range proposal.Options {
		if counted[opt.ID] {
			continue
		}
		counted[opt.ID] = true
		b := buckets[opt.ID]
		result.TotalVotes += b.votes
		result.TotalWeight += b.weight
	}

	var (
		best      float64
		winner    uuid.UUID
		contested bool
	)
	for i, opt := range proposal.Options {
		b := buckets[opt.ID]
		result.PerOption = append(result.PerOption, domain.OptionTally{
			OptionID:   opt.ID,
			Votes:      b.votes,
			Weight:     b.weight,
			Percentage: percentage(b.weight, result.TotalWeight),
		})

		switch {
		case i == 0 || b.weight > best:
			best, winner, contested = b.weight, opt.ID, false
		case b.weight == best:
			contested = true
		}
	}

	if result.TotalWeight > 0 && !contested {
		result.WinnerOptionID = &winner
	}
	return result
}

// percentage rounds each option independently, so N options may sum to
// anywhere within 0.05*N of 100.
func percentage(weight, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return roundTenth(weight / total * 100)
}

// roundTenth rounds to one decimal place, halves away from zero.
func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
