// Package reputation derives a stable, pseudo-random reputation profile from
// an identity string such as a wallet address.
//
// The hash is the classic 31-multiplier string hash over UTF-16 code units
// with 32-bit signed wraparound, so the same seed produces the same profile
// as the web client computes.
package reputation

import (
	"math"
	"unicode/utf16"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

// Generate maps seed to its reputation profile. It is pure and total: the
// empty seed hashes to zero and yields the lowest value of every range.
func Generate(seed string) domain.ReputationProfile {
	r := normalize(hash(seed))

	return domain.ReputationProfile{
		Rating:             3.5 + r*1.5,
		TotalReviews:       10 + floor(r*150),
		CampaignsCreated:   1 + floor(r*20),
		TotalRaised:        50 + r*500,
		ResponseTimeHours:  1 + floor(r*48),
		SuccessRatePercent: 85 + floor(r*15),
		Verified:           r > 0.5,
	}
}

func hash(seed string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(seed)) {
		h = h*31 + int32(unit)
	}
	return h
}

// normalize widens before taking the absolute value so MinInt32 does not
// overflow back to a negative number.
func normalize(h int32) float64 {
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return float64(abs) / math.MaxInt32
}

func floor(x float64) int {
	return int(math.Floor(x))
}
