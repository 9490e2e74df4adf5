// Package scoring grades a skill attempt by comparing measured joint angles
// with the ideal ranges of the skill's catalog entry.
package scoring

import (
	"math"

	"github.com/okian/formcheck/internal/domain/skills"
)

// Scoring constants.
const (
	// DefaultTolerance is the decay constant, in degrees, applied to angles
	// outside their ideal range.
	DefaultTolerance = 15.0

	// PassingThreshold is the overall score an attempt needs to pass.
	PassingThreshold = 65.0

	maxScore = 100.0
	minScore = 0.0
)

// AngleScore grades a measured angle against its ideal range. Anything
// inside the range scores 100; outside it the score decays exponentially
// with the distance to the nearest bound.
func AngleScore(deg float64, r skills.Range, tolerance float64) float64 {
	if r.Contains(deg) {
		return maxScore
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	deviation := math.Min(math.Abs(deg-r.Min), math.Abs(deg-r.Max))
	score := maxScore * math.Exp(-deviation/tolerance)
	return math.Max(minScore, math.Min(maxScore, score))
}
