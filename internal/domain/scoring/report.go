package scoring

import "github.com/okian/formcheck/internal/domain/skills"

// Status describes the outcome of one angle check.
type Status string

// Angle check outcomes.
const (
	StatusInRange          Status = "in_range"
	StatusOutOfRange       Status = "out_of_range"
	StatusMissingLandmarks Status = "missing_landmarks"
	StatusCalculationError Status = "calculation_error"
)

// Counted reports whether a check with this status takes part in the
// overall score.
func (s Status) Counted() bool {
	return s == StatusInRange || s == StatusOutOfRange
}

// AngleResult is the outcome of one angle check.
type AngleResult struct {
	Name   string
	Points [3]skills.Landmark
	Range  skills.Range

	// Angle is meaningful only when Measured is true.
	Angle    float64
	Measured bool

	Score  float64
	Status Status

	// Missing lists the landmarks of this check that were not detected.
	Missing []skills.Landmark
}

// Report is the graded outcome of one skill attempt.
type Report struct {
	SkillID   string
	SkillName string

	OverallScore float64
	IsPassing    bool

	// Results follow the catalog order of the skill's checks.
	Results []AngleResult

	// MissingLandmarks is the deduplicated set of required landmarks that
	// were not detected, in first-seen order.
	MissingLandmarks []skills.Landmark

	// Summary is the plain-text rendering handed to the elaboration service.
	Summary string
}

// AngleScores indexes the results by check name.
func (r Report) AngleScores() map[string]AngleResult {
	out := make(map[string]AngleResult, len(r.Results))
	for _, res := range r.Results {
		out[res.Name] = res
	}
	return out
}

// Counted returns the number of checks that contributed to OverallScore.
func (r Report) Counted() int {
	n := 0
	for _, res := range r.Results {
		if res.Status.Counted() {
			n++
		}
	}
	return n
}
