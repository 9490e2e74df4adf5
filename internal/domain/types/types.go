// Package types contains common types used across the application
package types

import "time"

// ProgressEntry is an athlete's standing on one skill.
type ProgressEntry struct {
	SkillID        string    `json:"skill_id"`
	BestScore      float64   `json:"best_score"`
	Attempts       int       `json:"attempts"`
	Passed         bool      `json:"passed"`
	Unlocked       bool      `json:"unlocked"`
	LastAnalyzedAt time.Time `json:"last_analyzed_at,omitempty"`
}

// Progress is every skill an athlete has attempted or unlocked.
type Progress struct {
	AthleteID string          `json:"athlete_id"`
	Skills    []ProgressEntry `json:"skills"`
}
