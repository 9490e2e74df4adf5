// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/formcheck/internal/domain/scoring"
)

// Request asks for one photograph to be analyzed.
type Request struct {
	SkillID   string // catalog id, e.g. "tuck_planche"
	AthleteID string // optional; enables progress tracking
	Image     []byte // raw image bytes as uploaded
}

// Analysis is the outcome of analyzing one photograph.
type Analysis struct {
	ID        string
	SkillID   string
	AthleteID string

	// Report is nil when the skill is not implemented.
	Report *scoring.Report

	// Summary is the plain-text handoff to the elaboration service.
	Summary string

	// Feedback is the coaching text returned to the athlete.
	Feedback string

	// Elaborated is false when Feedback fell back to Summary.
	Elaborated bool

	// AnnotatedImage is the pose overlay rendered by the extractor, if any.
	AnnotatedImage []byte

	// Unlocked names the next skill in the progression, when this attempt
	// passed for the first time.
	Unlocked string

	CreatedAt time.Time
}

// Implemented reports whether the skill was known to the catalog.
func (a *Analysis) Implemented() bool { return a.Report != nil }
