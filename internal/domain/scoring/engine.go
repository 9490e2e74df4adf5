package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/formcheck/internal/domain/body"
	"github.com/okian/formcheck/internal/domain/skills"
)

// Engine evaluates landmark frames against the skill catalog. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	catalog   *skills.Catalog
	tolerance float64
}

// NewEngine creates an engine over catalog.
func NewEngine(catalog *skills.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   catalog,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine evaluates against.
func (e *Engine) Catalog() *skills.Catalog { return e.catalog }

// Tolerance returns the decay tolerance in degrees.
func (e *Engine) Tolerance() float64 { return e.tolerance }

// Evaluate grades frame against the checks of skillID. Failures of single
// checks are reported inside the Report; the only error is a
// *NotImplementedError for a skill missing from the catalog.
func (e *Engine) Evaluate(skillID string, frame body.Frame) (Report, error) {
	skill, ok := e.catalog.Lookup(skillID)
	if !ok {
		return Report{}, &NotImplementedError{SkillID: skillID}
	}

	rep := Report{
		SkillID:   skill.ID,
		SkillName: skill.Name,
		Results:   make([]AngleResult, 0, len(skill.Checks)),
	}

	var (
		total   float64
		counted int
		seen    = make(map[skills.Landmark]struct{})
		lines   = make([]string, 0, len(skill.Checks))
	)
	for _, check := range skill.Checks {
		res := e.evaluateCheck(check, frame)
		for _, l := range res.Missing {
			if _, dup := seen[l]; !dup {
				seen[l] = struct{}{}
				rep.MissingLandmarks = append(rep.MissingLandmarks, l)
			}
		}
		if res.Status.Counted() {
			total += res.Score
			counted++
		}
		rep.Results = append(rep.Results, res)
		lines = append(lines, describe(res))
	}

	if counted > 0 {
		rep.OverallScore = total / float64(counted)
	}
	rep.IsPassing = rep.OverallScore >= PassingThreshold
	rep.Summary = summarize(skill, lines)
	return rep, nil
}

func (e *Engine) evaluateCheck(check skills.AngleCheck, frame body.Frame) AngleResult {
	res := AngleResult{
		Name:   check.Name,
		Points: check.Points,
		Range:  check.Range,
	}

	var pts [3]body.Point
	for i, l := range check.Points {
		p, ok := frame.Get(l)
		if !ok {
			res.Missing = append(res.Missing, l)
			continue
		}
		pts[i] = p
	}
	if len(res.Missing) > 0 {
		res.Status = StatusMissingLandmarks
		return res
	}

	deg, err := body.Angle(pts[0], pts[1], pts[2])
	if err != nil {
		res.Status = StatusCalculationError
		return res
	}

	res.Angle = deg
	res.Measured = true
	res.Score = AngleScore(deg, check.Range, e.tolerance)
	if check.Range.Contains(deg) {
		res.Status = StatusInRange
	} else {
		res.Status = StatusOutOfRange
	}
	return res
}

// SummaryFor returns the text handed to the elaboration service for the
// outcome of Evaluate.
func SummaryFor(rep Report, err error) string {
	var nie *NotImplementedError
	if errors.As(err, &nie) {
		return nie.Summary()
	}
	return rep.Summary
}

func summarize(skill skills.Skill, lines []string) string {
	var b strings.Builder
	b.WriteString("SKILL NAME: ")
	b.WriteString(skill.Name)
	b.WriteString("\n\nSHORT ANALYSIS RESULTS:\n\n")
	b.WriteString(strings.Join(lines, "\n\n"))
	return b.String()
}

func describe(res AngleResult) string {
	switch res.Status {
	case StatusMissingLandmarks:
		names := make([]string, len(res.Missing))
		for i, l := range res.Missing {
			names[i] = l.String()
		}
		return fmt.Sprintf("Could not check %s because the following points were not detected: %s.",
			res.Name, strings.Join(names, ", "))
	case StatusCalculationError:
		return fmt.Sprintf("Could not check %s because its landmarks overlap or are out of range and the angle is undefined.", res.Name)
	case StatusInRange:
		return fmt.Sprintf("%s: Your angle is %.1f°, which is in the ideal range of %s°.", res.Name, res.Angle, res.Range)
	default:
		return fmt.Sprintf("%s: Your angle is %.1f°. Try to aim for the ideal range of %s°.", res.Name, res.Angle, res.Range)
	}
}
