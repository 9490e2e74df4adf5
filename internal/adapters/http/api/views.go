package api

import (
	"encoding/base64"
	"time"

	"github.com/okian/formcheck/internal/domain/model"
	"github.com/okian/formcheck/internal/domain/scoring"
	"github.com/okian/formcheck/internal/domain/skills"
)

// angleScoreView is one check as rendered to clients. CalculatedAngle is
// null when the angle could not be measured.
type angleScoreView struct {
	Score           float64    `json:"score"`
	CalculatedAngle *float64   `json:"calculated_angle"`
	TargetRange     [2]float64 `json:"target_range"`
	Status          string     `json:"status"`
}

type scoreDataView struct {
	OverallScore     float64                   `json:"overall_score"`
	AngleScores      map[string]angleScoreView `json:"angle_scores"`
	MissingLandmarks []string                  `json:"missing_landmarks"`
	PassingThreshold float64                   `json:"passing_threshold"`
	IsPassing        bool                      `json:"is_passing"`
}

// analysisResponse mirrors the OpenAPI schema for POST /analyze.
type analysisResponse struct {
	ID             string         `json:"id"`
	SkillID        string         `json:"skillId"`
	AthleteID      string         `json:"athleteId,omitempty"`
	ProcessedImage string         `json:"processedImage,omitempty"`
	Analysis       string         `json:"analysis"`
	Score          float64        `json:"score"`
	ScoreData      *scoreDataView `json:"scoreData"`
	SkillLevel     string         `json:"skillLevel,omitempty"`
	Elaborated     bool           `json:"elaborated"`
	Unlocked       string         `json:"unlocked,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

type jobResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Duplicate bool              `json:"duplicate"`
	SkillID   string            `json:"skillId"`
	AthleteID string            `json:"athleteId,omitempty"`
	Result    *analysisResponse `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type checkView struct {
	Name        string     `json:"name"`
	Points      [3]string  `json:"points"`
	TargetRange [2]float64 `json:"target_range"`
}

type skillView struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Family string      `json:"family"`
	Level  string      `json:"level"`
	Checks []checkView `json:"checks"`
}

func newScoreData(rep *scoring.Report) *scoreDataView {
	if rep == nil {
		return nil
	}
	out := &scoreDataView{
		OverallScore:     round1(rep.OverallScore),
		AngleScores:      make(map[string]angleScoreView, len(rep.Results)),
		MissingLandmarks: make([]string, 0, len(rep.MissingLandmarks)),
		PassingThreshold: scoring.PassingThreshold,
		IsPassing:        rep.IsPassing,
	}
	for _, res := range rep.Results {
		v := angleScoreView{
			Score:       round1(res.Score),
			TargetRange: rangeView(res.Range),
			Status:      string(res.Status),
		}
		if res.Measured {
			angle := round1(res.Angle)
			v.CalculatedAngle = &angle
		}
		out.AngleScores[res.Name] = v
	}
	for _, l := range rep.MissingLandmarks {
		out.MissingLandmarks = append(out.MissingLandmarks, l.String())
	}
	return out
}

func newAnalysisResponse(a *model.Analysis, level string) *analysisResponse {
	out := &analysisResponse{
		ID:         a.ID,
		SkillID:    a.SkillID,
		AthleteID:  a.AthleteID,
		Analysis:   a.Feedback,
		ScoreData:  newScoreData(a.Report),
		SkillLevel: level,
		Elaborated: a.Elaborated,
		Unlocked:   a.Unlocked,
		CreatedAt:  a.CreatedAt,
	}
	if len(a.AnnotatedImage) > 0 {
		out.ProcessedImage = base64.StdEncoding.EncodeToString(a.AnnotatedImage)
	}
	if a.Report != nil {
		out.Score = round1(a.Report.OverallScore)
	}
	return out
}

func newJobResponse(job model.Job, duplicate bool, level string) jobResponse {
	out := jobResponse{
		ID:        job.ID,
		Status:    string(job.Status),
		Duplicate: duplicate,
		SkillID:   job.Request.SkillID,
		AthleteID: job.Request.AthleteID,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Analysis != nil {
		out.Result = newAnalysisResponse(job.Analysis, level)
	}
	return out
}

func newSkillView(s skills.Skill) skillView {
	out := skillView{
		ID:     s.ID,
		Name:   s.Name,
		Family: s.Family,
		Level:  s.Level,
		Checks: make([]checkView, 0, len(s.Checks)),
	}
	for _, c := range s.Checks {
		out.Checks = append(out.Checks, checkView{
			Name:        c.Name,
			Points:      [3]string{c.Points[0].String(), c.Points[1].String(), c.Points[2].String()},
			TargetRange: rangeView(c.Range),
		})
	}
	return out
}

func rangeView(r skills.Range) [2]float64 {
	return [2]float64{r.Min, r.Max}
}
