// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/formcheck/internal/domain/model"
	"github.com/okian/formcheck/internal/domain/skills"
	"github.com/okian/formcheck/internal/domain/types"
)

// DefaultMaxUploadBytes bounds a multipart upload when no limit is given.
const DefaultMaxUploadBytes = 10 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Analyze scores one photograph synchronously.
	Analyze(ctx context.Context, req model.Request) (*model.Analysis, error)

	// Submit queues an analysis; duplicate reports a repeated idempotency key.
	Submit(ctx context.Context, req model.Request, idempotencyKey string) (model.Job, bool, error)
	Job(ctx context.Context, id string) (model.Job, error)

	Skills() []skills.Skill
	Skill(id string) (skills.Skill, bool)
	Progress(ctx context.Context, athleteID string) (types.Progress, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analyzeHandler  *AnalyzeHandler
	skillsHandler   *SkillsHandler
	progressHandler *ProgressHandler
}

// NewServer creates a new API server with all handlers. A non-positive
// maxUploadBytes selects DefaultMaxUploadBytes.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxUploadBytes int64) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		analyzeHandler:  NewAnalyzeHandler(deps, maxUploadBytes),
		skillsHandler:   NewSkillsHandler(deps),
		progressHandler: NewProgressHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("POST /analyses", MetricsMiddleware(s.analyzeHandler.HandleSubmit, "analyses"))
	mux.HandleFunc("GET /analyses/{id}", MetricsMiddleware(s.analyzeHandler.HandleGetJob, "analysis"))
	mux.HandleFunc("GET /skills", MetricsMiddleware(s.skillsHandler.HandleListSkills, "skills"))
	mux.HandleFunc("GET /skills/{id}", MetricsMiddleware(s.skillsHandler.HandleGetSkill, "skill"))
	mux.HandleFunc("GET /athletes/{id}/progress", MetricsMiddleware(s.progressHandler.HandleGetProgress, "progress"))
}
