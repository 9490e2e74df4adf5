package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/formcheck/internal/domain/skills"
	"github.com/okian/formcheck/internal/domain/types"
)

// SkillsDependencies defines the catalog read operations.
type SkillsDependencies interface {
	Skills() []skills.Skill
	Skill(id string) (skills.Skill, bool)
}

// SkillsHandler serves the skill catalog.
type SkillsHandler struct {
	deps SkillsDependencies
}

// NewSkillsHandler creates a new skills handler.
func NewSkillsHandler(deps SkillsDependencies) *SkillsHandler {
	return &SkillsHandler{deps: deps}
}

// HandleListSkills handles GET /skills requests.
func (h *SkillsHandler) HandleListSkills(w http.ResponseWriter, r *http.Request) {
	family := strings.TrimSpace(r.URL.Query().Get("family"))
	all := h.deps.Skills()
	out := make([]skillView, 0, len(all))
	for _, s := range all {
		if family != "" && s.Family != family {
			continue
		}
		out = append(out, newSkillView(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetSkill handles GET /skills/{id} requests.
func (h *SkillsHandler) HandleGetSkill(w http.ResponseWriter, r *http.Request) {
	s, ok := h.deps.Skill(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, newSkillView(s))
}

// ProgressDependencies defines the progression read operation.
type ProgressDependencies interface {
	Progress(ctx context.Context, athleteID string) (types.Progress, error)
}

// ProgressHandler serves per-athlete progression.
type ProgressHandler struct {
	deps ProgressDependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleGetProgress handles GET /athletes/{id}/progress requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.deps.Progress(r.Context(), r.PathValue("id"))
	if err != nil {
		writeClassified(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
