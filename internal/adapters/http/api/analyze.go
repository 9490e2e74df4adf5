package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/formcheck/internal/domain/model"
)

const (
	fileField      = "file"
	skillField     = "skill_id"
	athleteField   = "athlete_id"
	idempotencyKey = "Idempotency-Key"
)

// AnalyzeHandler handles photo uploads and job lookups.
type AnalyzeHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies, maxBytes int64) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, maxBytes: maxBytes}
}

// HandleAnalyze handles POST /analyze requests.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := h.readRequest(w, r)
	if err != nil {
		writeClassified(w, err)
		return
	}
	a, err := h.deps.Analyze(r.Context(), req)
	if err != nil {
		writeClassified(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(a, h.level(a.SkillID)))
}

// HandleSubmit handles POST /analyses requests.
func (h *AnalyzeHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := h.readRequest(w, r)
	if err != nil {
		writeClassified(w, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get(idempotencyKey))
	job, duplicate, err := h.deps.Submit(r.Context(), req, key)
	if err != nil {
		writeClassified(w, err)
		return
	}
	status := http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/analyses/"+job.ID)
	writeJSON(w, status, newJobResponse(job, duplicate, h.level(job.Request.SkillID)))
}

// HandleGetJob handles GET /analyses/{id} requests.
func (h *AnalyzeHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	job, err := h.deps.Job(r.Context(), id)
	if err != nil {
		writeClassified(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobResponse(job, false, h.level(job.Request.SkillID)))
}

func (h *AnalyzeHandler) level(skillID string) string {
	if s, ok := h.deps.Skill(skillID); ok {
		return s.Level
	}
	return ""
}

// readRequest parses the multipart form into an analysis request.
func (h *AnalyzeHandler) readRequest(w http.ResponseWriter, r *http.Request) (model.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.Request{}, fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, h.maxBytes)
		}
		return model.Request{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	skillID := strings.TrimSpace(r.FormValue(skillField))
	if skillID == "" {
		return model.Request{}, fmt.Errorf("%w: %w", ErrBadRequest, ErrMissingSkill)
	}

	f, _, err := r.FormFile(fileField)
	if err != nil {
		return model.Request{}, fmt.Errorf("%w: %w", ErrBadRequest, ErrMissingFile)
	}
	defer func() { _ = f.Close() }()

	image, err := io.ReadAll(f)
	if err != nil {
		return model.Request{}, fmt.Errorf("%w: read file: %w", ErrBadRequest, err)
	}
	if len(image) == 0 {
		return model.Request{}, fmt.Errorf("%w: %w", ErrBadRequest, ErrMissingFile)
	}

	return model.Request{
		SkillID:   skillID,
		AthleteID: strings.TrimSpace(r.FormValue(athleteField)),
		Image:     image,
	}, nil
}
