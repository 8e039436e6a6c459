package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"manomitra/internal/app"
	"manomitra/internal/domain"
)

// SubmissionHandler serves submission intake and the analyze-input function.
type SubmissionHandler struct {
	service *app.SubmissionService
	logger  *zap.Logger
}

func NewSubmissionHandler(service *app.SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{service: service, logger: logger}
}

type createSubmissionRequest struct {
	Concerns string  `json:"concerns"`
	MediaURL *string `json:"mediaUrl"`
}

type analyzeInputRequest struct {
	SubmissionID string `json:"submissionId"`
	MimeType     string `json:"mimeType"`
}

type messageBody struct {
	Message string `json:"message"`
}

// Create handles POST /api/submissions
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeDomainError(w, domain.NewConfigurationError(domain.ErrMissingAPIKey))
		return
	}
	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.service.Intake(r.Context(), req.Concerns, req.MediaURL)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Get handles GET /api/submissions/{id}
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeDomainError(w, domain.NewConfigurationError(domain.ErrMissingAPIKey))
		return
	}
	sub, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// AnalyzeInput handles POST /functions/v1/analyze-input. Every failure, including a
// malformed body, is reported as 500 with {"error": message}.
func (h *SubmissionHandler) AnalyzeInput(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, domain.ErrMissingAPIKey.Error())
		return
	}
	var req analyzeInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.service.AnalyzeSubmission(r.Context(), req.SubmissionID, req.MimeType); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Analysis complete!"})
}
