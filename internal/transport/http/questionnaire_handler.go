package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"manomitra/internal/app"
	"manomitra/internal/domain"
)

type QuestionnaireHandler struct {
	service *app.QuestionnaireService
}

func NewQuestionnaireHandler(service *app.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{service: service}
}

type scoreRequest struct {
	AgeGroup string        `json:"ageGroup"`
	Answers  []answerEntry `json:"answers"`
}

type answerEntry struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
	Value    string `json:"value"`
}

// List handles GET /api/questionnaire
func (h *QuestionnaireHandler) List(w http.ResponseWriter, r *http.Request) {
	titles, err := h.service.AgeGroupTitles(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ageGroups": titles})
}

// Get handles GET /api/questionnaire/{title}
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	group, err := h.service.AgeGroup(r.Context(), mux.Vars(r)["title"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// Score handles POST /api/questionnaire/score
func (h *QuestionnaireHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answers := domain.AnswerSet{}
	for _, a := range req.Answers {
		answers.Set(req.AgeGroup, a.Category, a.Index, a.Value)
	}

	result, err := h.service.Score(r.Context(), req.AgeGroup, answers)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
