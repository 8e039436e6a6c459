package http

import (
	"net/http"

	"manomitra/internal/app"
)

type ContentHandler struct {
	service *app.ContentService
}

func NewContentHandler(service *app.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// Milestones handles GET /api/milestones
func (h *ContentHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Milestones())
}

// Resources handles GET /api/resources?q=&category=
func (h *ContentHandler) Resources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.service.SearchResources(q.Get("q"), q.Get("category")))
}

// Categories handles GET /api/resources/categories
func (h *ContentHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ResourceCategories())
}

// Activities handles GET /api/activities?category=
func (h *ContentHandler) Activities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Activities(r.URL.Query().Get("category")))
}

func (h *ContentHandler) ActivityCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ActivityCategories())
}

// Support handles GET /api/support
func (h *ContentHandler) Support(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Support())
}
