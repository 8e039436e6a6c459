package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"manomitra/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		vErr   *domain.ValidationError
		cfgErr *domain.ConfigurationError
		upErr  *domain.UpstreamError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrAgeGroupNotFound), errors.Is(err, domain.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.As(err, &upErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
