package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"manomitra/internal/app"
	"manomitra/internal/domain"
)

const maxUploadBytes = 32 << 20

// AnalyzeHandler serves the client-direct analysis.
type AnalyzeHandler struct {
	analyzer *app.Analyzer
	logger   *zap.Logger
}

func NewAnalyzeHandler(analyzer *app.Analyzer, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer, logger: logger}
}

// Analyze handles POST /api/analyze with multipart fields concerns, childAge and file.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		writeDomainError(w, domain.NewConfigurationError(domain.ErrMissingAPIKey))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	req := app.AnalysisRequest{Concerns: r.FormValue("concerns")}
	if raw := strings.TrimSpace(r.FormValue("childAge")); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil || months < 0 {
			writeError(w, http.StatusBadRequest, "childAge must be a non-negative number of months")
			return
		}
		req.ChildAgeMonths = months
	}

	att, err := readAttachment(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Attachment = att

	summary, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.logger.Debug("analyze request failed", zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// readAttachment returns nil when no file part was sent. A generic content type is left
// empty so the analyzer sniffs it.
func readAttachment(r *http.Request) (*domain.Attachment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}
	return &domain.Attachment{Bytes: data, MIMEType: mimeType}, nil
}
