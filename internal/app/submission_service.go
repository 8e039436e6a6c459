package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"manomitra/internal/domain"
)

// SubmissionRepository abstracts the submissions table (Postgres, in-memory, etc).
type SubmissionRepository interface {
	Create(ctx context.Context, sub domain.Submission) error
	Get(ctx context.Context, id string) (domain.Submission, error)
	Complete(ctx context.Context, id string, result domain.AnalysisResult) error
	MarkFailed(ctx context.Context, id string) error
}

// MediaFetcher downloads a stored media object fully into memory.
type MediaFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// SubmissionService is the server-mediated analysis: it reads a stored submission,
// calls the model with the server-held key and writes the outcome back.
type SubmissionService struct {
	cfg     AnalyzerConfig
	store   SubmissionRepository
	fetcher MediaFetcher
	model   Model
	opts    options
}

// NewSubmissionService fails with a ConfigurationError when no API key is configured.
func NewSubmissionService(cfg AnalyzerConfig, store SubmissionRepository, fetcher MediaFetcher, model Model, opts ...Option) (*SubmissionService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &SubmissionService{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		model:   model,
		opts:    buildOptions(opts),
	}, nil
}

// Intake stores a new pending submission.
func (s *SubmissionService) Intake(ctx context.Context, concerns string, mediaURL *string) (domain.Submission, error) {
	if strings.TrimSpace(concerns) == "" {
		return domain.Submission{}, domain.NewValidationError(domain.ErrConcernsRequired)
	}
	if mediaURL != nil && strings.TrimSpace(*mediaURL) == "" {
		mediaURL = nil
	}
	sub := domain.Submission{
		ID:                 uuid.NewString(),
		ParentConcernsText: concerns,
		MediaURL:           mediaURL,
		Status:             domain.StatusPending,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return domain.Submission{}, domain.NewUpstreamError("create submission", err)
	}
	return sub, nil
}

// Get returns a stored submission.
func (s *SubmissionService) Get(ctx context.Context, id string) (domain.Submission, error) {
	return s.store.Get(ctx, id)
}

// AnalyzeSubmission runs the full flow for one row. Any failure marks the row failed on a
// best-effort basis. Calls are not idempotent: each one re-runs and overwrites the result.
func (s *SubmissionService) AnalyzeSubmission(ctx context.Context, id, mimeType string) (err error) {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError(errors.New("submissionId required"))
	}

	start := s.opts.now()
	defer func() {
		if s.opts.observer != nil {
			s.opts.observer.RecordAnalysis(variantServer, s.opts.now().Sub(start), err)
		}
		if err != nil {
			s.fail(ctx, id, err)
		}
	}()

	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.NewUpstreamError("load submission", err)
	}

	req := domain.GenerationRequest{}
	hasMedia := sub.MediaURL != nil && *sub.MediaURL != "" && mimeType != ""
	if hasMedia {
		mediaURL, err := s.resolveMediaURL(*sub.MediaURL)
		if err != nil {
			return domain.NewUpstreamError("fetch media", err)
		}
		data, err := s.fetcher.Fetch(ctx, mediaURL)
		if err != nil {
			return domain.NewUpstreamError("fetch media", err)
		}
		req.Inline = &domain.InlineData{
			Data:     base64.StdEncoding.EncodeToString(data),
			MIMEType: mimeType,
		}
	}
	req.Prompt = buildPrompt(promptInput{Concerns: sub.ParentConcernsText, HasAttachment: hasMedia})

	text, err := generate(ctx, s.model, s.cfg.Timeout, req)
	if err != nil {
		return domain.NewUpstreamError("generate analysis", err)
	}

	result := domain.AnalysisResult{Summary: text}
	if err := s.store.Complete(ctx, id, result); err != nil {
		return domain.NewUpstreamError("save analysis", err)
	}

	s.opts.logger.Info("submission analyzed", zap.String("submissionId", id))
	s.notify(ctx, domain.StatusUpdate{SubmissionID: id, Status: domain.StatusCompleted, Summary: text})
	return nil
}

// fail marks the row failed. Its own error is logged and swallowed.
func (s *SubmissionService) fail(ctx context.Context, id string, cause error) {
	s.opts.logger.Warn("submission analysis failed", zap.String("submissionId", id), zap.Error(cause))
	if err := s.store.MarkFailed(context.WithoutCancel(ctx), id); err != nil {
		s.opts.logger.Warn("mark submission failed", zap.String("submissionId", id), zap.Error(err))
	}
	s.notify(ctx, domain.StatusUpdate{SubmissionID: id, Status: domain.StatusFailed, Error: cause.Error()})
}

func (s *SubmissionService) notify(ctx context.Context, update domain.StatusUpdate) {
	if s.opts.notifier != nil {
		s.opts.notifier.Notify(context.WithoutCancel(ctx), update)
	}
}

// resolveMediaURL accepts absolute URLs as-is and joins storage paths onto StorageBaseURL.
// The query of a relative URL (signed storage tokens) is kept verbatim.
func (s *SubmissionService) resolveMediaURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse media url: %w", err)
	}
	if u.IsAbs() {
		return raw, nil
	}
	if s.cfg.StorageBaseURL == "" {
		return "", fmt.Errorf("media url %q is relative and no storage base url is configured", raw)
	}
	base, err := url.Parse(s.cfg.StorageBaseURL)
	if err != nil {
		return "", fmt.Errorf("parse storage base url: %w", err)
	}
	joined := base.JoinPath(strings.TrimPrefix(u.Path, "/"))
	joined.RawQuery = u.RawQuery
	return joined.String(), nil
}
