package app

import (
	"context"
	"encoding/base64"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"manomitra/internal/domain"
)

const (
	variantClient = "client"
	variantServer = "server"
)

// Model invokes the generative AI service once and returns its text.
type Model interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// AnalysisObserver is told about every analysis attempt.
type AnalysisObserver interface {
	RecordAnalysis(variant string, duration time.Duration, err error)
}

// AnalyzerConfig is injected at construction; a missing AIAPIKey is a ConfigurationError.
type AnalyzerConfig struct {
	AIAPIKey       string
	StorageBaseURL string
	// Timeout bounds the single outbound model call. Zero means no limit.
	Timeout time.Duration
}

func (c AnalyzerConfig) validate() error {
	if strings.TrimSpace(c.AIAPIKey) == "" {
		return domain.NewConfigurationError(domain.ErrMissingAPIKey)
	}
	return nil
}

// Option customizes an Analyzer or SubmissionService.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	observer AnalysisObserver
	notifier StatusNotifier
	now      func() time.Time
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver records analysis metrics.
func WithObserver(obs AnalysisObserver) Option {
	return func(o *options) { o.observer = obs }
}

// WithNotifier publishes submission status transitions.
func WithNotifier(n StatusNotifier) Option {
	return func(o *options) { o.notifier = n }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AnalysisRequest is one parent submission in the client-direct flow.
type AnalysisRequest struct {
	Concerns       string
	ChildAgeMonths int
	Attachment     *domain.Attachment
}

// Analyzer runs the client-direct analysis: prompt plus optional attachment, one model call.
type Analyzer struct {
	cfg   AnalyzerConfig
	model Model
	opts  options
}

// NewAnalyzer fails with a ConfigurationError when no API key is configured.
func NewAnalyzer(cfg AnalyzerConfig, model Model, opts ...Option) (*Analyzer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg, model: model, opts: buildOptions(opts)}, nil
}

// Analyze validates the concerns, then makes exactly one model call.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (summary domain.AnalysisSummary, err error) {
	if strings.TrimSpace(req.Concerns) == "" {
		return domain.AnalysisSummary{}, domain.NewValidationError(domain.ErrConcernsRequired)
	}

	start := a.opts.now()
	defer func() {
		if a.opts.observer != nil {
			a.opts.observer.RecordAnalysis(variantClient, a.opts.now().Sub(start), err)
		}
	}()

	genReq := domain.GenerationRequest{
		Prompt: buildPrompt(promptInput{
			Concerns:       req.Concerns,
			HasAttachment:  req.Attachment != nil,
			ChildAgeMonths: req.ChildAgeMonths,
		}),
	}
	if req.Attachment != nil {
		genReq.Inline = encodeAttachment(*req.Attachment)
	}

	text, err := generate(ctx, a.model, a.cfg.Timeout, genReq)
	if err != nil {
		a.opts.logger.Warn("analysis failed", zap.Error(err))
		return domain.AnalysisSummary{}, domain.NewUpstreamError("analysis failed", err)
	}
	return domain.AnalysisSummary{Summary: text}, nil
}

// encodeAttachment base64 encodes the bytes, sniffing the MIME type when none was reported.
func encodeAttachment(att domain.Attachment) *domain.InlineData {
	mimeType := mediaType(att.MIMEType)
	if mimeType == "" {
		mimeType = DetectMIMEType(att.Bytes)
	}
	return &domain.InlineData{
		Data:     base64.StdEncoding.EncodeToString(att.Bytes),
		MIMEType: mimeType,
	}
}

// DetectMIMEType sniffs the content and returns the bare media type, without parameters
// such as charset.
func DetectMIMEType(data []byte) string {
	return mediaType(mimetype.Detect(data).String())
}

func mediaType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return raw
	}
	return mt
}

func generate(ctx context.Context, model Model, timeout time.Duration, req domain.GenerationRequest) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return model.Generate(ctx, req)
}
