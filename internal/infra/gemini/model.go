// Package gemini adapts the Gemini API to app.Model.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"manomitra/internal/domain"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// Config selects the credential, model and an optional endpoint override.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint; empty uses the SDK default.
	BaseURL    string
	HTTPClient *http.Client
}

// Model calls generateContent once per request.
type Model struct {
	client *genai.Client
	model  string
}

// NewModel fails with a ConfigurationError when the key is missing.
func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.NewConfigurationError(domain.ErrMissingAPIKey)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Model{client: client, model: model}, nil
}

// Name returns the configured model name.
func (m *Model) Name() string {
	return m.model
}

// Generate sends the prompt and, when present, the inline part as one user turn.
func (m *Model) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Inline != nil {
		data, err := base64.StdEncoding.DecodeString(req.Inline.Data)
		if err != nil {
			return "", fmt.Errorf("decode inline data: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, req.Inline.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	// A response without text parts (blocked or empty candidate) yields "".
	return resp.Text(), nil
}
