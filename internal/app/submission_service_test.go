package app_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"manomitra/internal/app"
	"manomitra/internal/domain"
	"manomitra/internal/infra/media"
	"manomitra/internal/infra/memory"
)

func TestAnalyzeSubmissionCompletesRow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSubmissionStore()
	seed(t, store, domain.Submission{ID: "s1", ParentConcernsText: "Not crawling yet"})
	model := &fakeModel{replies: []string{"Crawling varies a lot."}}
	notifier := &recordingNotifier{}
	svc := newSubmissionService(t, store, model, "", app.WithNotifier(notifier))

	if err := svc.AnalyzeSubmission(ctx, "s1", ""); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	sub, _ := store.Get(ctx, "s1")
	if sub.Status != domain.StatusCompleted || sub.AnalysisResult == nil || sub.AnalysisResult.Summary != "Crawling varies a lot." {
		t.Fatalf("expected completed row, got %+v", sub)
	}
	if model.requests[0].Inline != nil {
		t.Fatalf("expected text-only request without media")
	}
	if len(notifier.updates) != 1 || notifier.updates[0].Status != domain.StatusCompleted {
		t.Fatalf("expected one completed notification, got %+v", notifier.updates)
	}
}

func TestAnalyzeSubmissionInlinesMedia(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/object/public/media/s2.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	store := memory.NewSubmissionStore()
	mediaPath := "storage/v1/object/public/media/s2.jpg"
	seed(t, store, domain.Submission{ID: "s2", ParentConcernsText: "Look at his posture", MediaURL: &mediaPath})
	model := &fakeModel{}
	svc := newSubmissionService(t, store, model, srv.URL)

	if err := svc.AnalyzeSubmission(ctx, "s2", "image/jpeg"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	inline := model.requests[0].Inline
	if inline == nil || inline.MIMEType != "image/jpeg" || inline.Data != base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")) {
		t.Fatalf("unexpected inline part %+v", inline)
	}
}

func TestAnalyzeSubmissionKeepsSignedURLQuery(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/object/sign/media/a.jpg" || r.URL.RawQuery != "token=abc" {
			http.Error(w, "bad signature", http.StatusForbidden)
			return
		}
		w.Write([]byte("signed-bytes"))
	}))
	defer srv.Close()

	store := memory.NewSubmissionStore()
	mediaPath := "storage/v1/object/sign/media/a.jpg?token=abc"
	seed(t, store, domain.Submission{ID: "s9", ParentConcernsText: "Signed upload", MediaURL: &mediaPath})
	model := &fakeModel{}
	svc := newSubmissionService(t, store, model, srv.URL)

	if err := svc.AnalyzeSubmission(ctx, "s9", "image/jpeg"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	inline := model.requests[0].Inline
	if inline == nil || inline.Data != base64.StdEncoding.EncodeToString([]byte("signed-bytes")) {
		t.Fatalf("unexpected inline part %+v", inline)
	}
}

func TestAnalyzeSubmissionMediaNotFoundMarksFailed(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	store := memory.NewSubmissionStore()
	mediaURL := srv.URL + "/missing.png"
	seed(t, store, domain.Submission{ID: "s3", ParentConcernsText: "see photo", MediaURL: &mediaURL})
	model := &fakeModel{}
	notifier := &recordingNotifier{}
	svc := newSubmissionService(t, store, model, "", app.WithNotifier(notifier))

	err := svc.AnalyzeSubmission(ctx, "s3", "image/png")
	var upErr *domain.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	sub, _ := store.Get(ctx, "s3")
	if sub.Status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", sub.Status)
	}
	if sub.AnalysisResult != nil {
		t.Fatalf("expected no analysis result, got %+v", sub.AnalysisResult)
	}
	if model.calls() != 0 {
		t.Fatalf("expected no model call after fetch failure, got %d", model.calls())
	}
	if len(notifier.updates) != 1 || notifier.updates[0].Status != domain.StatusFailed {
		t.Fatalf("expected failed notification, got %+v", notifier.updates)
	}
}

func TestAnalyzeSubmissionModelFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSubmissionStore()
	seed(t, store, domain.Submission{ID: "s4", ParentConcernsText: "speech"})
	svc := newSubmissionService(t, store, &fakeModel{err: errModelDown}, "")

	if err := svc.AnalyzeSubmission(ctx, "s4", ""); !errors.Is(err, errModelDown) {
		t.Fatalf("expected model error, got %v", err)
	}
	sub, _ := store.Get(ctx, "s4")
	if sub.Status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", sub.Status)
	}
}

func TestAnalyzeSubmissionUnknownID(t *testing.T) {
	svc := newSubmissionService(t, memory.NewSubmissionStore(), &fakeModel{}, "")
	err := svc.AnalyzeSubmission(context.Background(), "ghost", "")
	if !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAnalyzeSubmissionIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSubmissionStore()
	seed(t, store, domain.Submission{ID: "s5", ParentConcernsText: "sleep"})
	model := &fakeModel{replies: []string{"first", "second"}}
	svc := newSubmissionService(t, store, model, "")

	if err := svc.AnalyzeSubmission(ctx, "s5", ""); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := svc.AnalyzeSubmission(ctx, "s5", ""); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if model.calls() != 2 {
		t.Fatalf("expected two model calls, got %d", model.calls())
	}
	sub, _ := store.Get(ctx, "s5")
	if sub.AnalysisResult.Summary != "second" {
		t.Fatalf("expected result overwritten by second run, got %q", sub.AnalysisResult.Summary)
	}
}

func TestIntakeCreatesPendingRow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSubmissionStore()
	svc := newSubmissionService(t, store, &fakeModel{}, "")

	sub, err := svc.Intake(ctx, "late talker", nil)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if sub.ID == "" || sub.Status != domain.StatusPending {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if _, err := svc.Intake(ctx, " ", nil); !errors.Is(err, domain.ErrConcernsRequired) {
		t.Fatalf("expected concerns required, got %v", err)
	}
}

func TestNewSubmissionServiceRequiresKey(t *testing.T) {
	_, err := app.NewSubmissionService(app.AnalyzerConfig{}, memory.NewSubmissionStore(), media.NewFetcher(nil, 0), &fakeModel{})
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Fatalf("expected missing key, got %v", err)
	}
}

func newSubmissionService(t *testing.T, store app.SubmissionRepository, model app.Model, storageURL string, opts ...app.Option) *app.SubmissionService {
	t.Helper()
	svc, err := app.NewSubmissionService(
		app.AnalyzerConfig{AIAPIKey: "server-key", StorageBaseURL: storageURL},
		store,
		media.NewFetcher(nil, 0),
		model,
		opts...,
	)
	if err != nil {
		t.Fatalf("new submission service: %v", err)
	}
	return svc
}

func seed(t *testing.T, store app.SubmissionRepository, sub domain.Submission) {
	t.Helper()
	if err := store.Create(context.Background(), sub); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
