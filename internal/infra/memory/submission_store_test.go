package memory

import (
	"context"
	"errors"
	"testing"

	"manomitra/internal/domain"
)

func TestSubmissionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore()

	if err := store.Create(ctx, domain.Submission{ID: "s1", ParentConcernsText: "late walking"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	sub, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sub.Status != domain.StatusPending || sub.AnalysisResult != nil {
		t.Fatalf("expected pending without result, got %+v", sub)
	}

	if err := store.Complete(ctx, "s1", domain.AnalysisResult{Summary: "ok"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	sub, _ = store.Get(ctx, "s1")
	if sub.Status != domain.StatusCompleted || sub.AnalysisResult == nil || sub.AnalysisResult.Summary != "ok" {
		t.Fatalf("expected completed row, got %+v", sub)
	}
}

func TestSubmissionStoreMissingRow(t *testing.T) {
	store := NewSubmissionStore()
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.MarkFailed(context.Background(), "nope"); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}
