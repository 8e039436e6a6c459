package memory

import (
	"context"
	"fmt"
	"sync"

	"manomitra/internal/domain"
)

// SubmissionStore is an in-memory implementation of app.SubmissionRepository.
type SubmissionStore struct {
	mu   sync.RWMutex
	rows map[string]domain.Submission
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{rows: make(map[string]domain.Submission)}
}

func (s *SubmissionStore) Create(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[sub.ID]; exists {
		return fmt.Errorf("submission %s already exists", sub.ID)
	}
	if sub.Status == "" {
		sub.Status = domain.StatusPending
	}
	s.rows[sub.ID] = sub
	return nil
}

func (s *SubmissionStore) Get(_ context.Context, id string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.rows[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *SubmissionStore) Complete(_ context.Context, id string, result domain.AnalysisResult) error {
	return s.update(id, func(sub *domain.Submission) {
		sub.AnalysisResult = &result
		sub.Status = domain.StatusCompleted
	})
}

func (s *SubmissionStore) MarkFailed(_ context.Context, id string) error {
	return s.update(id, func(sub *domain.Submission) {
		sub.Status = domain.StatusFailed
	})
}

func (s *SubmissionStore) update(id string, mutate func(*domain.Submission)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.rows[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	mutate(&sub)
	s.rows[id] = sub
	return nil
}
