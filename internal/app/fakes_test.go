package app_test

import (
	"context"
	"errors"
	"sync"

	"manomitra/internal/domain"
)

type fakeModel struct {
	mu       sync.Mutex
	requests []domain.GenerationRequest
	replies  []string
	err      error
}

func (m *fakeModel) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "summary", nil
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []domain.StatusUpdate
}

func (n *recordingNotifier) Notify(_ context.Context, update domain.StatusUpdate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, update)
}

var errModelDown = errors.New("model unavailable")
