package app

import (
	"context"
	"sync"

	"manomitra/internal/domain"
)

// StatusNotifier receives submission status transitions.
type StatusNotifier interface {
	Notify(ctx context.Context, update domain.StatusUpdate)
}

// Notifiers fans one update out to several notifiers.
type Notifiers []StatusNotifier

func (n Notifiers) Notify(ctx context.Context, update domain.StatusUpdate) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.Notify(ctx, update)
		}
	}
}

// StatusHub is an in-process fan-out of status updates keyed by submission id.
type StatusHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.StatusUpdate]struct{}
}

func NewStatusHub() *StatusHub {
	return &StatusHub{subscribers: make(map[string]map[chan domain.StatusUpdate]struct{})}
}

// Subscribe returns a channel that receives updates for one submission.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *StatusHub) Subscribe(submissionID string) (<-chan domain.StatusUpdate, func()) {
	ch := make(chan domain.StatusUpdate, 4)

	h.mu.Lock()
	subs, ok := h.subscribers[submissionID]
	if !ok {
		subs = make(map[chan domain.StatusUpdate]struct{})
		h.subscribers[submissionID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[submissionID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, submissionID)
		}
	}
	return ch, cancel
}

// Notify delivers the update without blocking; a slow subscriber loses its oldest pending update.
func (h *StatusHub) Notify(_ context.Context, update domain.StatusUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[update.SubmissionID] {
		select {
		case ch <- update:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}

// Subscribers reports how many listeners a submission has.
func (h *StatusHub) Subscribers(submissionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[submissionID])
}
