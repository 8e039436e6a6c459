package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"manomitra/internal/app"
	"manomitra/internal/domain"
)

// StatusSource streams status updates of one submission (in-process hub or Redis pub/sub).
type StatusSource interface {
	Subscribe(submissionID string) (<-chan domain.StatusUpdate, func())
}

// LastStatusSource is implemented by sources that keep the latest update of a submission.
// It seeds the stream when submission rows cannot be read.
type LastStatusSource interface {
	Last(ctx context.Context, submissionID string) (domain.StatusUpdate, bool)
}

type WSHandler struct {
	source      StatusSource
	submissions *app.SubmissionService
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

func NewWSHandler(source StatusSource, submissions *app.SubmissionService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		source:      source,
		submissions: submissions,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and pushes status updates of the submission until it
// reaches a terminal state or the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	submissionID := mux.Vars(r)["id"]
	if submissionID == "" {
		http.Error(w, "missing submission id", http.StatusBadRequest)
		return
	}
	if h.source == nil {
		http.Error(w, "status stream not configured", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Subscribe before reading the row so a transition in between is not lost.
	updates, cancel := h.source.Subscribe(submissionID)
	defer cancel()

	if h.submissions != nil {
		sub, err := h.submissions.Get(r.Context(), submissionID)
		if err != nil {
			_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		current := statusOf(sub)
		if err := conn.WriteJSON(outboundMessage{Type: "status", Payload: current}); err != nil {
			return
		}
		if terminal(current.Status) {
			return
		}
	} else if last, ok := h.source.(LastStatusSource); ok {
		if current, found := last.Last(r.Context(), submissionID); found {
			if err := conn.WriteJSON(outboundMessage{Type: "status", Payload: current}); err != nil {
				return
			}
			if terminal(current.Status) {
				return
			}
		}
	}

	// The client never sends anything meaningful; reading only detects disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "status", Payload: update}); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
			if terminal(update.Status) {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func statusOf(sub domain.Submission) domain.StatusUpdate {
	update := domain.StatusUpdate{SubmissionID: sub.ID, Status: sub.Status}
	if sub.AnalysisResult != nil {
		update.Summary = sub.AnalysisResult.Summary
	}
	return update
}

func terminal(status domain.SubmissionStatus) bool {
	return status == domain.StatusCompleted || status == domain.StatusFailed
}
