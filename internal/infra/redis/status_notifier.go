package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"manomitra/internal/domain"
)

// StatusNotifier shares submission status transitions across instances.
// Notes:
//   - The latest update is kept under submission:{id}:status with a TTL so a late
//     websocket subscriber on any instance can read it.
//   - The same payload is published on the submission:{id}:status channel.
//   - Both writes are best-effort; failures are logged and swallowed.
type StatusNotifier struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatusNotifier(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatusNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusNotifier{client: client, ttl: ttl, logger: logger}
}

func (n *StatusNotifier) Notify(ctx context.Context, update domain.StatusUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		n.logger.Warn("encode status update", zap.Error(err))
		return
	}
	key := n.key(update.SubmissionID)
	pipe := n.client.Pipeline()
	pipe.Set(ctx, key, data, n.ttl)
	pipe.Publish(ctx, key, data)
	if _, err := pipe.Exec(ctx); err != nil {
		n.logger.Warn("publish status update", zap.String("submissionId", update.SubmissionID), zap.Error(err))
	}
}

// Last returns the most recent update stored for a submission.
func (n *StatusNotifier) Last(ctx context.Context, submissionID string) (domain.StatusUpdate, bool) {
	data, err := n.client.Get(ctx, n.key(submissionID)).Bytes()
	if err != nil {
		return domain.StatusUpdate{}, false
	}
	var update domain.StatusUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return domain.StatusUpdate{}, false
	}
	return update, true
}

func (n *StatusNotifier) key(submissionID string) string {
	return "submission:" + submissionID + ":status"
}

// Subscribe listens on the submission's channel. The caller must invoke the returned
// cancel function to release the connection.
func (n *StatusNotifier) Subscribe(submissionID string) (<-chan domain.StatusUpdate, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ps := n.client.Subscribe(ctx, n.key(submissionID))
	out := make(chan domain.StatusUpdate, 4)
	done := make(chan struct{})

	// Wait for the subscription to be confirmed so no publish slips through.
	if _, err := ps.Receive(ctx); err != nil {
		n.logger.Warn("subscribe status", zap.String("submissionId", submissionID), zap.Error(err))
	}

	go func() {
		defer close(done)
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var update domain.StatusUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					continue
				}
				select {
				case out <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, func() {
		cancel()
		_ = ps.Close()
		<-done
	}
}
