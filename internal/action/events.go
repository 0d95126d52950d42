package action

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

// ProgressEvent is one advisory event emitted while a handler runs.
// Events are not part of the final result contract.
type ProgressEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
	Time time.Time      `json:"time"`
}

// ProgressQueue is the outbound queue of progress events, drained by the
// transport layer after the action completes. Publishing never blocks;
// when the queue is full the oldest event is dropped.
type ProgressQueue struct {
	mu     sync.Mutex
	events []ProgressEvent
	limit  int
}

const defaultProgressLimit = 256

// NewProgressQueue creates a queue holding at most limit events.
func NewProgressQueue(limit int) *ProgressQueue {
	if limit <= 0 {
		limit = defaultProgressLimit
	}
	return &ProgressQueue{limit: limit}
}

// Publish appends one event. Safe to call on a nil queue.
func (q *ProgressQueue) Publish(eventType string, data map[string]any) {
	if q == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= q.limit {
		q.events = q.events[1:]
	}
	q.events = append(q.events, ProgressEvent{
		Type: strings.TrimSpace(eventType),
		Data: data,
		Time: time.Now().UTC(),
	})
}

// Drain returns all queued events and empties the queue.
func (q *ProgressQueue) Drain() []ProgressEvent {
	if q == nil {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	drained := q.events
	q.events = nil
	return drained
}

// NewRequestID creates a request id for tracing.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID adds a request id to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext reads request id from context.
func RequestIDFromContext(ctx context.Context) string {
	v := ctx.Value(requestIDContextKey{})
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
