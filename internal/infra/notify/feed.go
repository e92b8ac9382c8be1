// Package notify collects user-facing confirmations (the toasts of the
// view layer). The view drains them after every action.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notification kinds.
const (
	KindSuccess = "success"
	KindInfo    = "info"
	KindError   = "error"
)

// Notification is one toast.
type Notification struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feed is a bounded FIFO of notifications. When full the oldest entry is
// dropped.
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	logger   *zap.Logger
}

// NewFeed creates a feed keeping at most capacity notifications.
func NewFeed(capacity int, logger *zap.Logger) *Feed {
	if capacity <= 0 {
		capacity = 20
	}
	return &Feed{capacity: capacity, logger: logger}
}

// Notify implements port.Notifier.
func (f *Feed) Notify(_ context.Context, kind, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == f.capacity {
		f.items = f.items[1:]
	}
	f.items = append(f.items, Notification{Kind: kind, Message: message, CreatedAt: time.Now()})
	f.logger.Debug("notification", zap.String("kind", kind), zap.String("message", message))
}

// Drain returns the pending notifications oldest first and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.items
	f.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
