package events

import (
	"context"
	"sync"

	"github.com/cnluzhang/tencent-meeting-service/platform/logger"
)

// InMemoryBus is a process-local Bus backed by a handler registry guarded
// by a single mutex. Publish dispatches to each registered handler in its
// own goroutine; PublishSync runs them inline and returns the first error.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus constructs an empty InMemoryBus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers handler for eventName. Safe for concurrent use.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches event to every handler registered for its EventName,
// each in its own goroutine. Handler errors are logged, not returned —
// callers that need to observe failures should use PublishSync.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	for _, h := range b.subscribersFor(event.EventName()) {
		go func(h Handler) {
			if err := h.Handle(ctx, event); err != nil {
				b.log.Error("event handler failed", "event", event.EventName(), "error", err)
			}
		}(h)
	}
}

// PublishSync dispatches event to every handler registered for its
// EventName, waiting for all to complete, and returns the first error
// encountered (if any).
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	var firstErr error
	for _, h := range b.subscribersFor(event.EventName()) {
		if err := h.Handle(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *InMemoryBus) subscribersFor(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, len(b.handlers[eventName]))
	copy(out, b.handlers[eventName])
	return out
}
