package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is the envelope contract every domain event satisfies.
type Event interface {
	EventName() string
	EventKey() string
	OccurredAt() time.Time
}

// Publisher delivers events to interested listeners. Publication is
// fire-and-forget: it happens only after a successful persist and must never
// fail the operation that emitted the event.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}

// Handler consumes a single event.
type Handler func(ctx context.Context, event Event)

// Bus dispatches events to in-process subscribers. Each handler runs in its
// own goroutine detached from the publisher's cancellation.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]Handler
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{subs: map[string][]Handler{}, logger: logger}
}

// Subscribe registers a handler for the given event name.
func (b *Bus) Subscribe(eventName string, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], handler)
}

// Publish hands the event to every subscriber without waiting for them.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event == nil {
		return
	}
	b.mu.RLock()
	handlers := b.subs[event.EventName()]
	b.mu.RUnlock()
	if len(handlers) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	for _, handler := range handlers {
		go handler(detached, event)
	}
	if b.logger != nil {
		b.logger.Debug("event published", slog.String("event", event.EventName()), slog.String("key", event.EventKey()))
	}
}

var _ Publisher = (*Bus)(nil)
var _ Publisher = NoopPublisher{}
