// Package events is an in-process pub/sub bus for schedule changes.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salonsked/internal/model"
)

// Event types published by the schedule service.
const (
	EntrySaved   = "entry.saved"
	EntryDeleted = "entry.deleted"
)

// Event describes one confirmed change to an owner's schedule.
type Event struct {
	Type       string
	OwnerEmail string
	EntryID    string
	Created    bool
	Entry      *model.DayEntry // nil for deletions
	CreatedAt  time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors are logged to logger.
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		logger:      logger.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run synchronously
// in subscription order; a failing handler does not stop the others.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Error().Err(err).Str("type", event.Type).Str("entry_id", event.EntryID).Msg("event handler failed")
		}
	}
}
