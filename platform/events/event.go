// Package events carries in-process notifications from the conversation
// collector to the modules that react to it (funnel counts, preference sync).
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is anything published on the bus. Subscribers are keyed by EventName.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent is embedded by concrete events for the id and timestamp.
type BaseEvent struct {
	ID        string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.NewString(), Timestamp: time.Now().UTC()}
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error { return f(ctx, event) }

// Publisher is the sending half of the bus.
type Publisher interface {
	// Publish fans out to subscribers without waiting for them.
	Publish(ctx context.Context, event Event)
	// PublishSync runs subscribers in order and joins their errors.
	PublishSync(ctx context.Context, event Event) error
}

// Bus routes events by name to every subscribed handler.
type Bus interface {
	Publisher
	Subscribe(eventName string, handler Handler)
}
