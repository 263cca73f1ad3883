// Package bus carries fire-and-forget notifications about finished work.
//
// A Bus accepts a named event with arbitrary arguments. Delivery is best
// effort: callers log a failed Emit and carry on. Implementations:
//
//   - Emitter: in-process, handlers subscribe with glob patterns
//   - Fanout: forwards every event to several buses
//   - Recorder: keeps events in memory for inspection
//   - bus/kafka and bus/redis: publish JSON-encoded events to a broker
//
// All implementations are safe for concurrent use.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Well-known event names.
const (
	EventData  = "data"
	EventError = "error"
)

// Bus delivers named notifications.
type Bus interface {
	Emit(ctx context.Context, name string, args ...any) error
}

// Event is one notification as seen by subscribers and brokers.
type Event struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Args []any     `json:"args"`
	Time time.Time `json:"time"`
}

// NewEvent stamps a new event with a random ID and the current time.
func NewEvent(name string, args ...any) Event {
	if args == nil {
		args = []any{}
	}
	return Event{
		ID:   uuid.NewString(),
		Name: name,
		Args: args,
		Time: time.Now().UTC(),
	}
}
