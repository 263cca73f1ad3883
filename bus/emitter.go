package bus

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/kbukum/tabkit/logger"
)

// Handler receives events delivered by an Emitter.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      uint64
	pattern string
	handler Handler
}

// Emitter is an in-process Bus. Handlers subscribe with a glob pattern
// ("data", "data*", "*") and run synchronously inside Emit, in subscription
// order. Event names are flat: '*' and '?' also match '/', so "*" sees
// "jobs/data" too. A panicking handler is logged and does not affect the others.
type Emitter struct {
	mu   sync.RWMutex
	subs []subscription
	next uint64
	log  *logger.Logger
}

// NewEmitter creates an Emitter. A nil logger uses the "bus" logger.
func NewEmitter(log *logger.Logger) *Emitter {
	if log == nil {
		log = logger.Get("bus")
	}
	return &Emitter{log: log}
}

// On subscribes h to events whose name matches pattern and returns a function
// that removes the subscription.
func (e *Emitter) On(pattern string, h Handler) (func(), error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bus: pattern %q: %w", pattern, err)
	}
	e.mu.Lock()
	e.next++
	id := e.next
	e.subs = append(e.subs, subscription{id: id, pattern: pattern, handler: h})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}, nil
}

func (e *Emitter) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers an event to every matching handler. It never fails.
func (e *Emitter) Emit(ctx context.Context, name string, args ...any) error {
	ev := NewEvent(name, args...)

	e.mu.RLock()
	matched := make([]subscription, 0, len(e.subs))
	for _, s := range e.subs {
		if match(s.pattern, name) {
			matched = append(matched, s)
		}
	}
	e.mu.RUnlock()

	for _, s := range matched {
		e.deliver(ctx, s, ev)
	}
	if len(matched) == 0 {
		e.log.Debug("no subscribers for event", map[string]interface{}{
			logger.FieldEvent: name,
		})
	}
	return nil
}

func (e *Emitter) deliver(ctx context.Context, s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("event handler panicked", map[string]interface{}{
				logger.FieldEvent: ev.Name,
				"pattern":         s.pattern,
				"panic":           fmt.Sprint(r),
			})
		}
	}()
	s.handler(ctx, ev)
}

// match applies path.Match with '/' treated as an ordinary character.
func match(pattern, name string) bool {
	ok, _ := path.Match(flatten(pattern), flatten(name))
	return ok
}

func flatten(s string) string {
	return strings.ReplaceAll(s, "/", "\x00")
}

// Len returns the number of active subscriptions.
func (e *Emitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}

var _ Bus = (*Emitter)(nil)
