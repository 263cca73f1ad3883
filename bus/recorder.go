package bus

import (
	"context"
	"sync"
)

// Recorder is a Bus that keeps every event in memory. Setting Err makes
// Emit fail after recording.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}

	Err error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

// Emit implements Bus.
func (r *Recorder) Emit(_ context.Context, name string, args ...any) error {
	r.mu.Lock()
	r.events = append(r.events, NewEvent(name, args...))
	err := r.Err
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
	return err
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Named returns the recorded events called name.
func (r *Recorder) Named(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Wait blocks until at least n events are recorded or ctx is done.
func (r *Recorder) Wait(ctx context.Context, n int) ([]Event, error) {
	for {
		r.mu.Lock()
		if len(r.events) >= n {
			out := append([]Event(nil), r.events...)
			r.mu.Unlock()
			return out, nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return r.Events(), ctx.Err()
		case <-r.notify:
		}
	}
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

var _ Bus = (*Recorder)(nil)
