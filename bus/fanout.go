package bus

import (
	"context"
	"errors"
)

// Fanout forwards every event to each of its buses in order. Nil entries are
// skipped. Emit returns the joined errors of the buses that failed; the
// remaining buses still receive the event.
type Fanout []Bus

// NewFanout combines buses into one.
func NewFanout(buses ...Bus) Fanout {
	out := make(Fanout, 0, len(buses))
	for _, b := range buses {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Emit implements Bus.
func (f Fanout) Emit(ctx context.Context, name string, args ...any) error {
	var errs []error
	for _, b := range f {
		if b == nil {
			continue
		}
		if err := b.Emit(ctx, name, args...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Bus = Fanout(nil)
