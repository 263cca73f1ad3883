package ingest

import (
	"context"
	"sync"

	"github.com/kbukum/tabkit/record"
)

// Future is the pending result of one dispatched request. It settles exactly
// once.
type Future struct {
	done    chan struct{}
	once    sync.Once
	records []record.Record
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(records []record.Record) {
	f.once.Do(func() {
		f.records = records
		close(f.done)
	})
}

func (f *Future) reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx ends. A rejected future
// returns a *DispatchError. Giving up on ctx does not stop the request.
func (f *Future) Await(ctx context.Context) ([]record.Record, error) {
	select {
	case <-f.done:
		return f.records, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
