package ingest

import (
	"context"

	"github.com/kbukum/tabkit/record"
)

// Batch tracks the futures of one DispatchBatch call by position.
type Batch struct {
	// ID correlates the batch's log lines.
	ID      string
	futures []*Future
}

// Len returns the number of settings in the batch.
func (b *Batch) Len() int {
	return len(b.futures)
}

// Future returns the future of member i, or nil when that member was
// rejected as misconfigured.
func (b *Batch) Future(i int) *Future {
	if i < 0 || i >= len(b.futures) {
		return nil
	}
	return b.futures[i]
}

// Await waits for every member and returns their results by position.
// Members that failed or were never dispatched leave a nil slot; their
// errors are only visible through Future(i). The error is non-nil only
// when ctx ends first.
func (b *Batch) Await(ctx context.Context) ([][]record.Record, error) {
	results := make([][]record.Record, len(b.futures))
	for i, f := range b.futures {
		if f == nil {
			continue
		}
		select {
		case <-f.done:
			if f.err == nil {
				results[i] = f.records
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}
