package testutil

import (
	"context"

	"github.com/kbukum/tabkit/component"
)

// TestComponent is a component a test can start, wipe and rewind.
type TestComponent interface {
	component.Component

	// Reset drops everything stored since Start.
	Reset(ctx context.Context) error
	// Snapshot returns an opaque copy of the stored state for Restore.
	Snapshot(ctx context.Context) (interface{}, error)
	Restore(ctx context.Context, snapshot interface{}) error
}
