// Package pipeline provides composable, pull-based operators over in-memory
// sequences.
//
// Pipelines are lazy. Each stage pulls from the previous one on demand, and
// nothing runs until Collect drives the chain.
//
//   - Map: transform each value
//   - Filter: keep values matching a predicate
//   - Batch: transform the whole sequence at once
//
// Usage:
//
//	src := pipeline.FromSlice(rows)
//	kept := pipeline.Filter(src, match)
//	shaped := pipeline.Map(kept, format)
//	out, err := pipeline.Collect(ctx, shaped)
package pipeline
