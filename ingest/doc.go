// Package ingest turns request settings into formatted record sequences.
//
// A Dispatcher resolves each Setting's source, loads and parses it, filters
// and formats the records, and delivers the result twice: as a bus
// notification and by resolving the request's Future.
//
//	d, err := ingest.New(ingest.WithBus(emitter))
//	fut, err := d.Dispatch(ctx, ingest.Setting{Path: "people.csv"}, "")
//	if err != nil {
//	    return err // configuration error, nothing was dispatched
//	}
//	records, err := fut.Await(ctx)
//
// Batches dispatch every member at once and resolve by position:
//
//	b, err := d.DispatchBatch(ctx, settings, "json")
//	results, _ := b.Await(ctx) // results[i] is nil when member i failed
package ingest
