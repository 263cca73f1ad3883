package pipeline

import "context"

// Map transforms each value using fn.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &mapIter[I, O]{source: p.create(ctx), fn: fn}
		},
	}
}

// Filter keeps only values that satisfy the predicate.
func Filter[T any](p *Pipeline[T], fn func(T) bool) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &filterIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

// Batch hands the whole upstream sequence to fn at once and yields what fn
// returns. Use it for stages that need every value, such as a user hook over
// the full result.
func Batch[T any](p *Pipeline[T], fn func(context.Context, []T) ([]T, error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &batchIter[T]{upstream: p, fn: fn}
		},
	}
}

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := it.fn(ctx, val)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type filterIter[T any] struct {
	source Iterator[T]
	fn     func(T) bool
}

func (it *filterIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		if it.fn(val) {
			return val, true, nil
		}
	}
}

func (it *filterIter[T]) Close() error { return it.source.Close() }

type batchIter[T any] struct {
	upstream *Pipeline[T]
	fn       func(context.Context, []T) ([]T, error)
	items    *sliceIter[T]
}

func (it *batchIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.items == nil {
		var zero T
		all, err := Collect(ctx, it.upstream)
		if err != nil {
			return zero, false, err
		}
		out, err := it.fn(ctx, all)
		if err != nil {
			return zero, false, err
		}
		it.items = &sliceIter[T]{items: out}
	}
	return it.items.Next(ctx)
}

func (it *batchIter[T]) Close() error { return nil }
