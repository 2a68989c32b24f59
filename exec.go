package rowcursor

import (
	"context"
	"database/sql"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

// Collector describes a container that can be started empty and extended
// one item at a time. Whatever ordering or uniqueness rules the container
// has are kept as is
type Collector[T, C any] struct {
	Empty  func() C
	Append func(C, T) C
}

// Collect reads every remaining value of the cursor into a container built by
// the collector. The cursor is closed once done.
// The first error is returned unchanged and nothing collected so far is returned with it
func Collect[T, C any](ctx context.Context, c *Cursor[T], into Collector[T, C]) (C, error) {
	defer c.Close()

	ret := into.Empty()
	for {
		one, err := c.Next(ctx)
		if err == Done { //nolint:errorlint
			return ret, nil
		}
		if err != nil {
			var zero C
			return zero, err
		}

		ret = into.Append(ret, one)
	}
}

// All collects every remaining value of the cursor into a slice
func All[T any](ctx context.Context, c *Cursor[T]) ([]T, error) {
	return Collect(ctx, c, SliceOf[T]())
}

// First returns the next value of the cursor and closes it.
// If the stream is empty, [sql.ErrNoRows] is returned
func First[T any](ctx context.Context, c *Cursor[T]) (T, error) {
	defer c.Close()

	t, err := c.Next(ctx)
	if err == Done { //nolint:errorlint
		return t, sql.ErrNoRows
	}

	return t, err
}

// SliceOf collects into a slice, in stream order
func SliceOf[T any]() Collector[T, []T] {
	return Collector[T, []T]{
		Empty: func() []T { return nil },
		Append: func(s []T, t T) []T {
			return append(s, t)
		},
	}
}

// SetOf collects the distinct values into a set
func SetOf[T comparable]() Collector[T, map[T]struct{}] {
	return Collector[T, map[T]struct{}]{
		Empty: func() map[T]struct{} { return make(map[T]struct{}) },
		Append: func(m map[T]struct{}, t T) map[T]struct{} {
			m[t] = struct{}{}
			return m
		},
	}
}

// IndexBy collects into a map keyed by the given function.
// When two values have the same key, the later one is kept
func IndexBy[K comparable, T any](key func(T) K) Collector[T, map[K]T] {
	return Collector[T, map[K]T]{
		Empty: func() map[K]T { return make(map[K]T) },
		Append: func(m map[K]T, t T) map[K]T {
			m[key(t)] = t
			return m
		},
	}
}

// OrderedSetOf collects the distinct values into a set that remembers
// the order in which values were first seen
func OrderedSetOf[T comparable]() Collector[T, *linkedhashset.Set] {
	return Collector[T, *linkedhashset.Set]{
		Empty: func() *linkedhashset.Set { return linkedhashset.New() },
		Append: func(s *linkedhashset.Set, t T) *linkedhashset.Set {
			s.Add(t)
			return s
		},
	}
}
