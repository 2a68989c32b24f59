package rowcursor

import (
	"context"

	"google.golang.org/api/iterator"
)

// Done is returned by [Stream.Next] and [Cursor.Next] when there are no more items.
// It is the same value as iterator.Done so streams built on Google client
// iterators can return their error untouched
var Done = iterator.Done

// Value is a raw row value produced by a [Stream]
// Most streams produce a [Record], but a [Loader] may accept any other shape
type Value = any

// Record is an ordered, fixed-arity sequence of values
// It is the only shape that is checked against the schema
type Record []Value

// ModelID identifies a model within a [Schema]
type ModelID string

// Stream is an ordered, single-pass source of raw row values.
// Next returns [Done] once the stream is exhausted.
// A stream is owned by exactly one cursor.
type Stream interface {
	Next(ctx context.Context) (Value, error)
	Close() error
}

// Schema exposes the structural metadata of models.
// The field count for a model must not change while a cursor holds the schema
type Schema interface {
	FieldCount(ModelID) int
}

// Loader converts a raw value into a T
type Loader[T any] interface {
	// The model the loaded values belong to
	ModelID() ModelID
	// Load parses a single raw value
	Load(Value) (T, error)
}

// Model is implemented by types that know how to load themselves from
// a raw value. Use [ModelLoader] or [Open] to bind it to a cursor
type Model interface {
	ModelID() ModelID
	LoadValue(Value) error
}
