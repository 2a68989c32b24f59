package rowcursor

import (
	"context"
	"iter"
)

// Cursor converts the raw values of a [Stream] into values of T, one at a time.
// It owns the stream and borrows the schema, which must outlive it.
// A Cursor is not safe for concurrent use.
type Cursor[T any] struct {
	schema Schema
	stream Stream
	loader Loader[T]
	model  ModelID
	done   bool
}

// New returns a cursor that loads the values of the stream with the given loader.
// No values are read until [Cursor.Next] is called
func New[T any](schema Schema, stream Stream, loader Loader[T]) *Cursor[T] {
	return &Cursor[T]{
		schema: schema,
		stream: stream,
		loader: loader,
		model:  loader.ModelID(),
	}
}

// Open is like [New] but uses the model's own LoadValue method
func Open[T any, PT interface {
	*T
	Model
}](schema Schema, stream Stream,
) *Cursor[T] {
	return New(schema, stream, ModelLoader[T, PT]())
}

// Next reads exactly one value from the stream and loads it.
// It returns [Done] when the stream is exhausted.
// Errors from the stream and from the loader are returned as is.
func (c *Cursor[T]) Next(ctx context.Context) (T, error) {
	var t T
	if c.done {
		return t, Done
	}

	v, err := c.stream.Next(ctx)
	if err == Done { //nolint:errorlint
		c.done = true
		return t, Done
	}
	if err != nil {
		return t, err
	}

	if DebugAssertionsEnabled {
		c.validate(v)
	}

	return c.loader.Load(v)
}

// Each returns an iterator over the remaining values.
// Iteration continues after an error, break out of the loop to stop.
func (c *Cursor[T]) Each(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			t, err := c.Next(ctx)
			if err == Done { //nolint:errorlint
				return
			}

			if !yield(t, err) {
				return
			}
		}
	}
}

// Close releases the underlying stream
// Calling Next after Close returns [Done]
func (c *Cursor[T]) Close() error {
	c.done = true
	return c.stream.Close()
}

func (c *Cursor[T]) validate(v Value) {
	record, ok := v.(Record)
	if !ok {
		return
	}

	if err := checkRecord(c.schema, c.model, record); err != nil {
		panic(err)
	}
}

func checkRecord(schema Schema, model ModelID, record Record) *MismatchError {
	expected := schema.FieldCount(model)
	if len(record) == expected {
		return nil
	}

	return &MismatchError{
		Model:    model,
		Expected: expected,
		Record:   record,
	}
}
