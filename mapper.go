package rowcursor

import (
	"fmt"
	"strconv"

	"github.com/aarondl/opt"
)

// NewLoader returns a [Loader] for the model that uses the given function
func NewLoader[T any](id ModelID, load func(Value) (T, error)) Loader[T] {
	return loaderFunc[T]{id: id, load: load}
}

type loaderFunc[T any] struct {
	id   ModelID
	load func(Value) (T, error)
}

func (l loaderFunc[T]) ModelID() ModelID {
	return l.id
}

func (l loaderFunc[T]) Load(v Value) (T, error) {
	return l.load(v)
}

// ModelLoader returns a [Loader] for a type whose pointer implements [Model]
func ModelLoader[T any, PT interface {
	*T
	Model
}]() Loader[T] {
	return modelLoader[T, PT]{}
}

type modelLoader[T any, PT interface {
	*T
	Model
}] struct{}

func (modelLoader[T, PT]) ModelID() ModelID {
	var t T
	return PT(&t).ModelID()
}

func (modelLoader[T, PT]) Load(v Value) (T, error) {
	var t T
	if err := PT(&t).LoadValue(v); err != nil {
		var zero T
		return zero, err
	}

	return t, nil
}

// ValueLoader is for models with a single field.
// A one-field [Record] is unwrapped, any other shape is converted directly
func ValueLoader[T any](id ModelID) Loader[T] {
	return NewLoader(id, func(v Value) (T, error) {
		var t T

		if record, ok := v.(Record); ok {
			if len(record) != 1 {
				err := fmt.Errorf("expected 1 field but got %d fields", len(record))
				return t, createError(err, "wrong field count", "1", strconv.Itoa(len(record)))
			}
			v = record[0]
		}

		if err := opt.ConvertAssign(&t, v); err != nil {
			return t, createError(fmt.Errorf("convert %T: %w", v, err), "convert")
		}

		return t, nil
	})
}

// RecordLoader loads each record as a []any in field order
func RecordLoader(id ModelID) Loader[[]any] {
	return NewLoader(id, func(v Value) ([]any, error) {
		record, ok := v.(Record)
		if !ok {
			return nil, createError(fmt.Errorf("cannot load %T as a record", v), "not a record")
		}

		row := make([]any, len(record))
		copy(row, record)
		return row, nil
	})
}

// MapLoader loads each record into a map keyed by the field names
// the registry declares for the model
func MapLoader(r *Registry, id ModelID) Loader[map[string]any] {
	return NewLoader(id, func(v Value) (map[string]any, error) {
		record, ok := v.(Record)
		if !ok {
			return nil, createError(fmt.Errorf("cannot load %T as a record", v), "not a record")
		}

		fields, ok := r.Fields(id)
		if !ok {
			return nil, createError(fmt.Errorf("unknown model %q", id), "unknown model", string(id))
		}

		row := make(map[string]any, len(fields))
		for i, name := range fields {
			if i >= len(record) {
				return nil, createError(fmt.Errorf("missing field %q", name), "missing field", name)
			}
			row[name] = record[i]
		}

		return row, nil
	})
}
