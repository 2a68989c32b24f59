package rowcursor

import (
	"fmt"
	"reflect"

	"github.com/aarondl/opt"
)

// AfterLoader can be implemented by structs loaded with [StructLoader]
// AfterLoad is called once all the fields are set
type AfterLoader interface {
	AfterLoad() error
}

// StructLoaderOption changes how [StructLoader] treats records
type StructLoaderOption func(*structLoaderConfig)

type structLoaderConfig struct {
	src          StructMapperSource
	allowUnknown bool
}

// WithMapperSource sets the source used to map struct fields.
// By default, fields are mapped with the `db` tag and snake_case names
func WithMapperSource(src StructMapperSource) StructLoaderOption {
	return func(c *structLoaderConfig) {
		c.src = src
	}
}

// WithAllowUnknownFields ignores trailing record values that have no struct field.
// By default, they cause a [LoadError]
func WithAllowUnknownFields(allow bool) StructLoaderOption {
	return func(c *structLoaderConfig) {
		c.allowUnknown = allow
	}
}

// StructLoader loads records into a struct, or pointer to a struct, by position.
// The n-th value of a record is set on the n-th mapped field of the struct
func StructLoader[T any](id ModelID, opts ...StructLoaderOption) Loader[T] {
	cfg := structLoaderConfig{src: defaultStructMapper}
	for _, o := range opts {
		o(&cfg)
	}

	typ, isPointer, err := structType[T]()
	if err != nil {
		return errorLoader[T](id, err)
	}

	m, err := cfg.src.layout(typ)
	if err != nil {
		return errorLoader[T](id, err)
	}

	return NewLoader(id, func(v Value) (T, error) {
		var t T

		record, ok := v.(Record)
		if !ok {
			return t, createError(fmt.Errorf("cannot load %T into %s", v, typ), "not a record")
		}

		if len(record) > len(m) && !cfg.allowUnknown {
			err := fmt.Errorf("no destination for field at position %d", len(m))
			return t, createError(err, "no destination")
		}

		row := reflect.New(typ).Elem()

		for i, info := range m {
			if i >= len(record) {
				err := fmt.Errorf("missing field %q", info.name)
				return t, createError(err, "missing field", info.name)
			}

			for _, idx := range info.allocs {
				pv := row.FieldByIndex(idx)
				if !pv.IsZero() {
					continue
				}

				pv.Set(reflect.New(pv.Type().Elem()))
			}

			fv := row.FieldByIndex(info.index)
			if err := opt.ConvertAssign(fv.Addr().Interface(), record[i]); err != nil {
				err = fmt.Errorf("field %q: %w", info.name, err)
				return t, createError(err, "convert", info.name)
			}
		}

		if al, ok := row.Addr().Interface().(AfterLoader); ok {
			if err := al.AfterLoad(); err != nil {
				return t, err
			}
		}

		if isPointer {
			row = row.Addr()
		}

		return row.Interface().(T), nil
	})
}

// A loader generator does not return an error itself to make it less cumbersome
// so we return a loader that only returns an error instead
func errorLoader[T any](id ModelID, err error, meta ...string) Loader[T] {
	err = createError(err, meta...)

	return NewLoader(id, func(Value) (T, error) {
		var t T
		return t, err
	})
}
