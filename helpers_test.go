package rowcursor

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/aarondl/opt"
	"github.com/google/go-cmp/cmp"
)

var errTimedOut = errors.New("i/o timeout")

type User struct {
	ID     int64
	Name   string
	Active bool
}

func (u *User) ModelID() ModelID {
	return "user"
}

func (u *User) LoadValue(v Value) error {
	record, ok := v.(Record)
	if !ok {
		return fmt.Errorf("cannot load %T into a user", v)
	}

	names := []string{"id", "name", "active"}
	dests := []any{&u.ID, &u.Name, &u.Active}
	for i, dest := range dests {
		if i >= len(record) {
			return fmt.Errorf("missing field %q", names[i])
		}

		if err := opt.ConvertAssign(dest, record[i]); err != nil {
			return fmt.Errorf("field %q: %w", names[i], err)
		}
	}

	return nil
}

func userRecord(id int64, name string, active bool) Record {
	return Record{id, name, active}
}

func newSchema(tb testing.TB) *Registry {
	tb.Helper()

	r := NewRegistry()
	if err := r.Define("user", "id", "name", "active"); err != nil {
		tb.Fatalf("defining user: %v", err)
	}

	return r
}

type item struct {
	val Value
	err error
}

// seqOf returns a stream over the items, with pulled counting how many
// items the cursor actually asked for
func seqOf(pulled *int, items ...item) Stream {
	return FromSeq(func(yield func(Value, error) bool) {
		for _, it := range items {
			*pulled++
			if !yield(it.val, it.err) {
				return
			}
		}
	})
}

func collectNext[T any](ctx context.Context, c *Cursor[T]) ([]T, error) {
	var all []T
	for {
		t, err := c.Next(ctx)
		if err == Done { //nolint:errorlint
			return all, nil
		}
		if err != nil {
			return nil, err
		}

		all = append(all, t)
	}
}

func iterate[T any](seq iter.Seq2[T, error]) ([]T, []error) {
	var vals []T
	var errs []error
	for v, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vals = append(vals, v)
	}

	return vals, errs
}

func convertLoadError(l *LoadError) string {
	return strings.Join(l.meta, " ")
}

func diffErr(expected, got error) string {
	return cmp.Diff(expected, got, cmp.Transformer("convertLoadErr", convertLoadError), equateErrors())
}

// equateErrors returns a Comparer option that determines errors to be equal
// if errors.Is reports them to match.
func equateErrors() cmp.Option {
	return cmp.FilterValues(nonLoadErrors, cmp.Comparer(compareErrors))
}

// nonLoadErrors reports whether x and y are errors that are not both
// load errors, which are compared by their metadata instead
func nonLoadErrors(x, y error) bool {
	var le *LoadError
	ok1 := errors.As(x, &le)
	ok2 := errors.As(y, &le)
	return !(ok1 && ok2)
}

func compareErrors(xe, ye error) bool {
	if xe == nil || ye == nil {
		return xe == ye
	}

	if errors.Is(xe, ye) || errors.Is(ye, xe) {
		return true
	}

	return xe.Error() == ye.Error()
}
