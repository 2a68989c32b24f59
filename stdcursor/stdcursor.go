package stdcursor

import (
	"context"
	"database/sql"

	"github.com/stephenafamo/rowcursor"
)

// A Queryer that returns the concrete type *sql.Rows
// this is for use with *sql.DB, *sql.Tx or *sql.Conn or any similar implementations
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Cursor runs the query and returns a cursor over its rows
func Cursor[T any](ctx context.Context, exec Queryer, schema rowcursor.Schema, l rowcursor.Loader[T], query string, args ...any) (*rowcursor.Cursor[T], error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return rowcursor.New(schema, FromRows(rows), l), nil
}

// One runs the query and loads the first row.
// It returns [sql.ErrNoRows] if the query returns no rows
func One[T any](ctx context.Context, exec Queryer, schema rowcursor.Schema, l rowcursor.Loader[T], query string, args ...any) (T, error) {
	c, err := Cursor(ctx, exec, schema, l, query, args...)
	if err != nil {
		var t T
		return t, err
	}

	return rowcursor.First(ctx, c)
}

// All runs the query and loads every row into a slice
func All[T any](ctx context.Context, exec Queryer, schema rowcursor.Schema, l rowcursor.Loader[T], query string, args ...any) ([]T, error) {
	c, err := Cursor(ctx, exec, schema, l, query, args...)
	if err != nil {
		return nil, err
	}

	return rowcursor.All(ctx, c)
}

// FromRows returns a stream that produces each row as a [rowcursor.Record]
// The stream closes the rows when it is closed
func FromRows(rows *sql.Rows) rowcursor.Stream {
	return &stream{rows: rows}
}

type stream struct {
	rows    *sql.Rows
	columns int
}

func (s *stream) Next(ctx context.Context) (rowcursor.Value, error) {
	if s.columns == 0 {
		cols, err := s.rows.Columns()
		if err != nil {
			return nil, err
		}
		s.columns = len(cols)
	}

	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		return nil, rowcursor.Done
	}

	record := make(rowcursor.Record, s.columns)
	targets := make([]any, s.columns)
	for i := range record {
		targets[i] = &record[i]
	}

	if err := s.rows.Scan(targets...); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *stream) Close() error {
	return s.rows.Close()
}
