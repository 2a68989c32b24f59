package pgxcursor

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stephenafamo/rowcursor"
)

// A Queryer that returns [pgx.Rows]
// this is for use with *pgx.Conn, *pgxpool.Pool, pgx.Tx or any similar implementations
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Cursor runs the query and returns a cursor over its rows
func Cursor[T any](ctx context.Context, exec Queryer, schema rowcursor.Schema, l rowcursor.Loader[T], sql string, args ...any) (*rowcursor.Cursor[T], error) {
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return rowcursor.New(schema, FromRows(rows), l), nil
}

// One runs the query and loads the first row
func One[T any](ctx context.Context, exec Queryer, schema rowcursor.Schema, l rowcursor.Loader[T], sql string, args ...any) (T, error) {
	c, err := Cursor(ctx, exec, schema, l, sql, args...)
	if err != nil {
		var t T
		return t, err
	}

	return rowcursor.First(ctx, c)
}

// All runs the query and loads every row into a slice
func All[T any](ctx context.Context, exec Queryer, schema rowcursor.Schema, l rowcursor.Loader[T], sql string, args ...any) ([]T, error) {
	c, err := Cursor(ctx, exec, schema, l, sql, args...)
	if err != nil {
		return nil, err
	}

	return rowcursor.All(ctx, c)
}

// FromRows returns a stream that produces each row as a [rowcursor.Record]
// using the values decoded by pgx
func FromRows(rows pgx.Rows) rowcursor.Stream {
	return stream{rows}
}

type stream struct {
	rows pgx.Rows
}

func (s stream) Next(ctx context.Context) (rowcursor.Value, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		return nil, rowcursor.Done
	}

	vals, err := s.rows.Values()
	if err != nil {
		return nil, err
	}

	return rowcursor.Record(vals), nil
}

func (s stream) Close() error {
	s.rows.Close()
	return s.rows.Err()
}
