// Package spannercursor reads Cloud Spanner query results through a rowcursor.Cursor
package spannercursor

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"
	"github.com/stephenafamo/rowcursor"
)

// Querier runs a statement and returns an iterator over its rows.
// *spanner.ReadOnlyTransaction and *spanner.ReadWriteTransaction implement
// Querier[*spanner.RowIterator]
type Querier[I RowIterator] interface {
	Query(ctx context.Context, statement spanner.Statement) I
}

// RowIterator is the part of *spanner.RowIterator used by the stream
type RowIterator interface {
	Next() (*spanner.Row, error)
	Stop()
}

// Cursor runs the statement and returns a cursor over its rows
func Cursor[T any, I RowIterator](ctx context.Context, q Querier[I], schema rowcursor.Schema, l rowcursor.Loader[T], stmt spanner.Statement) *rowcursor.Cursor[T] {
	return rowcursor.New(schema, FromIterator(q.Query(ctx, stmt)), l)
}

// All runs the statement and loads every row into a slice
func All[T any, I RowIterator](ctx context.Context, q Querier[I], schema rowcursor.Schema, l rowcursor.Loader[T], stmt spanner.Statement) ([]T, error) {
	return rowcursor.All(ctx, Cursor(ctx, q, schema, l, stmt))
}

// FromIterator returns a stream that produces each row as a [rowcursor.Record]
// Closing the stream stops the iterator
func FromIterator(it RowIterator) rowcursor.Stream {
	return stream{it}
}

type stream struct {
	it RowIterator
}

func (s stream) Next(context.Context) (rowcursor.Value, error) {
	row, err := s.it.Next()
	if err != nil {
		// iterator.Done is rowcursor.Done
		return nil, err
	}

	return RecordFromRow(row)
}

func (s stream) Close() error {
	s.it.Stop()
	return nil
}

// RecordFromRow decodes every column of the row.
// NULL values are returned as nil. NUMERIC is a *big.Rat, JSON the decoded
// value and ARRAY a []any of its decoded elements.
// STRUCT columns are returned as their raw *structpb.ListValue
func RecordFromRow(row *spanner.Row) (rowcursor.Record, error) {
	record := make(rowcursor.Record, row.Size())

	for i := range record {
		var col spanner.GenericColumnValue
		if err := row.Column(i, &col); err != nil {
			return nil, err
		}

		v, err := decodeColumn(col)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", row.ColumnName(i), err)
		}
		record[i] = v
	}

	return record, nil
}

func decodeColumn(col spanner.GenericColumnValue) (any, error) {
	switch col.Type.GetCode() {
	case sppb.TypeCode_BOOL:
		var v spanner.NullBool
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Bool, nil

	case sppb.TypeCode_INT64:
		var v spanner.NullInt64
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Int64, nil

	case sppb.TypeCode_FLOAT64:
		var v spanner.NullFloat64
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Float64, nil

	case sppb.TypeCode_STRING:
		var v spanner.NullString
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.StringVal, nil

	case sppb.TypeCode_BYTES:
		var v []byte
		if err := col.Decode(&v); err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		return v, nil

	case sppb.TypeCode_TIMESTAMP:
		var v spanner.NullTime
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Time, nil

	case sppb.TypeCode_DATE:
		var v spanner.NullDate
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Date, nil

	case sppb.TypeCode_NUMERIC:
		var v spanner.NullNumeric
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return &v.Numeric, nil

	case sppb.TypeCode_JSON:
		var v spanner.NullJSON
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Value, nil

	case sppb.TypeCode_ARRAY:
		list := col.Value.GetListValue()
		if list == nil {
			return nil, nil
		}

		elems := make([]any, len(list.GetValues()))
		for i, elem := range list.GetValues() {
			v, err := decodeColumn(spanner.GenericColumnValue{
				Type:  col.Type.GetArrayElementType(),
				Value: elem,
			})
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = v
		}
		return elems, nil

	case sppb.TypeCode_STRUCT:
		return col.Value.GetListValue(), nil

	default:
		return col.Value.AsInterface(), nil
	}
}
