// Package rediscursor reads the entries of a Redis stream as records
package rediscursor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/stephenafamo/rowcursor"
)

// Cursor returns a cursor over the entries of the Redis stream at key.
// The model's fields, as declared by the registry, pick the entry values
// that make up each record
func Cursor[T any](r *rowcursor.Registry, client redis.Cmdable, key string, l rowcursor.Loader[T]) (*rowcursor.Cursor[T], error) {
	fields, ok := r.Fields(l.ModelID())
	if !ok {
		return nil, fmt.Errorf("unknown model %q", l.ModelID())
	}

	return rowcursor.New(r, New(client, key, fields...), l), nil
}

// New returns a stream over the entries of the Redis stream at key,
// starting from the first one.
// Each entry is returned as a [rowcursor.Record] holding the values of the
// given fields, in order. A field missing from an entry is nil in the record
func New(client redis.Cmdable, key string, fields ...string) rowcursor.Stream {
	return &stream{
		client: client,
		key:    key,
		fields: fields,
		start:  "-",
	}
}

// no entry can follow 18446744073709551615-18446744073709551615
var errLastID = errors.New("last possible stream id")

type stream struct {
	client redis.Cmdable
	key    string
	fields []string
	start  string
	done   bool
}

func (s *stream) Next(ctx context.Context) (rowcursor.Value, error) {
	if s.done {
		return nil, rowcursor.Done
	}

	msgs, err := s.client.XRangeN(ctx, s.key, s.start, "+", 1).Result()
	if err != nil {
		return nil, err
	}

	if len(msgs) == 0 {
		s.done = true
		return nil, rowcursor.Done
	}

	msg := msgs[0]
	next, err := nextID(msg.ID)
	switch {
	case errors.Is(err, errLastID):
		s.done = true
	case err != nil:
		return nil, err
	default:
		s.start = next
	}

	record := make(rowcursor.Record, len(s.fields))
	for i, f := range s.fields {
		record[i] = msg.Values[f]
	}

	return record, nil
}

func (s *stream) Close() error {
	s.done = true
	return nil
}

// nextID returns the smallest entry id greater than id
func nextID(id string) (string, error) {
	ms, seq, ok := strings.Cut(id, "-")
	if !ok {
		return "", fmt.Errorf("malformed stream id %q", id)
	}

	n, err := strconv.ParseUint(seq, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed stream id %q: %w", id, err)
	}

	if n < math.MaxUint64 {
		return ms + "-" + strconv.FormatUint(n+1, 10), nil
	}

	t, err := strconv.ParseUint(ms, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed stream id %q: %w", id, err)
	}
	if t == math.MaxUint64 {
		return "", errLastID
	}

	return strconv.FormatUint(t+1, 10) + "-0", nil
}
