package rowcursor

import (
	"context"
	"iter"
)

// Values returns a stream over the given values
func Values(vals ...Value) Stream {
	return &sliceStream{vals: vals}
}

type sliceStream struct {
	vals []Value
}

func (s *sliceStream) Next(context.Context) (Value, error) {
	if len(s.vals) == 0 {
		return nil, Done
	}

	v := s.vals[0]
	s.vals = s.vals[1:]
	return v, nil
}

func (s *sliceStream) Close() error {
	s.vals = nil
	return nil
}

// FromSeq returns a stream over a Go iterator.
// Pairs with a non-nil error are returned as stream errors.
// Close stops the iterator if it has not finished
func FromSeq(seq iter.Seq2[Value, error]) Stream {
	next, stop := iter.Pull2(seq)
	return &seqStream{next: next, stop: stop}
}

type seqStream struct {
	next func() (Value, error, bool)
	stop func()
}

func (s *seqStream) Next(ctx context.Context) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, ok := s.next()
	if !ok {
		return nil, Done
	}

	return v, err
}

func (s *seqStream) Close() error {
	s.stop()
	return nil
}
