package rowcursor

import (
	"errors"
	"fmt"
)

// Returns a [LoadError] with some optional metadata
func createError(err error, meta ...string) error {
	if le, ok := err.(*LoadError); ok && len(meta) == 0 {
		return le
	}

	return &LoadError{cause: err, meta: meta}
}

// LoadError is returned by the loaders in this package when a raw value
// cannot be converted. It wraps the cause and holds some additional metadata
type LoadError struct {
	meta  []string // easy compare
	cause error
}

// Unwrap returns the wrapped error
func (l *LoadError) Unwrap() error {
	return l.cause
}

// Error implements the error interface
func (l *LoadError) Error() string {
	return l.cause.Error()
}

// Meta returns a copy of the error metadata
func (l *LoadError) Meta() []string {
	m := make([]string, len(l.meta))
	copy(m, l.meta)
	return m
}

// Equal makes it easy to compare load errors
func (l *LoadError) Equal(err error) bool {
	var l2 *LoadError
	if !errors.As(err, &l2) {
		return errors.Is(l, err) || errors.Is(err, l)
	}

	if len(l.meta) != len(l2.meta) {
		return false
	}

	// if no meta, the error strings should match exactly
	if len(l.meta) == 0 {
		return l.Error() == l2.Error()
	}

	for k := range l.meta {
		if l.meta[k] != l2.meta[k] {
			return false
		}
	}

	return true
}

// MismatchError is the panic value used when a record does not have as many
// fields as the schema declares for the cursor's model.
// It is only raised when [DebugAssertionsEnabled] is true
type MismatchError struct {
	Model    ModelID
	Expected int
	Record   Record
}

// Got returns the number of fields in the offending record
func (m *MismatchError) Got() int {
	return len(m.Record)
}

// Error implements the error interface
func (m *MismatchError) Error() string {
	return fmt.Sprintf(
		"expected row for model %q to have %d columns, got %d: %#v",
		m.Model, m.Expected, len(m.Record), m.Record,
	)
}
