package rowcursor

import (
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
)

var (
	matchFirstCapRe     = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCapRe       = regexp.MustCompile("([a-z0-9])([A-Z])")
	defaultStructMapper = newFieldSource()
)

// fieldLayout lists the struct fields a record fills, in record order
type fieldLayout []fieldSlot

// fieldSlot is one position of a record
type fieldSlot struct {
	name string
	// index of the field, as used by reflect.Value.FieldByIndex
	index []int
	// nil pointer parents to allocate before the field can be set
	allocs [][]int
}

func (l fieldLayout) names() []string {
	names := make([]string, len(l))
	for i, s := range l {
		names[i] = s.name
	}

	return names
}

// StructMapperSource decides which fields of a struct a record maps to,
// and what the record positions are called.
// Create one with [NewStructMapperSource]
type StructMapperSource interface {
	layout(reflect.Type) (fieldLayout, error)
}

func snakeCase(str string) string {
	snake := matchFirstCapRe.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCapRe.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

func newFieldSource() *fieldSource {
	return &fieldSource{
		tagKey:    "db",
		separator: ".",
		nameFn:    snakeCase,
		leafTypes: []reflect.Type{reflect.TypeOf((*sql.Scanner)(nil)).Elem()},
		maxDepth:  3,
		cache:     make(map[reflect.Type]fieldLayout),
	}
}

// NewStructMapperSource returns a source configured by the options
func NewStructMapperSource(opts ...MappingSourceOption) (StructMapperSource, error) {
	src := newFieldSource()
	for _, o := range opts {
		if err := o(src); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// MappingSourceOption configures a [StructMapperSource]
type MappingSourceOption func(src *fieldSource) error

// WithStructTagKey sets the struct tag that names a field. Defaults to `db`.
// A tag of "-" leaves the field out of the record.
func WithStructTagKey(tagKey string) MappingSourceOption {
	return func(src *fieldSource) error {
		src.tagKey = tagKey
		return nil
	}
}

// WithColumnSeparator sets what joins the names of nested struct fields.
// Defaults to "."
func WithColumnSeparator(separator string) MappingSourceOption {
	return func(src *fieldSource) error {
		src.separator = separator
		return nil
	}
}

// WithFieldNameMapper names untagged fields. Defaults to snake_case
func WithFieldNameMapper(mapperFn func(string) string) MappingSourceOption {
	return func(src *fieldSource) error {
		src.nameFn = mapperFn
		return nil
	}
}

// WithMaxDepth limits how many times the same struct type can be nested.
// The default is 3
func WithMaxDepth(depth int) MappingSourceOption {
	return func(src *fieldSource) error {
		if depth < 0 {
			return fmt.Errorf("max depth must not be negative, got %d", depth)
		}
		src.maxDepth = depth
		return nil
	}
}

// WithScannableTypes adds interfaces whose implementations fill a single
// record position instead of being expanded into their fields.
// sql.Scanner is always included. Pass each interface as a nil pointer:
//
//	rowcursor.WithScannableTypes((*Decoder)(nil))
func WithScannableTypes(scannableTypes ...any) MappingSourceOption {
	return func(src *fieldSource) error {
		for _, opt := range scannableTypes {
			st := reflect.TypeOf(opt)
			if st == nil || st.Kind() != reflect.Pointer {
				return fmt.Errorf("scannable type must be a pointer to an interface, got %T", opt)
			}

			st = st.Elem()
			if st.Kind() != reflect.Interface {
				return fmt.Errorf("scannable type must be a pointer to an interface, got %s", st)
			}

			src.leafTypes = append(src.leafTypes, st)
		}
		return nil
	}
}

type fieldSource struct {
	tagKey    string
	separator string
	nameFn    func(string) string
	leafTypes []reflect.Type
	maxDepth  int

	mu    sync.RWMutex
	cache map[reflect.Type]fieldLayout
}

func (s *fieldSource) layout(typ reflect.Type) (fieldLayout, error) {
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot map type %v, it is not a struct", typ)
	}

	s.mu.RLock()
	l, ok := s.cache[typ]
	s.mu.RUnlock()

	if ok {
		return l, nil
	}

	s.walk(&l, typ, "", make(map[reflect.Type]int), nil, nil)

	s.mu.Lock()
	s.cache[typ] = l
	s.mu.Unlock()

	return l, nil
}

func (s *fieldSource) isLeaf(typ reflect.Type) bool {
	for _, leaf := range s.leafTypes {
		if reflect.PointerTo(typ).Implements(leaf) {
			return true
		}
	}

	return false
}

// walk appends the slots of typ to l.
// index is where typ sits in the outer struct and allocs the pointers above it
func (s *fieldSource) walk(l *fieldLayout, typ reflect.Type, prefix string, depth map[reflect.Type]int, index []int, allocs [][]int) {
	if depth[typ] > s.maxDepth {
		return
	}
	depth[typ]++

	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if s.isLeaf(typ) {
		*l = append(*l, fieldSlot{name: prefix, index: index, allocs: allocs})
		return
	}

	var found bool
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tag, _, _ := strings.Cut(field.Tag.Get(s.tagKey), ",")
		if tag == "-" {
			continue
		}
		found = true

		name := prefix
		if !field.Anonymous {
			if tag == "" {
				tag = s.nameFn(field.Name)
			}
			if prefix != "" {
				name = prefix + s.separator + tag
			} else {
				name = tag
			}
		}

		// fresh slices so sibling fields never share a backing array
		fieldIndex := append(append([]int(nil), index...), i)
		fieldAllocs := allocs
		elem := field.Type
		if elem.Kind() == reflect.Pointer {
			fieldAllocs = append(append([][]int(nil), allocs...), fieldIndex)
			elem = elem.Elem()
		}

		if elem.Kind() == reflect.Struct {
			next := make(map[reflect.Type]int, len(depth))
			for k, v := range depth {
				next[k] = v
			}
			s.walk(l, field.Type, name, next, fieldIndex, fieldAllocs)
			continue
		}

		*l = append(*l, fieldSlot{name: name, index: fieldIndex, allocs: allocs})
	}

	// structs like time.Time have nothing exported and are set whole
	if !found {
		*l = append(*l, fieldSlot{name: prefix, index: index, allocs: allocs})
	}
}
