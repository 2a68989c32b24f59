package rowcursor

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry is a [Schema] that holds the ordered field names of each model.
// It is safe for concurrent use, but models should all be defined before
// the registry is handed to a cursor
type Registry struct {
	mu     sync.RWMutex
	models map[ModelID][]string
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{models: make(map[ModelID][]string)}
}

// Define adds a model with the given fields, in the order a record holds them
func (r *Registry) Define(id ModelID, fields ...string) error {
	if id == "" {
		return errors.New("model id must not be empty")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			return fmt.Errorf("model %q: duplicate field %q", id, f)
		}
		seen[f] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.models[id]; ok {
		return fmt.Errorf("model %q is already defined", id)
	}

	f := make([]string, len(fields))
	copy(f, fields)
	r.models[id] = f

	return nil
}

// Fields returns a copy of the fields of the model
func (r *Registry) Fields(id ModelID) ([]string, bool) {
	r.mu.RLock()
	fields, ok := r.models[id]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}

	f := make([]string, len(fields))
	copy(f, fields)
	return f, true
}

// FieldCount implements [Schema].
// It panics if the model was never defined, as that means the schema
// and the code using it have drifted apart
func (r *Registry) FieldCount(id ModelID) int {
	r.mu.RLock()
	fields, ok := r.models[id]
	r.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("unknown model %q", id))
	}

	return len(fields)
}

// Models returns the ids of all defined models, sorted
func (r *Registry) Models() []ModelID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ModelID, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

type registryFile struct {
	Models []struct {
		Name   string   `yaml:"name"`
		Fields []string `yaml:"fields"`
	} `yaml:"models"`
}

// LoadRegistry reads model definitions from YAML in the form
//
//	models:
//	  - name: user
//	    fields: [id, name, active]
func LoadRegistry(r io.Reader) (*Registry, error) {
	var file registryFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	reg := NewRegistry()
	for _, m := range file.Models {
		if err := reg.Define(ModelID(m.Name), m.Fields...); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// DefineStruct defines a model whose fields are the columns the struct T maps to.
// If src is nil, the default mapping options are used
func DefineStruct[T any](r *Registry, id ModelID, src StructMapperSource) error {
	if src == nil {
		src = defaultStructMapper
	}

	typ, _, err := structType[T]()
	if err != nil {
		return err
	}

	m, err := src.layout(typ)
	if err != nil {
		return err
	}

	return r.Define(id, m.names()...)
}
