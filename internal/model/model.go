// Package model defines the static descriptors that drive schema generation:
// models, fields, primary keys, and relationships. A validated Registry is
// built once per schema compile and is immutable afterwards, so concurrent
// request handling reads it without locking.
package model

import (
	"fmt"

	"model-graphql/internal/gqltype"
)

// Cardinality describes the shape of a relationship from the owning model's
// point of view.
type Cardinality string

const (
	// ToOne means at most one related row per owning row.
	ToOne Cardinality = "to-one"
	// ToMany means zero or more related rows per owning row.
	ToMany Cardinality = "to-many"
)

// Field describes one scalar column of a model.
type Field struct {
	Name       string
	Kind       gqltype.Kind
	Nullable   bool
	PrimaryKey bool
}

// KeyPair joins one local field to one foreign field of the target model.
// Composite keys are expressed as multiple ordered pairs.
type KeyPair struct {
	Local   string
	Foreign string
}

// Relationship describes a named link to another model.
type Relationship struct {
	Name        string
	Target      string
	Cardinality Cardinality
	Mapping     []KeyPair
	// Inverse optionally names the relationship on the target model that
	// points back here. Informational only; traversal works without it.
	Inverse string
}

// Model describes one table-like entity.
type Model struct {
	Name          string
	Fields        []Field
	Relationships []Relationship

	fieldIndex map[string]*Field
	relIndex   map[string]*Relationship
	primaryKey []*Field
}

// Field returns the named field, or false if the model has no such field.
// Only valid on models obtained from a Registry.
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.fieldIndex[name]
	return f, ok
}

// Relationship returns the named relationship, or false when absent.
// Only valid on models obtained from a Registry.
func (m *Model) Relationship(name string) (*Relationship, bool) {
	r, ok := m.relIndex[name]
	return r, ok
}

// PrimaryKey returns the primary-key fields in descriptor order. Empty when
// the model declares no primary key; such models get no by-pk lookup and no
// mutations.
func (m *Model) PrimaryKey() []*Field {
	return m.primaryKey
}

// AmbiguousRelationshipError indicates a relationship whose key mapping
// cannot be resolved against the registry. Fatal at schema-build time.
type AmbiguousRelationshipError struct {
	Model        string
	Relationship string
	Reason       string
}

func (e *AmbiguousRelationshipError) Error() string {
	return fmt.Sprintf("relationship %s.%s: %s", e.Model, e.Relationship, e.Reason)
}

// Registry is the validated, indexed set of models for one compiled schema.
type Registry struct {
	models []*Model
	byName map[string]*Model
}

// NewRegistry validates the descriptors and builds lookup tables. Descriptor
// order is preserved so that compilation stays deterministic.
func NewRegistry(models []Model) (*Registry, error) {
	reg := &Registry{
		models: make([]*Model, 0, len(models)),
		byName: make(map[string]*Model, len(models)),
	}

	for i := range models {
		m := models[i]
		if m.Name == "" {
			return nil, fmt.Errorf("model at index %d has no name", i)
		}
		if _, exists := reg.byName[m.Name]; exists {
			return nil, fmt.Errorf("duplicate model name %q", m.Name)
		}
		if len(m.Fields) == 0 {
			return nil, fmt.Errorf("model %q has no fields", m.Name)
		}

		m.fieldIndex = make(map[string]*Field, len(m.Fields))
		for j := range m.Fields {
			f := &m.Fields[j]
			if f.Name == "" {
				return nil, fmt.Errorf("model %q: field at index %d has no name", m.Name, j)
			}
			if _, exists := m.fieldIndex[f.Name]; exists {
				return nil, fmt.Errorf("model %q: duplicate field name %q", m.Name, f.Name)
			}
			m.fieldIndex[f.Name] = f
			if f.PrimaryKey {
				if f.Nullable {
					return nil, fmt.Errorf("model %q: primary key field %q cannot be nullable", m.Name, f.Name)
				}
				m.primaryKey = append(m.primaryKey, f)
			}
		}

		m.relIndex = make(map[string]*Relationship, len(m.Relationships))
		for j := range m.Relationships {
			r := &m.Relationships[j]
			if r.Name == "" {
				return nil, fmt.Errorf("model %q: relationship at index %d has no name", m.Name, j)
			}
			if _, exists := m.relIndex[r.Name]; exists {
				return nil, fmt.Errorf("model %q: duplicate relationship name %q", m.Name, r.Name)
			}
			if _, exists := m.fieldIndex[r.Name]; exists {
				return nil, fmt.Errorf("model %q: relationship %q collides with a field name", m.Name, r.Name)
			}
			m.relIndex[r.Name] = r
		}

		reg.models = append(reg.models, &m)
		reg.byName[m.Name] = &m
	}

	// Relationship targets and key mappings can only be checked once every
	// model is indexed.
	for _, m := range reg.models {
		for _, r := range m.Relationships {
			if err := reg.validateRelationship(m, &r); err != nil {
				return nil, err
			}
		}
	}

	return reg, nil
}

func (reg *Registry) validateRelationship(m *Model, r *Relationship) error {
	fail := func(reason string) error {
		return &AmbiguousRelationshipError{Model: m.Name, Relationship: r.Name, Reason: reason}
	}

	if r.Cardinality != ToOne && r.Cardinality != ToMany {
		return fail(fmt.Sprintf("unknown cardinality %q", r.Cardinality))
	}

	target, ok := reg.byName[r.Target]
	if !ok {
		return fail(fmt.Sprintf("target model %q does not exist", r.Target))
	}

	if len(r.Mapping) == 0 {
		return fail("key mapping is empty")
	}
	for _, pair := range r.Mapping {
		if pair.Local == "" || pair.Foreign == "" {
			return fail("key mapping has an empty side")
		}
		if _, ok := m.Field(pair.Local); !ok {
			return fail(fmt.Sprintf("local field %q does not exist", pair.Local))
		}
		if _, ok := target.Field(pair.Foreign); !ok {
			return fail(fmt.Sprintf("foreign field %q does not exist on %q", pair.Foreign, r.Target))
		}
	}

	if r.Inverse != "" {
		if _, ok := target.Relationship(r.Inverse); !ok {
			return fail(fmt.Sprintf("inverse relationship %q does not exist on %q", r.Inverse, r.Target))
		}
	}

	return nil
}

// Model returns the named model, or false when the registry has no such model.
func (reg *Registry) Model(name string) (*Model, bool) {
	m, ok := reg.byName[name]
	return m, ok
}

// Models returns all models in descriptor order. The returned slice must not
// be mutated.
func (reg *Registry) Models() []*Model {
	return reg.models
}

// Len returns the number of registered models.
func (reg *Registry) Len() int {
	return len(reg.models)
}
