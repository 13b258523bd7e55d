// Package schema compiles model descriptors into an executable GraphQL
// schema: one object type per model, root list and by-primary-key fields,
// boolean filter inputs, ordering, pagination, and optional mutations.
// Compilation is deterministic; the same descriptors and config always yield
// a structurally identical schema.
package schema

import (
	"fmt"
	"sync"

	"github.com/graphql-go/graphql"

	"model-graphql/internal/gqltype"
	"model-graphql/internal/model"
	"model-graphql/internal/naming"
	"model-graphql/internal/resolver"
	"model-graphql/internal/scalars"
)

// Config controls schema compilation.
type Config struct {
	// IncludeModels, when non-empty, limits compilation to the named
	// models. ExcludeModels removes models after inclusion.
	IncludeModels []string
	ExcludeModels []string

	// Root field name templates; `{model}` expands to the model name.
	ListFieldNameTemplate string
	ByPkFieldNameTemplate string

	// DefaultPageLimit, when positive, applies to list fields whose query
	// supplies no limit argument.
	DefaultPageLimit int

	// EnableMutations adds insert/update/delete fields for models that
	// declare a primary key.
	EnableMutations bool
}

// Compiled is the output of a successful compile: the executable schema and
// the registry the resolvers run against.
type Compiled struct {
	Schema   graphql.Schema
	Registry *model.Registry
}

// Compile validates the descriptors and builds the schema. Build-time
// failures (unsupported kinds, unresolvable relationships, name collisions)
// return an error; nothing is deferred to request time.
func Compile(models []model.Model, cfg Config) (*Compiled, error) {
	filtered := filterModels(models, cfg.IncludeModels, cfg.ExcludeModels)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no models to compile")
	}

	reg, err := model.NewRegistry(filtered)
	if err != nil {
		return nil, err
	}

	c := &compiler{
		registry: reg,
		config:   cfg,
		namer: naming.New(naming.Config{
			ListFieldTemplate: cfg.ListFieldNameTemplate,
			ByPkFieldTemplate: cfg.ByPkFieldNameTemplate,
		}),
		resolver:    resolver.New(reg, cfg.DefaultPageLimit, nil),
		typeNames:   make(map[string]string),
		typeCache:   make(map[string]*graphql.Object),
		whereCache:  make(map[string]*graphql.InputObject),
		filterCache: make(map[gqltype.Kind]*graphql.InputObject),
		orderCache:  make(map[string]*graphql.InputObject),
		insertCache: make(map[string]*graphql.InputObject),
		setCache:    make(map[string]*graphql.InputObject),
	}

	schema, err := c.compile()
	if err != nil {
		return nil, err
	}

	return &Compiled{Schema: schema, Registry: reg}, nil
}

type compiler struct {
	registry *model.Registry
	config   Config
	namer    *naming.Namer
	resolver *resolver.Resolver

	mu          sync.RWMutex
	typeNames   map[string]string
	typeCache   map[string]*graphql.Object
	whereCache  map[string]*graphql.InputObject
	filterCache map[gqltype.Kind]*graphql.InputObject
	orderCache  map[string]*graphql.InputObject
	insertCache map[string]*graphql.InputObject
	setCache    map[string]*graphql.InputObject

	orderDirection *graphql.Enum
}

func (c *compiler) compile() (graphql.Schema, error) {
	// Derive and reserve every name up front so collisions surface before
	// any type is built.
	for _, m := range c.registry.Models() {
		typeName := c.namer.TypeName(m.Name)
		if err := c.namer.ReserveType(typeName, m.Name); err != nil {
			return graphql.Schema{}, err
		}
		c.typeNames[m.Name] = typeName

		for _, f := range m.Fields {
			if _, err := gqltype.Scalar(f.Kind); err != nil {
				return graphql.Schema{}, err
			}
		}

		if err := c.namer.ReserveRoot(c.namer.ListFieldName(m.Name), m.Name); err != nil {
			return graphql.Schema{}, err
		}
		if len(m.PrimaryKey()) > 0 {
			if err := c.namer.ReserveRoot(c.namer.ByPkFieldName(m.Name), m.Name); err != nil {
				return graphql.Schema{}, err
			}
		}
	}

	queryFields := graphql.Fields{}
	for _, m := range c.registry.Models() {
		if err := c.addQueryFields(queryFields, m); err != nil {
			return graphql.Schema{}, err
		}
	}

	schemaConfig := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
	}

	if c.config.EnableMutations {
		mutationFields := graphql.Fields{}
		for _, m := range c.registry.Models() {
			if len(m.PrimaryKey()) == 0 {
				continue
			}
			if err := c.addMutationFields(mutationFields, m); err != nil {
				return graphql.Schema{}, err
			}
		}
		if len(mutationFields) > 0 {
			schemaConfig.Mutation = graphql.NewObject(graphql.ObjectConfig{
				Name:   "Mutation",
				Fields: mutationFields,
			})
		}
	}

	return graphql.NewSchema(schemaConfig)
}

// addQueryFields registers the root list field and, when the model has a
// primary key, the by-primary-key lookup field.
func (c *compiler) addQueryFields(fields graphql.Fields, m *model.Model) error {
	objType, err := c.objectType(m)
	if err != nil {
		return err
	}

	listArgs, err := c.listFieldArgs(m)
	if err != nil {
		return err
	}
	fields[c.namer.ListFieldName(m.Name)] = &graphql.Field{
		Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(objType))),
		Args:    listArgs,
		Resolve: c.resolver.List(m),
	}

	pk := m.PrimaryKey()
	if len(pk) == 0 {
		return nil
	}
	pkArgs := graphql.FieldConfigArgument{}
	for _, field := range pk {
		scalar, err := gqltype.Scalar(field.Kind)
		if err != nil {
			return err
		}
		pkArgs[field.Name] = &graphql.ArgumentConfig{
			Type: graphql.NewNonNull(scalar),
		}
	}
	fields[c.namer.ByPkFieldName(m.Name)] = &graphql.Field{
		Type:    objType,
		Args:    pkArgs,
		Resolve: c.resolver.ByPK(m),
	}
	return nil
}

// listFieldArgs returns the argument set shared by root list fields and
// nested to-many relationship fields.
func (c *compiler) listFieldArgs(m *model.Model) (graphql.FieldConfigArgument, error) {
	whereInput, err := c.whereInput(m)
	if err != nil {
		return nil, err
	}
	orderInput, err := c.orderByInput(m)
	if err != nil {
		return nil, err
	}
	return graphql.FieldConfigArgument{
		"where": &graphql.ArgumentConfig{
			Type: whereInput,
		},
		"order_by": &graphql.ArgumentConfig{
			Type: graphql.NewList(graphql.NewNonNull(orderInput)),
		},
		"limit": &graphql.ArgumentConfig{
			Type: scalars.NonNegativeInt(),
		},
		"offset": &graphql.ArgumentConfig{
			Type: scalars.NonNegativeInt(),
		},
	}, nil
}

// objectType builds (or returns the cached) GraphQL object type for a model.
// Fields are built lazily through FieldsThunk so circular relationships
// resolve.
func (c *compiler) objectType(m *model.Model) (*graphql.Object, error) {
	typeName := c.typeNames[m.Name]

	c.mu.RLock()
	cached, ok := c.typeCache[typeName]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	objType := graphql.NewObject(graphql.ObjectConfig{
		Name: typeName,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return c.buildObjectFields(m)
		}),
	})

	// Cache before the thunk runs so circular references find the type.
	c.mu.Lock()
	if cached, ok := c.typeCache[typeName]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.typeCache[typeName] = objType
	c.mu.Unlock()

	return objType, nil
}

// buildObjectFields builds the fields of a model's object type: one scalar
// field per descriptor field and one traversal field per relationship.
// Kind validity was checked before any type was built, so the thunk cannot
// fail here.
func (c *compiler) buildObjectFields(m *model.Model) graphql.Fields {
	fields := graphql.Fields{}

	for _, f := range m.Fields {
		fieldType, err := gqltype.MapScalar(f.Kind, f.Nullable)
		if err != nil {
			continue
		}
		fields[f.Name] = &graphql.Field{Type: fieldType}
	}

	for i := range m.Relationships {
		rel := &m.Relationships[i]
		target, ok := c.registry.Model(rel.Target)
		if !ok {
			continue
		}
		targetType, err := c.objectType(target)
		if err != nil {
			continue
		}

		switch rel.Cardinality {
		case model.ToOne:
			// To-one fields stay nullable regardless of key
			// nullability: the related row can be absent.
			fields[rel.Name] = &graphql.Field{
				Type:    targetType,
				Resolve: c.resolver.ToOne(m, rel),
			}
		case model.ToMany:
			args, err := c.listFieldArgs(target)
			if err != nil {
				continue
			}
			fields[rel.Name] = &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(targetType))),
				Args:    args,
				Resolve: c.resolver.ToMany(m, rel),
			}
		}
	}

	return fields
}

// filterModels applies include/exclude configuration while preserving
// descriptor order. Relationships pointing at a filtered-out model are
// dropped along with it, so the surviving descriptors stay self-contained.
func filterModels(models []model.Model, include, exclude []string) []model.Model {
	included := func(name string) bool {
		if len(include) == 0 {
			return true
		}
		for _, n := range include {
			if n == name {
				return true
			}
		}
		return false
	}
	excluded := func(name string) bool {
		for _, n := range exclude {
			if n == name {
				return true
			}
		}
		return false
	}

	kept := func(name string) bool {
		return included(name) && !excluded(name)
	}

	out := make([]model.Model, 0, len(models))
	for _, m := range models {
		if !kept(m.Name) {
			continue
		}
		rels := make([]model.Relationship, 0, len(m.Relationships))
		for _, rel := range m.Relationships {
			if !kept(rel.Target) {
				continue
			}
			rels = append(rels, rel)
		}
		m.Relationships = rels
		out = append(out, m)
	}

	// Inverse annotations can dangle after pruning; clear them rather than
	// failing registry validation over an informational field.
	keptRels := make(map[string]map[string]struct{}, len(out))
	for _, m := range out {
		names := make(map[string]struct{}, len(m.Relationships))
		for _, rel := range m.Relationships {
			names[rel.Name] = struct{}{}
		}
		keptRels[m.Name] = names
	}
	for i := range out {
		for j := range out[i].Relationships {
			rel := &out[i].Relationships[j]
			if rel.Inverse == "" {
				continue
			}
			if _, ok := keptRels[rel.Target][rel.Inverse]; !ok {
				rel.Inverse = ""
			}
		}
	}
	return out
}
