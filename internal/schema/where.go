package schema

import (
	"github.com/graphql-go/graphql"

	"model-graphql/internal/gqltype"
	"model-graphql/internal/model"
)

// filterInput builds (or returns the cached) comparison input type for a
// scalar kind. One instance per kind is shared by every model in the schema.
// The operator set is gated by the kind: ordering comparisons need an ordered
// kind, pattern matching needs a textual one.
func (c *compiler) filterInput(kind gqltype.Kind) (*graphql.InputObject, error) {
	c.mu.RLock()
	cached, ok := c.filterCache[kind]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	scalar, err := gqltype.Scalar(kind)
	if err != nil {
		return nil, err
	}

	fields := graphql.InputObjectConfigFieldMap{
		"_eq":      &graphql.InputObjectFieldConfig{Type: scalar},
		"_neq":     &graphql.InputObjectFieldConfig{Type: scalar},
		"_in":      &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(scalar))},
		"_nin":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(scalar))},
		"_is_null": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	}
	if kind.Ordered() {
		fields["_gt"] = &graphql.InputObjectFieldConfig{Type: scalar}
		fields["_gte"] = &graphql.InputObjectFieldConfig{Type: scalar}
		fields["_lt"] = &graphql.InputObjectFieldConfig{Type: scalar}
		fields["_lte"] = &graphql.InputObjectFieldConfig{Type: scalar}
	}
	if kind.Text() {
		fields["_like"] = &graphql.InputObjectFieldConfig{Type: graphql.String}
		fields["_ilike"] = &graphql.InputObjectFieldConfig{Type: graphql.String}
	}

	input := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   kind.FilterTypeName(),
		Fields: fields,
	})

	c.mu.Lock()
	if cached, ok := c.filterCache[kind]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.filterCache[kind] = input
	c.mu.Unlock()
	return input, nil
}

// whereInput builds (or returns the cached) boolean filter input for a model:
// one comparison field per column, one nested filter per relationship, and
// the _and/_or/_not combinators. Self- and cross-references resolve through
// a field-map thunk.
func (c *compiler) whereInput(m *model.Model) (*graphql.InputObject, error) {
	typeName := c.namer.WhereInputName(c.typeNames[m.Name])

	c.mu.RLock()
	cached, ok := c.whereCache[typeName]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range m.Fields {
		filterType, err := c.filterInput(f.Kind)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = &graphql.InputObjectFieldConfig{Type: filterType}
	}

	var inputObj *graphql.InputObject
	inputObj = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: typeName,
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			for _, rel := range m.Relationships {
				target, ok := c.registry.Model(rel.Target)
				if !ok {
					continue
				}
				targetWhere, err := c.whereInput(target)
				if err != nil {
					continue
				}
				fields[rel.Name] = &graphql.InputObjectFieldConfig{Type: targetWhere}
			}
			fields["_and"] = &graphql.InputObjectFieldConfig{
				Type: graphql.NewList(graphql.NewNonNull(inputObj)),
			}
			fields["_or"] = &graphql.InputObjectFieldConfig{
				Type: graphql.NewList(graphql.NewNonNull(inputObj)),
			}
			fields["_not"] = &graphql.InputObjectFieldConfig{
				Type: inputObj,
			}
			return fields
		}),
	})

	c.mu.Lock()
	if cached, ok := c.whereCache[typeName]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.whereCache[typeName] = inputObj
	c.mu.Unlock()
	return inputObj, nil
}

// orderDirectionEnum returns the shared ASC/DESC enum.
func (c *compiler) orderDirectionEnum() *graphql.Enum {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orderDirection == nil {
		c.orderDirection = graphql.NewEnum(graphql.EnumConfig{
			Name: "OrderDirection",
			Values: graphql.EnumValueConfigMap{
				"ASC":  &graphql.EnumValueConfig{Value: "ASC"},
				"DESC": &graphql.EnumValueConfig{Value: "DESC"},
			},
		})
	}
	return c.orderDirection
}

// orderByInput builds (or returns the cached) ordering input for a model:
// one optional direction per field. Queries pass a list of these objects,
// one field per entry, applied left to right.
func (c *compiler) orderByInput(m *model.Model) (*graphql.InputObject, error) {
	typeName := c.namer.OrderByInputName(c.typeNames[m.Name])

	c.mu.RLock()
	cached, ok := c.orderCache[typeName]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	direction := c.orderDirectionEnum()
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range m.Fields {
		fields[f.Name] = &graphql.InputObjectFieldConfig{Type: direction}
	}

	input := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName,
		Fields: fields,
	})

	c.mu.Lock()
	if cached, ok := c.orderCache[typeName]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.orderCache[typeName] = input
	c.mu.Unlock()
	return input, nil
}
