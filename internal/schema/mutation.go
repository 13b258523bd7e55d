package schema

import (
	"github.com/graphql-go/graphql"

	"model-graphql/internal/gqltype"
	"model-graphql/internal/model"
)

// addMutationFields registers insert/update/delete fields for one model.
// Only called for models with a primary key; write-back reads need one.
func (c *compiler) addMutationFields(fields graphql.Fields, m *model.Model) error {
	objType, err := c.objectType(m)
	if err != nil {
		return err
	}
	whereInput, err := c.whereInput(m)
	if err != nil {
		return err
	}
	insertInput, err := c.insertInput(m)
	if err != nil {
		return err
	}
	setInput, err := c.setInput(m)
	if err != nil {
		return err
	}

	listType := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(objType)))

	fields[c.namer.InsertFieldName(m.Name)] = &graphql.Field{
		Type: objType,
		Args: graphql.FieldConfigArgument{
			"object": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(insertInput),
			},
		},
		Resolve: c.resolver.Insert(m),
	}

	fields[c.namer.UpdateFieldName(m.Name)] = &graphql.Field{
		Type: listType,
		Args: graphql.FieldConfigArgument{
			"where": &graphql.ArgumentConfig{
				Type: whereInput,
			},
			"set": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(setInput),
			},
		},
		Resolve: c.resolver.Update(m),
	}

	fields[c.namer.DeleteFieldName(m.Name)] = &graphql.Field{
		Type: listType,
		Args: graphql.FieldConfigArgument{
			"where": &graphql.ArgumentConfig{
				Type: whereInput,
			},
		},
		Resolve: c.resolver.Delete(m),
	}

	return nil
}

// insertInput builds the payload input for insert_<model>. Every field is
// optional; the store enforces required columns and fills defaults, and the
// resolver reads the row back so generated values round-trip.
func (c *compiler) insertInput(m *model.Model) (*graphql.InputObject, error) {
	typeName := c.namer.InsertInputName(c.typeNames[m.Name])

	c.mu.RLock()
	cached, ok := c.insertCache[typeName]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	fields, err := scalarInputFields(m)
	if err != nil {
		return nil, err
	}
	input := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName,
		Fields: fields,
	})

	c.mu.Lock()
	if cached, ok := c.insertCache[typeName]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.insertCache[typeName] = input
	c.mu.Unlock()
	return input, nil
}

// setInput builds the payload input for update_<model>.
func (c *compiler) setInput(m *model.Model) (*graphql.InputObject, error) {
	typeName := c.namer.SetInputName(c.typeNames[m.Name])

	c.mu.RLock()
	cached, ok := c.setCache[typeName]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	fields, err := scalarInputFields(m)
	if err != nil {
		return nil, err
	}
	input := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName,
		Fields: fields,
	})

	c.mu.Lock()
	if cached, ok := c.setCache[typeName]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.setCache[typeName] = input
	c.mu.Unlock()
	return input, nil
}

func scalarInputFields(m *model.Model) (graphql.InputObjectConfigFieldMap, error) {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range m.Fields {
		scalar, err := gqltype.Scalar(f.Kind)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = &graphql.InputObjectFieldConfig{Type: scalar}
	}
	return fields, nil
}
