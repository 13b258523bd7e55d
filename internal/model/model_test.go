package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-graphql/internal/gqltype"
)

func validModels() []Model {
	return []Model{
		{
			Name: "users",
			Fields: []Field{
				{Name: "id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "username", Kind: gqltype.KindString},
				{Name: "email", Kind: gqltype.KindString, Nullable: true},
			},
			Relationships: []Relationship{
				{
					Name:        "posts",
					Target:      "posts",
					Cardinality: ToMany,
					Mapping:     []KeyPair{{Local: "id", Foreign: "user_id"}},
					Inverse:     "author",
				},
			},
		},
		{
			Name: "posts",
			Fields: []Field{
				{Name: "id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "user_id", Kind: gqltype.KindInt, Nullable: true},
				{Name: "title", Kind: gqltype.KindString},
			},
			Relationships: []Relationship{
				{
					Name:        "author",
					Target:      "users",
					Cardinality: ToOne,
					Mapping:     []KeyPair{{Local: "user_id", Foreign: "id"}},
				},
			},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(validModels())
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	users, ok := reg.Model("users")
	require.True(t, ok)

	field, ok := users.Field("username")
	require.True(t, ok)
	assert.Equal(t, gqltype.KindString, field.Kind)

	_, ok = users.Field("nope")
	assert.False(t, ok)

	rel, ok := users.Relationship("posts")
	require.True(t, ok)
	assert.Equal(t, ToMany, rel.Cardinality)

	pk := users.PrimaryKey()
	require.Len(t, pk, 1)
	assert.Equal(t, "id", pk[0].Name)
}

func TestNewRegistry_PreservesDescriptorOrder(t *testing.T) {
	reg, err := NewRegistry(validModels())
	require.NoError(t, err)

	names := make([]string, 0, reg.Len())
	for _, m := range reg.Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"users", "posts"}, names)
}

func TestNewRegistry_CompositePrimaryKeyOrder(t *testing.T) {
	reg, err := NewRegistry([]Model{
		{
			Name: "memberships",
			Fields: []Field{
				{Name: "user_id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "group_id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "role", Kind: gqltype.KindString},
			},
		},
	})
	require.NoError(t, err)

	m, ok := reg.Model("memberships")
	require.True(t, ok)
	pk := m.PrimaryKey()
	require.Len(t, pk, 2)
	assert.Equal(t, "user_id", pk[0].Name)
	assert.Equal(t, "group_id", pk[1].Name)
}

func TestNewRegistry_ValidationErrors(t *testing.T) {
	base := func() []Model { return validModels() }

	tests := []struct {
		name   string
		mutate func([]Model) []Model
	}{
		{
			name: "duplicate model name",
			mutate: func(models []Model) []Model {
				models[1].Name = "users"
				return models
			},
		},
		{
			name: "empty model name",
			mutate: func(models []Model) []Model {
				models[0].Name = ""
				return models
			},
		},
		{
			name: "no fields",
			mutate: func(models []Model) []Model {
				models[0].Fields = nil
				return models
			},
		},
		{
			name: "duplicate field name",
			mutate: func(models []Model) []Model {
				models[0].Fields = append(models[0].Fields, Field{Name: "username", Kind: gqltype.KindString})
				return models
			},
		},
		{
			name: "nullable primary key",
			mutate: func(models []Model) []Model {
				models[0].Fields[0].Nullable = true
				return models
			},
		},
		{
			name: "relationship collides with field",
			mutate: func(models []Model) []Model {
				models[0].Relationships[0].Name = "username"
				return models
			},
		},
		{
			name: "duplicate relationship name",
			mutate: func(models []Model) []Model {
				models[0].Relationships = append(models[0].Relationships, models[0].Relationships[0])
				return models
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.mutate(base()))
			require.Error(t, err)
		})
	}
}

func TestNewRegistry_RelationshipValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]Model) []Model
		reason string
	}{
		{
			name: "unknown target",
			mutate: func(models []Model) []Model {
				models[0].Relationships[0].Target = "missing"
				return models
			},
			reason: "does not exist",
		},
		{
			name: "unknown cardinality",
			mutate: func(models []Model) []Model {
				models[0].Relationships[0].Cardinality = "many-to-many"
				return models
			},
			reason: "cardinality",
		},
		{
			name: "empty mapping",
			mutate: func(models []Model) []Model {
				models[0].Relationships[0].Mapping = nil
				return models
			},
			reason: "empty",
		},
		{
			name: "unknown local field",
			mutate: func(models []Model) []Model {
				models[0].Relationships[0].Mapping = []KeyPair{{Local: "nope", Foreign: "user_id"}}
				return models
			},
			reason: "local field",
		},
		{
			name: "unknown foreign field",
			mutate: func(models []Model) []Model {
				models[0].Relationships[0].Mapping = []KeyPair{{Local: "id", Foreign: "nope"}}
				return models
			},
			reason: "foreign field",
		},
		{
			name: "unknown inverse",
			mutate: func(models []Model) []Model {
				models[0].Relationships[0].Inverse = "nope"
				return models
			},
			reason: "inverse",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.mutate(validModels()))
			var relErr *AmbiguousRelationshipError
			require.ErrorAs(t, err, &relErr)
			assert.Contains(t, relErr.Reason, tc.reason)
		})
	}
}
