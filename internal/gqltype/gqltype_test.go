package gqltype

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"string", KindString},
		{"text", KindString},
		{"varchar", KindString},
		{"int", KindInt},
		{"INTEGER", KindInt},
		{"bigint", KindInt},
		{"float", KindFloat},
		{"decimal", KindFloat},
		{"bool", KindBoolean},
		{"boolean", KindBoolean},
		{"timestamp", KindTimestamp},
		{"datetime", KindTimestamp},
		{"id", KindID},
		{"uuid", KindID},
		{"json", KindJSON},
		{"jsonb", KindJSON},
		{" Timestamp ", KindTimestamp},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseKind(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseKind_Unsupported(t *testing.T) {
	_, err := ParseKind("geometry")
	var typeErr *UnsupportedColumnTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "geometry", typeErr.Kind)
}

func TestKindOrdered(t *testing.T) {
	assert.True(t, KindString.Ordered())
	assert.True(t, KindInt.Ordered())
	assert.True(t, KindFloat.Ordered())
	assert.True(t, KindTimestamp.Ordered())
	assert.False(t, KindBoolean.Ordered())
	assert.False(t, KindID.Ordered())
	assert.False(t, KindJSON.Ordered())
}

func TestKindText(t *testing.T) {
	assert.True(t, KindString.Text())
	assert.False(t, KindInt.Text())
	assert.False(t, KindID.Text())
}

func TestScalar(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
	}{
		{KindString, "String"},
		{KindInt, "Int"},
		{KindFloat, "Float"},
		{KindBoolean, "Boolean"},
		{KindTimestamp, "Timestamp"},
		{KindID, "ID"},
		{KindJSON, "JSON"},
	}
	for _, tc := range tests {
		scalar, err := Scalar(tc.kind)
		require.NoError(t, err)
		assert.Equal(t, tc.name, scalar.Name())
	}
}

func TestScalar_SharesIdentityAcrossCalls(t *testing.T) {
	first, err := Scalar(KindTimestamp)
	require.NoError(t, err)
	second, err := Scalar(KindTimestamp)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestScalar_UnknownKind(t *testing.T) {
	_, err := Scalar(Kind(99))
	var typeErr *UnsupportedColumnTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestMapScalar_Nullability(t *testing.T) {
	nullable, err := MapScalar(KindString, true)
	require.NoError(t, err)
	assert.Equal(t, graphql.String, nullable)

	required, err := MapScalar(KindString, false)
	require.NoError(t, err)
	nonNull, ok := required.(*graphql.NonNull)
	require.True(t, ok, "expected NonNull, got %T", required)
	assert.Equal(t, graphql.String, nonNull.OfType)
}

func TestFilterTypeName(t *testing.T) {
	assert.Equal(t, "StringFilter", KindString.FilterTypeName())
	assert.Equal(t, "IntFilter", KindInt.FilterTypeName())
	assert.Equal(t, "TimestampFilter", KindTimestamp.FilterTypeName())
	assert.Equal(t, "IDFilter", KindID.FilterTypeName())
}
