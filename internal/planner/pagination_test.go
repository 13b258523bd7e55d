package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage_Defaults(t *testing.T) {
	page, err := ParsePage(map[string]interface{}{}, 0)
	require.NoError(t, err)
	assert.Nil(t, page.Limit)
	assert.Nil(t, page.Offset)
}

func TestParsePage_DefaultLimitApplies(t *testing.T) {
	page, err := ParsePage(map[string]interface{}{}, 50)
	require.NoError(t, err)
	require.NotNil(t, page.Limit)
	assert.Equal(t, 50, *page.Limit)
}

func TestParsePage_ExplicitLimitWinsOverDefault(t *testing.T) {
	page, err := ParsePage(map[string]interface{}{"limit": 5, "offset": 10}, 50)
	require.NoError(t, err)
	require.NotNil(t, page.Limit)
	require.NotNil(t, page.Offset)
	assert.Equal(t, 5, *page.Limit)
	assert.Equal(t, 10, *page.Offset)
}

func TestParsePage_ZeroLimitIsValid(t *testing.T) {
	page, err := ParsePage(map[string]interface{}{"limit": 0}, 50)
	require.NoError(t, err)
	require.NotNil(t, page.Limit)
	assert.Equal(t, 0, *page.Limit)
}

func TestParsePage_RejectsNegatives(t *testing.T) {
	_, err := ParsePage(map[string]interface{}{"limit": -1}, 0)
	require.Error(t, err)

	_, err = ParsePage(map[string]interface{}{"offset": -1}, 0)
	require.Error(t, err)
}

func TestParseOrderBy_Absent(t *testing.T) {
	reg := testRegistry(t)
	users := mustModel(t, reg, "users")

	clauses, err := ParseOrderBy(users, map[string]interface{}{})
	require.NoError(t, err)
	assert.Nil(t, clauses)
}

func TestParseOrderBy_MultipleClausesKeepOrder(t *testing.T) {
	reg := testRegistry(t)
	users := mustModel(t, reg, "users")

	clauses, err := ParseOrderBy(users, map[string]interface{}{
		"order_by": []interface{}{
			map[string]interface{}{"created_at": "DESC"},
			map[string]interface{}{"id": "ASC"},
		},
	})
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.Equal(t, OrderClause{Field: "created_at", Desc: true}, clauses[0])
	assert.Equal(t, OrderClause{Field: "id"}, clauses[1])
}

func TestParseOrderBy_UnknownField(t *testing.T) {
	reg := testRegistry(t)
	users := mustModel(t, reg, "users")

	_, err := ParseOrderBy(users, map[string]interface{}{
		"order_by": []interface{}{
			map[string]interface{}{"nope": "ASC"},
		},
	})
	var fieldErr *UnknownFieldError
	require.ErrorAs(t, err, &fieldErr)
}

func TestParseOrderBy_InvalidDirection(t *testing.T) {
	reg := testRegistry(t)
	users := mustModel(t, reg, "users")

	_, err := ParseOrderBy(users, map[string]interface{}{
		"order_by": []interface{}{
			map[string]interface{}{"id": "SIDEWAYS"},
		},
	})
	require.Error(t, err)
}

func TestParseOrderBy_OneFieldPerEntry(t *testing.T) {
	reg := testRegistry(t)
	users := mustModel(t, reg, "users")

	_, err := ParseOrderBy(users, map[string]interface{}{
		"order_by": []interface{}{
			map[string]interface{}{"id": "ASC", "username": "DESC"},
		},
	})
	require.Error(t, err)
}
