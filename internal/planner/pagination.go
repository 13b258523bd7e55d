package planner

import (
	"fmt"
	"strings"

	"model-graphql/internal/model"
)

// Page carries limit/offset for a list query. Nil means the argument was not
// supplied; absent limit is unbounded, absent offset is zero.
type Page struct {
	Limit  *int
	Offset *int
}

// OrderClause is one entry of an order_by list.
type OrderClause struct {
	Field string
	Desc  bool
}

// ParsePage extracts limit/offset from coerced field arguments. The scalar
// layer already rejects negative values; this re-checks so the planner is
// safe to call with hand-built argument maps.
func ParsePage(args map[string]interface{}, defaultLimit int) (Page, error) {
	page := Page{}

	if raw, ok := args["limit"]; ok && raw != nil {
		limit, ok := raw.(int)
		if !ok || limit < 0 {
			return Page{}, fmt.Errorf("limit must be a non-negative integer")
		}
		page.Limit = &limit
	} else if defaultLimit > 0 {
		limit := defaultLimit
		page.Limit = &limit
	}

	if raw, ok := args["offset"]; ok && raw != nil {
		offset, ok := raw.(int)
		if !ok || offset < 0 {
			return Page{}, fmt.Errorf("offset must be a non-negative integer")
		}
		page.Offset = &offset
	}

	return page, nil
}

// ParseOrderBy extracts and validates the order_by argument: a list of
// single-field `{field: ASC|DESC}` objects applied left to right. Absent
// order_by returns nil, leaving row order store-defined.
func ParseOrderBy(m *model.Model, args map[string]interface{}) ([]OrderClause, error) {
	raw, ok := args["order_by"]
	if !ok || raw == nil {
		return nil, nil
	}

	entries, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("order_by must be a list")
	}

	clauses := make([]OrderClause, 0, len(entries))
	for i, entry := range entries {
		entryMap, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("order_by[%d] must be an object", i)
		}
		if len(entryMap) != 1 {
			return nil, fmt.Errorf("order_by[%d] must contain exactly one field", i)
		}
		for fieldName, dirValue := range entryMap {
			if _, ok := m.Field(fieldName); !ok {
				return nil, &UnknownFieldError{Model: m.Name, Field: fieldName}
			}
			direction, ok := dirValue.(string)
			if !ok {
				return nil, fmt.Errorf("order_by[%d].%s direction must be ASC or DESC", i, fieldName)
			}
			switch strings.ToUpper(direction) {
			case "ASC":
				clauses = append(clauses, OrderClause{Field: fieldName})
			case "DESC":
				clauses = append(clauses, OrderClause{Field: fieldName, Desc: true})
			default:
				return nil, fmt.Errorf("order_by[%d].%s direction must be ASC or DESC", i, fieldName)
			}
		}
	}

	return clauses, nil
}
