// Package planner converts filter trees and query arguments into
// parameterized SQL. All values travel as placeholders; client input never
// reaches SQL text.
package planner

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"model-graphql/internal/model"
	"model-graphql/internal/sqlutil"
)

// TranslateWhere compiles a filter tree for the given model into a squirrel
// condition. A nil or empty tree returns a nil condition, meaning no WHERE
// clause. Translation is deterministic: keys are processed in sorted order.
func TranslateWhere(reg *model.Registry, m *model.Model, where map[string]interface{}) (sq.Sqlizer, error) {
	if len(where) == 0 {
		return nil, nil
	}
	state := &translateState{registry: reg}
	return state.translate(m, "", where, "")
}

// matchAll and matchNone are the neutral elements of conjunction and
// disjunction; empty _and/_or lists compile to them explicitly.
func matchAll() sq.Sqlizer  { return sq.Expr("(1 = 1)") }
func matchNone() sq.Sqlizer { return sq.Expr("(1 = 0)") }

type translateState struct {
	registry     *model.Registry
	aliasCounter int
}

func (s *translateState) nextAlias(prefix string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(prefix), "`", "")
	if normalized == "" {
		normalized = "rel"
	}
	s.aliasCounter++
	return fmt.Sprintf("__%s_%d", normalized, s.aliasCounter)
}

// translate recursively compiles one filter object. When alias is non-empty,
// column references are qualified as alias.column. A nil result means the
// object imposed no condition (matches every row).
func (s *translateState) translate(
	m *model.Model,
	alias string,
	where map[string]interface{},
	path string,
) (sq.Sqlizer, error) {
	conditions := []sq.Sqlizer{}
	keys := make([]string, 0, len(where))
	for key := range where {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := where[key]
		keyPath := joinPath(path, key)

		switch key {
		case "_and":
			cond, err := s.translateConjunction(m, alias, value, keyPath, false)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, cond)

		case "_or":
			cond, err := s.translateConjunction(m, alias, value, keyPath, true)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, cond)

		case "_not":
			inner, ok := value.(map[string]interface{})
			if !ok {
				return nil, &InvalidFilterShapeError{Path: keyPath, Reason: "_not must be an object"}
			}
			cond, err := s.translate(m, alias, inner, keyPath)
			if err != nil {
				return nil, err
			}
			negated, err := negate(cond)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, negated)

		default:
			if field, ok := m.Field(key); ok {
				filterMap, ok := value.(map[string]interface{})
				if !ok {
					return nil, &InvalidFilterShapeError{Path: keyPath, Reason: "field filter must be an object"}
				}
				fieldConds, err := translateFieldFilter(field, alias, filterMap)
				if err != nil {
					return nil, err
				}
				conditions = append(conditions, fieldConds...)
				continue
			}

			rel, ok := m.Relationship(key)
			if !ok {
				return nil, &UnknownFieldError{Model: m.Name, Field: key}
			}
			nested, ok := value.(map[string]interface{})
			if !ok {
				return nil, &InvalidFilterShapeError{Path: keyPath, Reason: "relationship filter must be an object"}
			}
			cond, err := s.translateRelationshipFilter(m, alias, rel, nested, keyPath)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, cond)
		}
	}

	if len(conditions) == 0 {
		return nil, nil
	}
	if len(conditions) == 1 {
		return conditions[0], nil
	}
	return sq.And(conditions), nil
}

// translateConjunction handles _and (disjunct=false) and _or (disjunct=true).
// Empty lists compile to the combinator's identity: _and([]) is true, _or([])
// is false.
func (s *translateState) translateConjunction(
	m *model.Model,
	alias string,
	value interface{},
	path string,
	disjunct bool,
) (sq.Sqlizer, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, &InvalidFilterShapeError{Path: path, Reason: "value must be a list"}
	}

	if len(items) == 0 {
		if disjunct {
			return matchNone(), nil
		}
		return matchAll(), nil
	}

	parts := make([]sq.Sqlizer, 0, len(items))
	for i, item := range items {
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, &InvalidFilterShapeError{
				Path:   fmt.Sprintf("%s[%d]", path, i),
				Reason: "list items must be objects",
			}
		}
		cond, err := s.translate(m, alias, itemMap, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if cond == nil {
			// An empty object matches everything: identity for AND,
			// absorbing for OR.
			if disjunct {
				return matchAll(), nil
			}
			continue
		}
		parts = append(parts, cond)
	}

	if len(parts) == 0 {
		return matchAll(), nil
	}
	if disjunct {
		return sq.Or(parts), nil
	}
	return sq.And(parts), nil
}

// translateRelationshipFilter compiles a nested filter on a related model into
// a correlated EXISTS sub-query. Nesting recurses without depth limit, so a
// filter can traverse relationships of relationships.
func (s *translateState) translateRelationshipFilter(
	m *model.Model,
	outerAlias string,
	rel *model.Relationship,
	nested map[string]interface{},
	path string,
) (sq.Sqlizer, error) {
	target, ok := s.registry.Model(rel.Target)
	if !ok {
		return nil, fmt.Errorf("relationship %s.%s: target model %q not registered", m.Name, rel.Name, rel.Target)
	}

	outerRef := outerAlias
	if outerRef == "" {
		// Root-level filters correlate through the table name so that
		// sub-query column references stay unambiguous.
		outerRef = m.Name
	}

	targetAlias := s.nextAlias(target.Name)
	builder := sq.Select("1").From(fmt.Sprintf(
		"%s AS %s",
		sqlutil.QuoteIdentifier(target.Name),
		sqlutil.QuoteIdentifier(targetAlias),
	))
	for _, pair := range rel.Mapping {
		builder = builder.Where(sq.Expr(fmt.Sprintf(
			"%s = %s",
			sqlutil.QualifyColumn(targetAlias, pair.Foreign),
			sqlutil.QualifyColumn(outerRef, pair.Local),
		)))
	}

	if len(nested) > 0 {
		nestedCond, err := s.translate(target, targetAlias, nested, path)
		if err != nil {
			return nil, err
		}
		if nestedCond != nil {
			builder = builder.Where(nestedCond)
		}
	}

	subquery, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	return sq.Expr(fmt.Sprintf("EXISTS (%s)", subquery), args...), nil
}

// translateFieldFilter compiles the operator map of one field filter.
// Operators are processed in sorted order and gated by the field's kind.
func translateFieldFilter(field *model.Field, alias string, filterMap map[string]interface{}) ([]sq.Sqlizer, error) {
	quoted := sqlutil.QuoteIdentifier(field.Name)
	if alias != "" {
		quoted = sqlutil.QualifyColumn(alias, field.Name)
	}

	ops := make([]string, 0, len(filterMap))
	for op := range filterMap {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	conditions := []sq.Sqlizer{}
	for _, op := range ops {
		value := filterMap[op]
		switch op {
		case "_eq":
			conditions = append(conditions, sq.Eq{quoted: value})
		case "_neq":
			conditions = append(conditions, sq.NotEq{quoted: value})
		case "_gt", "_gte", "_lt", "_lte":
			if !field.Kind.Ordered() {
				return nil, &InvalidFilterOperatorError{
					Field:    field.Name,
					Operator: op,
					Reason:   fmt.Sprintf("kind %s does not support ordering", field.Kind),
				}
			}
			switch op {
			case "_gt":
				conditions = append(conditions, sq.Gt{quoted: value})
			case "_gte":
				conditions = append(conditions, sq.GtOrEq{quoted: value})
			case "_lt":
				conditions = append(conditions, sq.Lt{quoted: value})
			case "_lte":
				conditions = append(conditions, sq.LtOrEq{quoted: value})
			}
		case "_in", "_nin":
			arr, ok := value.([]interface{})
			if !ok {
				return nil, &InvalidFilterOperatorError{Field: field.Name, Operator: op, Reason: "operand must be a list"}
			}
			if len(arr) == 0 {
				// Empty membership sets are decided without touching
				// the store: nothing is in them.
				if op == "_in" {
					conditions = append(conditions, matchNone())
				} else {
					conditions = append(conditions, matchAll())
				}
				continue
			}
			if op == "_in" {
				conditions = append(conditions, sq.Eq{quoted: arr})
			} else {
				conditions = append(conditions, sq.NotEq{quoted: arr})
			}
		case "_like", "_ilike":
			if !field.Kind.Text() {
				return nil, &InvalidFilterOperatorError{
					Field:    field.Name,
					Operator: op,
					Reason:   fmt.Sprintf("kind %s does not support pattern matching", field.Kind),
				}
			}
			pattern, ok := value.(string)
			if !ok {
				return nil, &InvalidFilterOperatorError{Field: field.Name, Operator: op, Reason: "operand must be a string"}
			}
			if op == "_like" {
				conditions = append(conditions, sq.Like{quoted: pattern})
			} else {
				conditions = append(conditions, sq.Expr(fmt.Sprintf("UPPER(%s) LIKE UPPER(?)", quoted), pattern))
			}
		case "_is_null":
			boolVal, ok := value.(bool)
			if !ok {
				return nil, &InvalidFilterOperatorError{Field: field.Name, Operator: op, Reason: "operand must be a boolean"}
			}
			if boolVal {
				conditions = append(conditions, sq.Eq{quoted: nil})
			} else {
				conditions = append(conditions, sq.NotEq{quoted: nil})
			}
		default:
			return nil, &InvalidFilterOperatorError{Field: field.Name, Operator: op, Reason: "unknown operator"}
		}
	}

	return conditions, nil
}

// negate wraps a condition in NOT. A nil condition matches everything, so its
// negation matches nothing.
func negate(cond sq.Sqlizer) (sq.Sqlizer, error) {
	if cond == nil {
		return matchNone(), nil
	}
	sqlStr, args, err := cond.ToSql()
	if err != nil {
		return nil, err
	}
	return sq.Expr(fmt.Sprintf("NOT (%s)", sqlStr), args...), nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
