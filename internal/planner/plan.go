package planner

import (
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"

	"model-graphql/internal/model"
	"model-graphql/internal/sqlutil"
)

// selectColumns returns the model's field names, quoted, in descriptor order.
// Stable column order keeps generated SQL deterministic for the same schema.
func selectColumns(m *model.Model) []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = sqlutil.QuoteIdentifier(f.Name)
	}
	return cols
}

func applyOrder(builder sq.SelectBuilder, order []OrderClause) sq.SelectBuilder {
	for _, clause := range order {
		direction := " ASC"
		if clause.Desc {
			direction = " DESC"
		}
		builder = builder.OrderBy(sqlutil.QuoteIdentifier(clause.Field) + direction)
	}
	return builder
}

func applyPage(builder sq.SelectBuilder, page Page) sq.SelectBuilder {
	if page.Limit != nil {
		builder = builder.Limit(uint64(*page.Limit))
	} else if page.Offset != nil {
		// SQL has no bare OFFSET; an absent limit means unbounded, so a
		// sentinel LIMIT keeps offset-only queries valid.
		builder = builder.Limit(math.MaxInt64)
	}
	if page.Offset != nil {
		builder = builder.Offset(uint64(*page.Offset))
	}
	return builder
}

// BuildList produces the SELECT for a root list field: optional filter,
// ordering, and pagination over all of the model's columns.
func BuildList(
	reg *model.Registry,
	m *model.Model,
	where map[string]interface{},
	order []OrderClause,
	page Page,
) (string, []interface{}, error) {
	cond, err := TranslateWhere(reg, m, where)
	if err != nil {
		return "", nil, err
	}

	builder := sq.Select(selectColumns(m)...).From(sqlutil.QuoteIdentifier(m.Name))
	if cond != nil {
		builder = builder.Where(cond)
	}
	builder = applyOrder(builder, order)
	builder = applyPage(builder, page)

	return builder.PlaceholderFormat(sq.Question).ToSql()
}

// BuildByPK produces the SELECT for a by-primary-key lookup. Every primary
// key field must be present in args; the schema layer declares them as
// required arguments, so a missing one here means a caller bug.
func BuildByPK(m *model.Model, args map[string]interface{}) (string, []interface{}, error) {
	pk := m.PrimaryKey()
	if len(pk) == 0 {
		return "", nil, ErrNoPrimaryKey
	}

	eq := sq.Eq{}
	for _, field := range pk {
		value, ok := args[field.Name]
		if !ok {
			return "", nil, fmt.Errorf("missing primary key argument %q", field.Name)
		}
		eq[sqlutil.QuoteIdentifier(field.Name)] = value
	}

	builder := sq.Select(selectColumns(m)...).
		From(sqlutil.QuoteIdentifier(m.Name)).
		Where(eq)

	return builder.PlaceholderFormat(sq.Question).ToSql()
}

// BuildRelated produces the SELECT for a relationship field: the target
// model's rows correlated to one parent row through the key mapping, with the
// nested filter, ordering, and pagination applied on top. Callers must
// short-circuit when any local key value is null; a null key matches nothing.
func BuildRelated(
	reg *model.Registry,
	parent *model.Model,
	rel *model.Relationship,
	parentRow map[string]interface{},
	where map[string]interface{},
	order []OrderClause,
	page Page,
) (string, []interface{}, error) {
	target, ok := reg.Model(rel.Target)
	if !ok {
		return "", nil, fmt.Errorf("relationship %s.%s: target model %q not registered", parent.Name, rel.Name, rel.Target)
	}

	keyEq := sq.Eq{}
	for _, pair := range rel.Mapping {
		value, ok := parentRow[pair.Local]
		if !ok {
			return "", nil, fmt.Errorf("relationship %s.%s: parent row is missing key field %q", parent.Name, rel.Name, pair.Local)
		}
		keyEq[sqlutil.QuoteIdentifier(pair.Foreign)] = value
	}

	cond, err := TranslateWhere(reg, target, where)
	if err != nil {
		return "", nil, err
	}

	builder := sq.Select(selectColumns(target)...).
		From(sqlutil.QuoteIdentifier(target.Name)).
		Where(keyEq)
	if cond != nil {
		builder = builder.Where(cond)
	}
	builder = applyOrder(builder, order)
	builder = applyPage(builder, page)

	return builder.PlaceholderFormat(sq.Question).ToSql()
}

// BuildSelectWhere produces a full-column SELECT matching a prebuilt
// condition. Mutations use it to return affected rows. A nil condition
// matches every row.
func BuildSelectWhere(m *model.Model, cond sq.Sqlizer) (string, []interface{}, error) {
	builder := sq.Select(selectColumns(m)...).From(sqlutil.QuoteIdentifier(m.Name))
	if cond != nil {
		builder = builder.Where(cond)
	}
	return builder.PlaceholderFormat(sq.Question).ToSql()
}

// BuildPKSelect produces a SELECT of only the primary key columns matching a
// condition. Used by update/delete to pin down affected rows before writing.
func BuildPKSelect(m *model.Model, cond sq.Sqlizer) (string, []interface{}, error) {
	pk := m.PrimaryKey()
	if len(pk) == 0 {
		return "", nil, ErrNoPrimaryKey
	}

	cols := make([]string, len(pk))
	for i, field := range pk {
		cols[i] = sqlutil.QuoteIdentifier(field.Name)
	}

	builder := sq.Select(cols...).From(sqlutil.QuoteIdentifier(m.Name))
	if cond != nil {
		builder = builder.Where(cond)
	}

	return builder.PlaceholderFormat(sq.Question).ToSql()
}

// PKCondition builds a condition matching exactly the given rows by primary
// key. No rows means no matches.
func PKCondition(m *model.Model, rows []map[string]interface{}) (sq.Sqlizer, error) {
	pk := m.PrimaryKey()
	if len(pk) == 0 {
		return nil, ErrNoPrimaryKey
	}
	if len(rows) == 0 {
		return matchNone(), nil
	}

	if len(pk) == 1 {
		quoted := sqlutil.QuoteIdentifier(pk[0].Name)
		values := make([]interface{}, len(rows))
		for i, row := range rows {
			values[i] = row[pk[0].Name]
		}
		return sq.Eq{quoted: values}, nil
	}

	perRow := make([]sq.Sqlizer, len(rows))
	for i, row := range rows {
		eq := sq.Eq{}
		for _, field := range pk {
			eq[sqlutil.QuoteIdentifier(field.Name)] = row[field.Name]
		}
		perRow[i] = eq
	}
	return sq.Or(perRow), nil
}
