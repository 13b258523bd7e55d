package planner

import (
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"model-graphql/internal/model"
	"model-graphql/internal/sqlutil"
)

// BuildInsert produces the INSERT for one object. Keys must be field names of
// the model; columns are emitted in sorted order for determinism.
func BuildInsert(m *model.Model, object map[string]interface{}) (string, []interface{}, error) {
	if len(object) == 0 {
		return "", nil, fmt.Errorf("insert object for %q is empty", m.Name)
	}

	names := make([]string, 0, len(object))
	for name := range object {
		if _, ok := m.Field(name); !ok {
			return "", nil, &UnknownFieldError{Model: m.Name, Field: name}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]string, len(names))
	values := make([]interface{}, len(names))
	for i, name := range names {
		cols[i] = sqlutil.QuoteIdentifier(name)
		values[i] = object[name]
	}

	return sq.Insert(sqlutil.QuoteIdentifier(m.Name)).
		Columns(cols...).
		Values(values...).
		PlaceholderFormat(sq.Question).
		ToSql()
}

// BuildUpdate produces the UPDATE applying the set payload to rows matching
// cond. A nil cond updates every row, mirroring an absent where argument.
func BuildUpdate(m *model.Model, set map[string]interface{}, cond sq.Sqlizer) (string, []interface{}, error) {
	if len(set) == 0 {
		return "", nil, fmt.Errorf("update set for %q is empty", m.Name)
	}

	names := make([]string, 0, len(set))
	for name := range set {
		if _, ok := m.Field(name); !ok {
			return "", nil, &UnknownFieldError{Model: m.Name, Field: name}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	builder := sq.Update(sqlutil.QuoteIdentifier(m.Name))
	for _, name := range names {
		builder = builder.Set(sqlutil.QuoteIdentifier(name), set[name])
	}
	if cond != nil {
		builder = builder.Where(cond)
	}

	return builder.PlaceholderFormat(sq.Question).ToSql()
}

// BuildDelete produces the DELETE for rows matching cond. A nil cond deletes
// every row, mirroring an absent where argument.
func BuildDelete(m *model.Model, cond sq.Sqlizer) (string, []interface{}, error) {
	builder := sq.Delete(sqlutil.QuoteIdentifier(m.Name))
	if cond != nil {
		builder = builder.Where(cond)
	}
	return builder.PlaceholderFormat(sq.Question).ToSql()
}
