package resolver

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"model-graphql/internal/gqltype"
	"model-graphql/internal/model"
	"model-graphql/internal/planner"
)

// Insert resolves insert_<model>: write the object, then read the stored row
// back by primary key so defaults and generated values round-trip.
func (r *Resolver) Insert(m *model.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		sess, err := sessionFrom(p)
		if err != nil {
			return nil, err
		}

		object := argObject(p.Args, "object")
		query, args, err := planner.BuildInsert(m, object)
		if err != nil {
			return nil, err
		}

		result, err := sess.ExecContext(p.Context, query, args...)
		if err != nil {
			return nil, r.storeError(p, m.Name, err)
		}

		pkArgs := make(map[string]interface{}, len(m.PrimaryKey()))
		for _, field := range m.PrimaryKey() {
			if value, ok := object[field.Name]; ok {
				pkArgs[field.Name] = value
				continue
			}
			// A single integer key omitted from the payload is
			// store-generated.
			if len(m.PrimaryKey()) == 1 && field.Kind == gqltype.KindInt {
				id, err := result.LastInsertId()
				if err != nil {
					return nil, r.storeError(p, m.Name, err)
				}
				pkArgs[field.Name] = id
				continue
			}
			return nil, fmt.Errorf("insert into %q must supply primary key field %q", m.Name, field.Name)
		}

		selectSQL, selectArgs, err := planner.BuildByPK(m, pkArgs)
		if err != nil {
			return nil, err
		}
		rows, err := r.queryRows(p, m.Name, sess, selectSQL, selectArgs)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("inserted row in %q not found on read-back", m.Name)
		}
		return rows[0], nil
	}
}

// Update resolves update_<model>: pin down the matched rows by primary key,
// apply the set payload to exactly those rows, and return them re-read. The
// store contract assumes no RETURNING support.
func (r *Resolver) Update(m *model.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		sess, err := sessionFrom(p)
		if err != nil {
			return nil, err
		}

		where := argObject(p.Args, "where")
		cond, err := planner.TranslateWhere(r.registry, m, where)
		if err != nil {
			return nil, err
		}

		pkSQL, pkArgs, err := planner.BuildPKSelect(m, cond)
		if err != nil {
			return nil, err
		}
		matched, err := r.queryRows(p, m.Name, sess, pkSQL, pkArgs)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			return []map[string]interface{}{}, nil
		}

		pkCond, err := planner.PKCondition(m, matched)
		if err != nil {
			return nil, err
		}

		set := argObject(p.Args, "set")
		updateSQL, updateArgs, err := planner.BuildUpdate(m, set, pkCond)
		if err != nil {
			return nil, err
		}
		if _, err := sess.ExecContext(p.Context, updateSQL, updateArgs...); err != nil {
			return nil, r.storeError(p, m.Name, err)
		}

		selectSQL, selectArgs, err := planner.BuildSelectWhere(m, pkCond)
		if err != nil {
			return nil, err
		}
		return r.queryRows(p, m.Name, sess, selectSQL, selectArgs)
	}
}

// Delete resolves delete_<model>: read the matched rows, delete exactly those
// primary keys, and return the pre-delete snapshots.
func (r *Resolver) Delete(m *model.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		sess, err := sessionFrom(p)
		if err != nil {
			return nil, err
		}

		where := argObject(p.Args, "where")
		cond, err := planner.TranslateWhere(r.registry, m, where)
		if err != nil {
			return nil, err
		}

		selectSQL, selectArgs, err := planner.BuildSelectWhere(m, cond)
		if err != nil {
			return nil, err
		}
		matched, err := r.queryRows(p, m.Name, sess, selectSQL, selectArgs)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			return []map[string]interface{}{}, nil
		}

		pkCond, err := planner.PKCondition(m, matched)
		if err != nil {
			return nil, err
		}
		deleteSQL, deleteArgs, err := planner.BuildDelete(m, pkCond)
		if err != nil {
			return nil, err
		}
		if _, err := sess.ExecContext(p.Context, deleteSQL, deleteArgs...); err != nil {
			return nil, r.storeError(p, m.Name, err)
		}

		return matched, nil
	}
}
