// Package resolver implements the generic field resolvers behind every
// generated root field, relationship field, and mutation. Resolvers carry no
// per-model code: the model descriptor and the planner decide what runs.
package resolver

import (
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"

	"model-graphql/internal/model"
	"model-graphql/internal/planner"
	"model-graphql/internal/session"
)

// Resolver builds graphql.FieldResolveFn values for a registry of models.
type Resolver struct {
	registry     *model.Registry
	defaultLimit int
	logger       *slog.Logger
}

// New creates a Resolver. defaultLimit, when positive, is applied to list
// fields whose query supplies no limit argument.
func New(reg *model.Registry, defaultLimit int, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		registry:     reg,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// List resolves a root list field: filter, order, paginate, scan.
func (r *Resolver) List(m *model.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		sess, err := sessionFrom(p)
		if err != nil {
			return nil, err
		}

		where := argObject(p.Args, "where")
		order, err := planner.ParseOrderBy(m, p.Args)
		if err != nil {
			return nil, err
		}
		page, err := planner.ParsePage(p.Args, r.defaultLimit)
		if err != nil {
			return nil, err
		}

		query, args, err := planner.BuildList(r.registry, m, where, order, page)
		if err != nil {
			return nil, err
		}

		results, err := r.queryRows(p, m.Name, sess, query, args)
		if err != nil {
			return nil, err
		}
		return results, nil
	}
}

// ByPK resolves a by-primary-key lookup. A missing row is null, never an
// error. More than one row for a full primary key means the store and the
// descriptors disagree, which is surfaced as AmbiguousResultError.
func (r *Resolver) ByPK(m *model.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		sess, err := sessionFrom(p)
		if err != nil {
			return nil, err
		}

		query, args, err := planner.BuildByPK(m, p.Args)
		if err != nil {
			return nil, err
		}

		results, err := r.queryRows(p, m.Name, sess, query, args)
		if err != nil {
			return nil, err
		}

		switch len(results) {
		case 0:
			return nil, nil
		case 1:
			return results[0], nil
		default:
			return nil, &AmbiguousResultError{Model: m.Name, Count: len(results)}
		}
	}
}

// ToOne resolves a to-one relationship field from the parent row's local key
// values. A null key value short-circuits to null without touching the store.
func (r *Resolver) ToOne(parent *model.Model, rel *model.Relationship) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		parentRow, ok := p.Source.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid source type for %s.%s", parent.Name, rel.Name)
		}
		for _, pair := range rel.Mapping {
			if parentRow[pair.Local] == nil {
				return nil, nil
			}
		}

		sess, err := sessionFrom(p)
		if err != nil {
			return nil, err
		}

		query, args, err := planner.BuildRelated(r.registry, parent, rel, parentRow, nil, nil, planner.Page{})
		if err != nil {
			return nil, err
		}

		results, err := r.queryRows(p, rel.Target, sess, query, args)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, nil
		}
		return results[0], nil
	}
}

// ToMany resolves a to-many relationship field with its own nested where,
// order_by, and pagination arguments. A null key value yields an empty list.
func (r *Resolver) ToMany(parent *model.Model, rel *model.Relationship) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		parentRow, ok := p.Source.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid source type for %s.%s", parent.Name, rel.Name)
		}
		for _, pair := range rel.Mapping {
			if parentRow[pair.Local] == nil {
				return []map[string]interface{}{}, nil
			}
		}

		sess, err := sessionFrom(p)
		if err != nil {
			return nil, err
		}

		target, ok := r.registry.Model(rel.Target)
		if !ok {
			return nil, fmt.Errorf("relationship %s.%s: target model %q not registered", parent.Name, rel.Name, rel.Target)
		}

		where := argObject(p.Args, "where")
		order, err := planner.ParseOrderBy(target, p.Args)
		if err != nil {
			return nil, err
		}
		page, err := planner.ParsePage(p.Args, r.defaultLimit)
		if err != nil {
			return nil, err
		}

		query, args, err := planner.BuildRelated(r.registry, parent, rel, parentRow, where, order, page)
		if err != nil {
			return nil, err
		}

		results, err := r.queryRows(p, rel.Target, sess, query, args)
		if err != nil {
			return nil, err
		}
		return results, nil
	}
}

// queryRows runs a select through the session and scans the result set.
// A query with no rows yields an empty, non-nil slice.
func (r *Resolver) queryRows(
	p graphql.ResolveParams,
	modelName string,
	sess session.Session,
	query string,
	args []interface{},
) ([]map[string]interface{}, error) {
	rows, err := sess.QueryContext(p.Context, query, args...)
	if err != nil {
		return nil, r.storeError(p, modelName, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results, err := scanRows(rows)
	if err != nil {
		return nil, r.storeError(p, modelName, err)
	}
	if results == nil {
		results = []map[string]interface{}{}
	}
	return results, nil
}

func sessionFrom(p graphql.ResolveParams) (session.Session, error) {
	sess, ok := session.FromContext(p.Context)
	if !ok {
		return nil, fmt.Errorf("no store session in request context")
	}
	return sess, nil
}

func argObject(args map[string]interface{}, name string) map[string]interface{} {
	obj, _ := args[name].(map[string]interface{})
	return obj
}
