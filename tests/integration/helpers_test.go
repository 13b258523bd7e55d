package integration

import (
	"context"
	"database/sql"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"model-graphql/internal/gqltype"
	"model-graphql/internal/model"
	"model-graphql/internal/schema"
	"model-graphql/internal/session"
)

// testEnv runs compiled schemas against an in-memory SQLite store. The
// generated SQL uses backtick quoting and placeholder parameters, both of
// which SQLite accepts, so the full query path is exercised without a server.
type testEnv struct {
	db       *sql.DB
	compiled *schema.Compiled
}

func newTestEnv(t *testing.T, cfg schema.Config) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection keeps every statement on the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ddl := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT,
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT '2024-01-01 00:00:00'
		)`,
		`CREATE TABLE posts (
			id INTEGER PRIMARY KEY,
			user_id INTEGER,
			title TEXT NOT NULL,
			published BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE comments (
			id INTEGER PRIMARY KEY,
			post_id INTEGER NOT NULL,
			body TEXT NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	compiled, err := schema.Compile(testDescriptors(), cfg)
	require.NoError(t, err)

	return &testEnv{db: db, compiled: compiled}
}

func testDescriptors() []model.Model {
	return []model.Model{
		{
			Name: "users",
			Fields: []model.Field{
				{Name: "id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "username", Kind: gqltype.KindString},
				{Name: "email", Kind: gqltype.KindString, Nullable: true},
				{Name: "active", Kind: gqltype.KindBoolean},
				{Name: "created_at", Kind: gqltype.KindTimestamp},
			},
			Relationships: []model.Relationship{
				{
					Name:        "posts",
					Target:      "posts",
					Cardinality: model.ToMany,
					Mapping:     []model.KeyPair{{Local: "id", Foreign: "user_id"}},
					Inverse:     "author",
				},
			},
		},
		{
			Name: "posts",
			Fields: []model.Field{
				{Name: "id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "user_id", Kind: gqltype.KindInt, Nullable: true},
				{Name: "title", Kind: gqltype.KindString},
				{Name: "published", Kind: gqltype.KindBoolean},
			},
			Relationships: []model.Relationship{
				{
					Name:        "author",
					Target:      "users",
					Cardinality: model.ToOne,
					Mapping:     []model.KeyPair{{Local: "user_id", Foreign: "id"}},
					Inverse:     "posts",
				},
				{
					Name:        "comments",
					Target:      "comments",
					Cardinality: model.ToMany,
					Mapping:     []model.KeyPair{{Local: "id", Foreign: "post_id"}},
				},
			},
		},
		{
			Name: "comments",
			Fields: []model.Field{
				{Name: "id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "post_id", Kind: gqltype.KindInt},
				{Name: "body", Kind: gqltype.KindString},
			},
		},
	}
}

func (env *testEnv) seed(t *testing.T, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := env.db.Exec(stmt)
		require.NoError(t, err, "seed statement: %s", stmt)
	}
}

func seedBasic(t *testing.T, env *testEnv) {
	env.seed(t,
		`INSERT INTO users (id, username, email, active, created_at) VALUES
			(1, 'alice', 'alice@example.com', 1, '2024-01-10 09:00:00'),
			(2, 'bob', NULL, 1, '2024-02-20 10:30:00'),
			(3, 'carol', 'carol@example.com', 0, '2024-03-05 16:45:00')`,
		`INSERT INTO posts (id, user_id, title, published) VALUES
			(10, 1, 'first post', 1),
			(11, 1, 'second post', 0),
			(12, 2, 'hello world', 1),
			(13, NULL, 'orphan post', 1)`,
		`INSERT INTO comments (id, post_id, body) VALUES
			(100, 10, 'nice one'),
			(101, 10, 'spam spam spam'),
			(102, 12, 'thanks')`,
	)
}

// execute runs a GraphQL request against the compiled schema with a session
// bound to the test store.
func (env *testEnv) execute(t *testing.T, query string, variables map[string]interface{}) *graphql.Result {
	t.Helper()
	ctx := session.WithSession(context.Background(), session.NewDBSession(env.db))
	return graphql.Do(graphql.Params{
		Schema:         env.compiled.Schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
}

func requireNoErrors(t *testing.T, result *graphql.Result) map[string]interface{} {
	t.Helper()
	require.Empty(t, result.Errors, "unexpected GraphQL errors: %v", result.Errors)
	data, ok := result.Data.(map[string]interface{})
	require.True(t, ok, "expected object data, got %T", result.Data)
	return data
}

func rowsOf(t *testing.T, data map[string]interface{}, field string) []interface{} {
	t.Helper()
	rows, ok := data[field].([]interface{})
	require.True(t, ok, "field %q is %T, expected list", field, data[field])
	return rows
}

func rowAt(t *testing.T, rows []interface{}, i int) map[string]interface{} {
	t.Helper()
	require.Greater(t, len(rows), i)
	row, ok := rows[i].(map[string]interface{})
	require.True(t, ok)
	return row
}
