package resolver

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-graphql/internal/gqltype"
	"model-graphql/internal/model"
	"model-graphql/internal/session"
)

func testRegistry(t *testing.T) *model.Registry {
	t.Helper()
	reg, err := model.NewRegistry([]model.Model{
		{
			Name: "users",
			Fields: []model.Field{
				{Name: "id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "username", Kind: gqltype.KindString},
				{Name: "email", Kind: gqltype.KindString, Nullable: true},
			},
			Relationships: []model.Relationship{
				{
					Name:        "posts",
					Target:      "posts",
					Cardinality: model.ToMany,
					Mapping:     []model.KeyPair{{Local: "id", Foreign: "user_id"}},
				},
			},
		},
		{
			Name: "posts",
			Fields: []model.Field{
				{Name: "id", Kind: gqltype.KindInt, PrimaryKey: true},
				{Name: "user_id", Kind: gqltype.KindInt, Nullable: true},
				{Name: "title", Kind: gqltype.KindString},
			},
			Relationships: []model.Relationship{
				{
					Name:        "author",
					Target:      "users",
					Cardinality: model.ToOne,
					Mapping:     []model.KeyPair{{Local: "user_id", Foreign: "id"}},
				},
			},
		},
	})
	require.NoError(t, err)
	return reg
}

func mustModel(t *testing.T, reg *model.Registry, name string) *model.Model {
	t.Helper()
	m, ok := reg.Model(name)
	require.True(t, ok)
	return m
}

func newMockDB(t *testing.T) (session.Session, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return session.NewDBSession(db), mock, func() { _ = db.Close() }
}

func resolveParams(sess session.Session, args map[string]interface{}, source interface{}) graphql.ResolveParams {
	return graphql.ResolveParams{
		Args:    args,
		Source:  source,
		Context: session.WithSession(context.Background(), sess),
	}
}

const (
	userCols = "SELECT `id`, `username`, `email` FROM `users`"
	postCols = "SELECT `id`, `user_id`, `title` FROM `posts`"
)

func TestListResolver(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).
			AddRow(1, []byte("alice"), nil).
			AddRow(2, "bob", "bob@example.com"))

	result, err := r.List(users)(resolveParams(sess, nil, nil))
	require.NoError(t, err)

	rows, ok := result.([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 1, rows[0]["id"])
	assert.Equal(t, "alice", rows[0]["username"])
	assert.Nil(t, rows[0]["email"])
	assert.Equal(t, "bob@example.com", rows[1]["email"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListResolver_EmptyIsNonNilSlice(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))

	result, err := r.List(users)(resolveParams(sess, nil, nil))
	require.NoError(t, err)

	rows, ok := result.([]map[string]interface{})
	require.True(t, ok)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestListResolver_FilterAndPagination(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols+" WHERE `username` LIKE ? ORDER BY `id` DESC LIMIT 2 OFFSET 1")).
		WithArgs("a%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(9, "ana", nil))

	result, err := r.List(users)(resolveParams(sess, map[string]interface{}{
		"where": map[string]interface{}{
			"username": map[string]interface{}{"_like": "a%"},
		},
		"order_by": []interface{}{map[string]interface{}{"id": "DESC"}},
		"limit":    2,
		"offset":   1,
	}, nil))
	require.NoError(t, err)

	rows := result.([]map[string]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "ana", rows[0]["username"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListResolver_DefaultLimit(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 25, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols + " LIMIT 25")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))

	_, err := r.List(users)(resolveParams(sess, nil, nil))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestByPKResolver(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols+" WHERE `id` = ?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(7, "alice", nil))

	result, err := r.ByPK(users)(resolveParams(sess, map[string]interface{}{"id": 7}, nil))
	require.NoError(t, err)

	row, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, row["id"])
}

func TestByPKResolver_MissingRowIsNullNotError(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols+" WHERE `id` = ?")).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))

	result, err := r.ByPK(users)(resolveParams(sess, map[string]interface{}{"id": 404}, nil))
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestByPKResolver_MultipleRowsIsAmbiguous(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols+" WHERE `id` = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).
			AddRow(1, "alice", nil).
			AddRow(1, "alice2", nil))

	_, err := r.ByPK(users)(resolveParams(sess, map[string]interface{}{"id": 1}, nil))
	var ambErr *AmbiguousResultError
	require.ErrorAs(t, err, &ambErr)
	assert.Equal(t, "users", ambErr.Model)
	assert.Equal(t, 2, ambErr.Count)
}

func TestToOneResolver(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	posts := mustModel(t, reg, "posts")
	rel, ok := posts.Relationship("author")
	require.True(t, ok)
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols+" WHERE `id` = ?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(3, "carol", nil))

	parentRow := map[string]interface{}{"id": 10, "user_id": 3, "title": "hello"}
	result, err := r.ToOne(posts, rel)(resolveParams(sess, nil, parentRow))
	require.NoError(t, err)

	row := result.(map[string]interface{})
	assert.Equal(t, "carol", row["username"])
}

func TestToOneResolver_NullKeyShortCircuits(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	posts := mustModel(t, reg, "posts")
	rel, ok := posts.Relationship("author")
	require.True(t, ok)
	r := New(reg, 0, nil)

	parentRow := map[string]interface{}{"id": 10, "user_id": nil, "title": "orphan"}
	result, err := r.ToOne(posts, rel)(resolveParams(sess, nil, parentRow))
	require.NoError(t, err)
	assert.Nil(t, result)

	// No query must reach the store for a null key.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToManyResolver(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	rel, ok := users.Relationship("posts")
	require.True(t, ok)
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(postCols+" WHERE `user_id` = ? AND `title` LIKE ? ORDER BY `id` ASC LIMIT 10")).
		WithArgs(1, "go%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title"}).
			AddRow(5, 1, "go generics").
			AddRow(6, 1, "go modules"))

	parentRow := map[string]interface{}{"id": 1, "username": "alice", "email": nil}
	result, err := r.ToMany(users, rel)(resolveParams(sess, map[string]interface{}{
		"where": map[string]interface{}{
			"title": map[string]interface{}{"_like": "go%"},
		},
		"order_by": []interface{}{map[string]interface{}{"id": "ASC"}},
		"limit":    10,
	}, parentRow))
	require.NoError(t, err)

	rows := result.([]map[string]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "go generics", rows[0]["title"])
}

func TestToManyResolver_NullKeyYieldsEmptyList(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	rel, ok := users.Relationship("posts")
	require.True(t, ok)
	r := New(reg, 0, nil)

	parentRow := map[string]interface{}{"id": nil, "username": "ghost", "email": nil}
	result, err := r.ToMany(users, rel)(resolveParams(sess, nil, parentRow))
	require.NoError(t, err)

	rows, ok := result.([]map[string]interface{})
	require.True(t, ok)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreErrorsAreOpaque(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	driverErr := errors.New("Error 1146: Table 'app.users' doesn't exist near 'SELECT `id`'")
	mock.ExpectQuery(regexp.QuoteMeta(userCols)).WillReturnError(driverErr)

	_, err := r.List(users)(resolveParams(sess, nil, nil))
	require.Error(t, err)
	assert.EqualError(t, err, "store error while resolving users")
	assert.NotContains(t, err.Error(), "SELECT")
}

func TestStoreError_ContextCancellationPassesThrough(t *testing.T) {
	sess, mock, closeDB := newMockDB(t)
	defer closeDB()

	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta(userCols)).WillReturnError(context.Canceled)

	_, err := r.List(users)(resolveParams(sess, nil, nil))
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolver_NoSessionInContext(t *testing.T) {
	reg := testRegistry(t)
	users := mustModel(t, reg, "users")
	r := New(reg, 0, nil)

	_, err := r.List(users)(graphql.ResolveParams{Context: context.Background()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session")
}
