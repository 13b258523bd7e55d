package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-graphql/internal/schema"
)

func TestMutationsAbsentUnlessEnabled(t *testing.T) {
	env := newTestEnv(t, schema.Config{})
	seedBasic(t, env)

	result := env.execute(t, `
		mutation {
			insert_users(object: {username: "dave"}) { id }
		}
	`, nil)
	assert.NotEmpty(t, result.Errors)
}

func TestInsertMutation(t *testing.T) {
	env := newTestEnv(t, schema.Config{EnableMutations: true})
	seedBasic(t, env)

	data := requireNoErrors(t, env.execute(t, `
		mutation {
			insert_users(object: {username: "dave", email: "dave@example.com", active: true}) {
				id
				username
				email
			}
		}
	`, nil))

	row, ok := data["insert_users"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "dave", row["username"])
	assert.Equal(t, "dave@example.com", row["email"])
	// The generated key comes back from the read-after-write.
	assert.EqualValues(t, 4, row["id"])

	// The row is visible to subsequent queries.
	check := requireNoErrors(t, env.execute(t, `{ users_by_pk(id: 4) { username } }`, nil))
	fetched := check["users_by_pk"].(map[string]interface{})
	assert.Equal(t, "dave", fetched["username"])
}

func TestInsertMutation_StoreDefaultsRoundTrip(t *testing.T) {
	env := newTestEnv(t, schema.Config{EnableMutations: true})

	data := requireNoErrors(t, env.execute(t, `
		mutation {
			insert_users(object: {username: "eve"}) {
				username
				active
				created_at
			}
		}
	`, nil))

	row := data["insert_users"].(map[string]interface{})
	assert.Equal(t, "eve", row["username"])
	// Column defaults applied by the store appear in the response.
	assert.Equal(t, true, row["active"])
	assert.Equal(t, "2024-01-01T00:00:00Z", row["created_at"])
}

func TestUpdateMutation(t *testing.T) {
	env := newTestEnv(t, schema.Config{EnableMutations: true})
	seedBasic(t, env)

	data := requireNoErrors(t, env.execute(t, `
		mutation {
			update_posts(where: {user_id: {_eq: 1}}, set: {published: true}) {
				id
				published
			}
		}
	`, nil))

	rows := rowsOf(t, data, "update_posts")
	require.Len(t, rows, 2)
	for i := range rows {
		assert.Equal(t, true, rowAt(t, rows, i)["published"])
	}

	// Rows outside the filter are untouched.
	check := requireNoErrors(t, env.execute(t, `
		{ posts(where: {published: {_eq: false}}) { id } }
	`, nil))
	assert.Empty(t, rowsOf(t, check, "posts"))
}

func TestUpdateMutation_NoMatchesIsEmptyList(t *testing.T) {
	env := newTestEnv(t, schema.Config{EnableMutations: true})
	seedBasic(t, env)

	data := requireNoErrors(t, env.execute(t, `
		mutation {
			update_users(where: {username: {_eq: "nobody"}}, set: {email: "x@example.com"}) {
				id
			}
		}
	`, nil))

	rows, ok := data["update_users"].([]interface{})
	require.True(t, ok, "empty update must return a list, not null")
	assert.Empty(t, rows)
}

func TestDeleteMutation_ReturnsSnapshots(t *testing.T) {
	env := newTestEnv(t, schema.Config{EnableMutations: true})
	seedBasic(t, env)

	data := requireNoErrors(t, env.execute(t, `
		mutation {
			delete_comments(where: {body: {_like: "%spam%"}}) {
				id
				body
			}
		}
	`, nil))

	rows := rowsOf(t, data, "delete_comments")
	require.Len(t, rows, 1)
	assert.Equal(t, "spam spam spam", rowAt(t, rows, 0)["body"])

	check := requireNoErrors(t, env.execute(t, `{ comments { id } }`, nil))
	assert.Len(t, rowsOf(t, check, "comments"), 2)
}

func TestDeleteMutation_AbsentWhereDeletesEverything(t *testing.T) {
	env := newTestEnv(t, schema.Config{EnableMutations: true})
	seedBasic(t, env)

	data := requireNoErrors(t, env.execute(t, `
		mutation {
			delete_comments {
				id
			}
		}
	`, nil))
	assert.Len(t, rowsOf(t, data, "delete_comments"), 3)

	check := requireNoErrors(t, env.execute(t, `{ comments { id } }`, nil))
	assert.Empty(t, rowsOf(t, check, "comments"))
}

func TestMutationRoundTrip_InsertUpdateDelete(t *testing.T) {
	env := newTestEnv(t, schema.Config{EnableMutations: true})

	inserted := requireNoErrors(t, env.execute(t, `
		mutation {
			insert_posts(object: {title: "draft", published: false}) {
				id
				title
			}
		}
	`, nil))
	post := inserted["insert_posts"].(map[string]interface{})
	id := post["id"]

	updated := requireNoErrors(t, env.execute(t, `
		mutation ($w: PostWhere) {
			update_posts(where: $w, set: {title: "final", published: true}) {
				title
				published
			}
		}
	`, map[string]interface{}{
		"w": map[string]interface{}{"id": map[string]interface{}{"_eq": id}},
	}))
	rows := rowsOf(t, updated, "update_posts")
	require.Len(t, rows, 1)
	assert.Equal(t, "final", rowAt(t, rows, 0)["title"])

	deleted := requireNoErrors(t, env.execute(t, `
		mutation ($w: PostWhere) {
			delete_posts(where: $w) { id }
		}
	`, map[string]interface{}{
		"w": map[string]interface{}{"id": map[string]interface{}{"_eq": id}},
	}))
	require.Len(t, rowsOf(t, deleted, "delete_posts"), 1)

	check := requireNoErrors(t, env.execute(t, `{ posts { id } }`, nil))
	assert.Empty(t, rowsOf(t, check, "posts"))
}
