package graphql

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/minsukang/accounts/internal/api/middleware"
	"github.com/minsukang/accounts/internal/auth"
	"github.com/minsukang/accounts/internal/domain/shared"
	"github.com/minsukang/accounts/internal/domain/user"
	"github.com/minsukang/accounts/internal/repository"
	"github.com/minsukang/accounts/pkg/logger"
)

// memoryRepo is an in-memory user.Repo for resolver tests
type memoryRepo struct {
	mu   sync.Mutex
	docs map[bson.ObjectID]user.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[bson.ObjectID]user.User)}
}

func (r *memoryRepo) Create(_ context.Context, doc *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID.IsZero() {
		doc.SetObjectID(bson.NewObjectID())
	}
	r.docs[doc.ID] = *doc
	stored := r.docs[doc.ID]
	return &stored, nil
}

func (r *memoryRepo) FindOne(_ context.Context, filter repository.Filter) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if r.matches(doc, filter) {
			found := doc
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound(user.Collection)
}

func (r *memoryRepo) Find(_ context.Context, filter repository.Filter) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*user.User, 0)
	for _, doc := range r.docs {
		if r.matches(doc, filter) {
			found := doc
			out = append(out, &found)
		}
	}
	return out, nil
}

func (r *memoryRepo) FindOneAndUpdate(_ context.Context, filter repository.Filter, update repository.Update) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, doc := range r.docs {
		if !r.matches(doc, filter) {
			continue
		}
		if email, ok := update["email"].(string); ok {
			doc.Email = email
		}
		if hash, ok := update["password_hash"].(string); ok {
			doc.PasswordHash = hash
		}
		r.docs[id] = doc
		updated := doc
		return &updated, nil
	}
	return nil, shared.ErrNotFound(user.Collection)
}

func (r *memoryRepo) FindOneAndDelete(_ context.Context, filter repository.Filter) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, doc := range r.docs {
		if r.matches(doc, filter) {
			delete(r.docs, id)
			removed := doc
			return &removed, nil
		}
	}
	return nil, shared.ErrNotFound(user.Collection)
}

func (r *memoryRepo) matches(doc user.User, filter repository.Filter) bool {
	for field, want := range filter {
		switch field {
		case "_id":
			if doc.ID != want.(bson.ObjectID) {
				return false
			}
		case "email":
			if doc.Email != want.(string) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func setupSchema(t *testing.T) (*graphqlgo.Schema, *auth.SessionManager) {
	t.Helper()

	log := logger.NewDefault()
	service := user.NewService(newMemoryRepo(), nil, log)
	sessions := auth.NewSessionManager("test-secret", 3600)

	schema, err := graphqlgo.ParseSchema(Schema, NewResolver(log, service, sessions))
	require.NoError(t, err, "schema and resolver must agree")

	return schema, sessions
}

func exec(t *testing.T, schema *graphqlgo.Schema, ctx context.Context, query string, vars map[string]interface{}) map[string]interface{} {
	t.Helper()

	resp := schema.Exec(ctx, query, "", vars)
	require.Empty(t, resp.Errors, "unexpected GraphQL errors: %v", resp.Errors)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func createUser(t *testing.T, schema *graphqlgo.Schema, email string) string {
	t.Helper()

	data := exec(t, schema, context.Background(), `
		mutation($input: CreateUserInput!) {
			createUser(input: $input) { id email }
		}`,
		map[string]interface{}{
			"input": map[string]interface{}{"email": email, "password": "secret123"},
		})

	created := data["createUser"].(map[string]interface{})
	assert.Equal(t, email, created["email"])
	return created["id"].(string)
}

func TestResolver_UserLifecycle(t *testing.T) {
	schema, _ := setupSchema(t)
	ctx := context.Background()

	id := createUser(t, schema, "alice@example.com")

	t.Run("user returns the created account", func(t *testing.T) {
		data := exec(t, schema, ctx, `query($id: ID!) { user(id: $id) { id email createdAt } }`,
			map[string]interface{}{"id": id})

		got := data["user"].(map[string]interface{})
		assert.Equal(t, id, got["id"])
		assert.Equal(t, "alice@example.com", got["email"])
		assert.NotEmpty(t, got["createdAt"])
	})

	t.Run("users lists all accounts", func(t *testing.T) {
		createUser(t, schema, "bob@example.com")

		data := exec(t, schema, ctx, `{ users { email } }`, nil)
		assert.Len(t, data["users"].([]interface{}), 2)
	})

	t.Run("updateUser returns the post-update state", func(t *testing.T) {
		data := exec(t, schema, ctx, `
			mutation($id: ID!, $input: UpdateUserInput!) {
				updateUser(id: $id, input: $input) { email }
			}`,
			map[string]interface{}{
				"id":    id,
				"input": map[string]interface{}{"email": "renamed@example.com"},
			})

		updated := data["updateUser"].(map[string]interface{})
		assert.Equal(t, "renamed@example.com", updated["email"])
	})

	t.Run("deleteUser returns the removed account", func(t *testing.T) {
		data := exec(t, schema, ctx, `mutation($id: ID!) { deleteUser(id: $id) { email } }`,
			map[string]interface{}{"id": id})

		deleted := data["deleteUser"].(map[string]interface{})
		assert.Equal(t, "renamed@example.com", deleted["email"])

		resp := schema.Exec(ctx, `query($id: ID!) { user(id: $id) { id } }`, "",
			map[string]interface{}{"id": id})
		require.NotEmpty(t, resp.Errors)
		assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["code"])
	})
}

func TestResolver_ErrorCodes(t *testing.T) {
	schema, _ := setupSchema(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		query string
		vars  map[string]interface{}
		code  string
	}{
		{
			name:  "malformed identifier",
			query: `query($id: ID!) { user(id: $id) { id } }`,
			vars:  map[string]interface{}{"id": "not-hex"},
			code:  "INVALID_IDENTIFIER",
		},
		{
			name:  "unknown identifier",
			query: `query($id: ID!) { user(id: $id) { id } }`,
			vars:  map[string]interface{}{"id": bson.NewObjectID().Hex()},
			code:  "NOT_FOUND",
		},
		{
			name:  "me without a session",
			query: `{ me { id } }`,
			code:  "UNAUTHENTICATED",
		},
		{
			name:  "login with unknown account",
			query: `mutation { login(input: {email: "nobody@example.com", password: "secret123"}) { id } }`,
			code:  "INVALID_CREDENTIALS",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := schema.Exec(ctx, tc.query, "", tc.vars)
			require.NotEmpty(t, resp.Errors)
			assert.Equal(t, tc.code, resp.Errors[0].Extensions["code"])
		})
	}
}

func TestResolver_LoginLogout(t *testing.T) {
	schema, sessions := setupSchema(t)

	createUser(t, schema, "alice@example.com")

	t.Run("login sets the Authentication cookie", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		ctx := middleware.WithWriter(context.Background(), recorder)

		data := exec(t, schema, ctx, `
			mutation { login(input: {email: "alice@example.com", password: "secret123"}) { email } }`, nil)
		assert.Equal(t, "alice@example.com", data["login"].(map[string]interface{})["email"])

		cookies := recorder.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie := cookies[0]
		assert.Equal(t, auth.CookieName, cookie.Name)
		assert.True(t, cookie.HttpOnly)
		assert.NotEmpty(t, cookie.Value)

		claims, err := sessions.Verify(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("me resolves the session identity", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		ctx := middleware.WithWriter(context.Background(), recorder)
		exec(t, schema, ctx, `
			mutation { login(input: {email: "alice@example.com", password: "secret123"}) { id } }`, nil)

		claims, err := sessions.Verify(recorder.Result().Cookies()[0].Value)
		require.NoError(t, err)

		data := exec(t, schema, middleware.WithSessionClaims(context.Background(), claims), `{ me { email } }`, nil)
		assert.Equal(t, "alice@example.com", data["me"].(map[string]interface{})["email"])
	})

	t.Run("logout overwrites the cookie with an expired empty value", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		ctx := middleware.WithWriter(context.Background(), recorder)

		data := exec(t, schema, ctx, `mutation { logout }`, nil)
		assert.Equal(t, true, data["logout"])

		cookies := recorder.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		ctx := middleware.WithWriter(context.Background(), recorder)

		resp := schema.Exec(ctx, `
			mutation { login(input: {email: "alice@example.com", password: "wrong"}) { id } }`, "", nil)
		require.NotEmpty(t, resp.Errors)
		assert.Equal(t, "INVALID_CREDENTIALS", resp.Errors[0].Extensions["code"])
		assert.Empty(t, recorder.Result().Cookies(), "no cookie on failed login")
	})
}
