package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/quickcart/internal/events"
	authmw "github.com/Skotchmaster/quickcart/internal/middleware/auth"
	"github.com/Skotchmaster/quickcart/internal/models"
	"github.com/Skotchmaster/quickcart/internal/repo"
	"github.com/Skotchmaster/quickcart/internal/service"
	"github.com/Skotchmaster/quickcart/internal/testutil"
	"github.com/Skotchmaster/quickcart/pkg/logging"
	"github.com/Skotchmaster/quickcart/pkg/tokens"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Repo   *repo.GormRepo
	Tokens *tokens.Service
	Events *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	ts, err := tokens.NewService(tokens.Config{Secret: []byte("e2e-secret"), Issuer: "quickcart"})
	require.NoError(t, err)
	rec := &events.Recorder{}

	authSvc := &service.AuthService{Repo: r, Tokens: ts, Events: rec}
	e := New(logging.NewWithWriter("error", io.Discard))
	Register(e, &Deps{
		Auth:    &AuthHTTP{Svc: authSvc},
		Users:   &UsersHTTP{Svc: &service.UserService{Repo: r, Events: rec}, Auth: authSvc},
		Catalog: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: rec}},
		Guard:   &authmw.Guard{Tokens: ts, Users: r},
		Ready:   r.Ping,
	})
	return &testEnv{T: t, E: e, Repo: r, Tokens: ts, Events: rec}
}

func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.T, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(username, password string) *httptest.ResponseRecorder {
	env.T.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) token(username, password string) string {
	env.T.Helper()

	rec := env.login(username, password)
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["access_token"].(string)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestEndToEnd_AdminFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", map[string]string{"username": "root", "password": "pw", "role": "admin"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	root := decode[map[string]any](t, rec)
	assert.Equal(t, "admin", root["role"])
	assert.NotContains(t, root, "password")
	assert.NotContains(t, root, "PasswordHash")

	rec = env.login("root", "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode[map[string]any](t, rec)
	assert.Equal(t, "bearer", tok["token_type"])
	assert.InDelta(t, tokens.DefaultTTL.Seconds(), tok["expires_in"], 2)
	adminToken := tok["access_token"].(string)

	rec = env.do(http.MethodPost, "/categories", map[string]any{"name": "Fruit"}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decode[models.Category](t, rec)

	rec = env.do(http.MethodPost, "/products", map[string]any{
		"name": "Apple", "description": "red", "price": 1.25, "stock": 10, "category_id": category.ID,
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[models.Product](t, rec)

	rec = env.do(http.MethodGet, "/products?category_id="+itoa(category.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Product](t, rec)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, product.ID, got.ID)
	assert.Equal(t, "Apple", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "red", *got.Description)
	assert.Equal(t, 1.25, got.Price)
	assert.Equal(t, 10, got.Stock)
	assert.Equal(t, category.ID, got.CategoryID)

	rec = env.do(http.MethodGet, "/products/search?q=appl", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, found["total"])

	rec = env.do(http.MethodDelete, "/categories/"+itoa(category.ID), nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodDelete, "/products/"+itoa(product.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted", decode[map[string]string](t, rec)["message"])

	rec = env.do(http.MethodGet, "/products/"+itoa(product.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	topics := map[string]int{}
	for _, r := range env.Events.Snapshot() {
		topics[r.Topic]++
	}
	assert.Equal(t, 1, topics[events.TopicUsers])
	assert.Equal(t, 1, topics[events.TopicCategories])
	assert.Equal(t, 2, topics[events.TopicProducts])
}

func TestEndToEnd_RegisterRules(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", map[string]string{"username": "alice", "password": "pw"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user", decode[map[string]any](t, rec)["role"])

	rec = env.do(http.MethodPost, "/auth/register", map[string]string{"username": "alice", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/auth/register", map[string]string{"username": "root", "password": "pw", "role": "admin"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(http.MethodPost, "/auth/register", map[string]string{"username": "root2", "password": "pw", "role": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/auth/register", map[string]string{"username": "eve", "password": "pw", "role": "superuser"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/auth/register", map[string]string{"username": "", "password": "pw"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/auth/register", map[string]string{"username": "long", "password": strings.Repeat("a", 73)}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/auth/register", map[string]string{"username": "long", "password": strings.Repeat("a", 72)}, "")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestEndToEnd_LoginFailuresLookTheSame(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, "/auth/register", map[string]string{"username": "alice", "password": "pw"}, "").Code)

	wrong := env.login("alice", "wrong")
	ghost := env.login("ghost", "x")

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, ghost.Code)
	assert.Equal(t, wrong.Body.String(), ghost.Body.String())
	assert.Equal(t, "Bearer", wrong.Header().Get(echo.HeaderWWWAuthenticate))
}

func TestEndToEnd_Me(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, "/auth/register", map[string]string{"username": "alice", "password": "pw"}, "").Code)

	rec := env.do(http.MethodGet, "/auth/me", nil, env.token("alice", "pw"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[map[string]any](t, rec)["username"])

	rec = env.do(http.MethodGet, "/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	expired, _, err := env.Tokens.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).Issue("alice")
	require.NoError(t, err)
	rec = env.do(http.MethodGet, "/auth/me", nil, expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEndToEnd_AdminUsers(t *testing.T) {
	env := newTestEnv(t)
	for _, u := range []map[string]string{
		{"username": "root", "password": "pw", "role": "admin"},
		{"username": "alice", "password": "pw"},
	} {
		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/auth/register", u, "").Code)
	}
	adminToken := env.token("root", "pw")
	userToken := env.token("alice", "pw")

	rec := env.do(http.MethodGet, "/admin/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/admin/users", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 2)

	rec = env.do(http.MethodPost, "/admin/users", map[string]string{"username": "bob", "password": "pw"}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	bob := decode[models.User](t, rec)

	rec = env.do(http.MethodPut, "/admin/users/2", map[string]string{"username": "alice", "password": "pw", "role": "admin"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/admin/users/2", map[string]string{"username": "alicia", "password": "new"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alicia", decode[models.User](t, rec).Username)

	// alice's token names a user that no longer exists
	rec = env.do(http.MethodGet, "/auth/me", nil, userToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodDelete, "/admin/users/"+itoa(bob.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted", decode[map[string]string](t, rec)["message"])

	rec = env.do(http.MethodGet, "/admin/users/"+itoa(bob.ID), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/admin/users/abc", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndToEnd_ProductValidation(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, "/auth/register", map[string]string{"username": "root", "password": "pw", "role": "admin"}, "").Code)
	adminToken := env.token("root", "pw")

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/categories", map[string]any{"name": "Fruit"}, adminToken).Code)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "negative price", body: map[string]any{"name": "x", "price": -1, "stock": 1, "category_id": 1}},
		{name: "negative stock", body: map[string]any{"name": "x", "price": 1, "stock": -1, "category_id": 1}},
		{name: "missing name", body: map[string]any{"price": 1, "stock": 1, "category_id": 1}},
		{name: "missing price", body: map[string]any{"name": "x", "stock": 1, "category_id": 1}},
		{name: "unknown category", body: map[string]any{"name": "x", "price": 1, "stock": 1, "category_id": 99}},
		{name: "wrong type", body: map[string]any{"name": "x", "price": "cheap", "stock": 1, "category_id": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/products", tt.body, adminToken)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := env.do(http.MethodPost, "/products", map[string]any{"name": "x", "price": 1, "stock": 1, "category_id": 1}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/products?limit=1000", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/products/search?q=", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", nil, "").Code)

	rec := env.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quickcart_http_requests_total")
}

func TestReady_Failing(t *testing.T) {
	e := New(logging.NewWithWriter("error", io.Discard))
	d := &Deps{Ready: func(context.Context) error { return assert.AnError }}
	e.GET("/health/ready", d.ready)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
