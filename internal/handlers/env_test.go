package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ekrsw/knowledge/internal/blacklist"
	"github.com/ekrsw/knowledge/internal/config"
	"github.com/ekrsw/knowledge/internal/handlers"
	mwauth "github.com/ekrsw/knowledge/internal/middleware/auth"
	"github.com/ekrsw/knowledge/internal/refresh"
	"github.com/ekrsw/knowledge/internal/repo"
	"github.com/ekrsw/knowledge/internal/service"
	"github.com/ekrsw/knowledge/internal/tokens"
	httpserver "github.com/ekrsw/knowledge/internal/transport/http"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	r := &repo.Repo{DB: db}
	authService := &service.AuthService{
		Repo:      r,
		Issuer:    &tokens.Issuer{Secret: []byte("test-secret"), TTL: 15 * time.Minute},
		Refresh:   &refresh.Store{DB: db, TTL: 24 * time.Hour},
		Blacklist: &blacklist.Store{DB: db, Enabled: true},
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		DB:               db,
		AuthMiddleware:   &mwauth.Middleware{Auth: authService},
		AuthHandler:      &handlers.AuthHandler{Auth: authService},
		UserHandler:      &handlers.UserHandler{Users: &service.UserService{Repo: r}},
		ArticleHandler:   &handlers.ArticleHandler{Articles: &service.ArticleService{Repo: r, Index: "articles"}},
		KnowledgeHandler: &handlers.KnowledgeHandler{Knowledge: &service.KnowledgeService{Repo: r}},
	})

	return &testEnv{T: t, E: e, DB: db}
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder, out any) {
	env.T.Helper()
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), out))
}

// registerAndLogin creates a user over the API and returns its tokens.
func (env *testEnv) registerAndLogin(username, password string, isAdmin bool) (access, refreshToken string) {
	env.T.Helper()

	rec := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username":  username,
		"password":  password,
		"full_name": username,
		"is_admin":  isAdmin,
	})
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/v1/auth/token", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	env.decode(rec, &pair)
	return pair.AccessToken, pair.RefreshToken
}
