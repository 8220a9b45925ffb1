package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/shared"
	"github.com/quillfeed/quillfeed/internal/view"
	_ "github.com/quillfeed/quillfeed/testing"
)

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "sessionsecret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err, "templates")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), templates, sessionManager, csrfManager)
	return handler, sessionManager
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err, "load session")
	ctx := shared.ContextWithSession(req.Context(), sess)
	return req.WithContext(ctx), sess
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginPageShowsForm(t *testing.T) {
	handler, sm := newAuthHandler(t, newMemRepo())

	req, _ := withSession(t, sm, httptest.NewRequest(http.MethodGet, "/login", nil))
	res := httptest.NewRecorder()
	handler.ShowLoginForTest(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newMemRepo()
	handler, sm := newAuthHandler(t, repo)
	_, err := auth.NewService(repo).Register(context.Background(), validInput())
	require.NoError(t, err)

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "wrongpass")
	req, _ := withSession(t, sm, postForm("/login", form))

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Wrong username or password")
}

func TestLoginBindsSessionToUser(t *testing.T) {
	repo := newMemRepo()
	handler, sm := newAuthHandler(t, repo)
	id, err := auth.NewService(repo).Register(context.Background(), validInput())
	require.NoError(t, err)

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "password1")
	req, sess := withSession(t, sm, postForm("/login", form))

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/profile/1", res.Header().Get("Location"))
	assert.Equal(t, id, sess.UserID())
}

func TestRegisterShortPasswordRejected(t *testing.T) {
	repo := newMemRepo()
	handler, sm := newAuthHandler(t, repo)

	form := url.Values{}
	form.Set("first_name", "Alice")
	form.Set("last_name", "Archer")
	form.Set("username", "alice")
	form.Set("email", "alice@example.com")
	form.Set("password", "short1")
	form.Set("password2", "short1")
	req, _ := withSession(t, sm, postForm("/register", form))

	res := httptest.NewRecorder()
	handler.HandleRegisterForTest(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Password must be at least 8 characters")
	assert.Equal(t, 0, repo.userCount())
}

func TestRegisterSuccessRedirectsToLogin(t *testing.T) {
	repo := newMemRepo()
	handler, sm := newAuthHandler(t, repo)

	form := url.Values{}
	form.Set("first_name", "Alice")
	form.Set("last_name", "Archer")
	form.Set("username", "alice")
	form.Set("email", "alice@example.com")
	form.Set("password", "password1")
	form.Set("password2", "password1")
	req, _ := withSession(t, sm, postForm("/register", form))

	res := httptest.NewRecorder()
	handler.HandleRegisterForTest(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
	assert.Equal(t, 1, repo.userCount())
}

func TestRegisterDuplicateUsernameEchoesForm(t *testing.T) {
	repo := newMemRepo()
	handler, sm := newAuthHandler(t, repo)
	_, err := auth.NewService(repo).Register(context.Background(), validInput())
	require.NoError(t, err)

	form := url.Values{}
	form.Set("first_name", "Alya")
	form.Set("last_name", "Other")
	form.Set("username", "alice")
	form.Set("email", "alya@example.com")
	form.Set("password", "password1")
	form.Set("password2", "password1")
	req, _ := withSession(t, sm, postForm("/register", form))

	res := httptest.NewRecorder()
	handler.HandleRegisterForTest(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "already taken")
	assert.Contains(t, res.Body.String(), "Alya", "form values must be echoed back")
	assert.Equal(t, 1, repo.userCount())
}

func TestLoginRotatesSessionID(t *testing.T) {
	repo := newMemRepo()
	handler, sm := newAuthHandler(t, repo)
	_, err := auth.NewService(repo).Register(context.Background(), validInput())
	require.NoError(t, err)

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "password1")
	req, sess := withSession(t, sm, postForm("/login", form))
	preLoginID := sess.ID

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.NotEqual(t, preLoginID, sess.ID, "login must not keep the pre-login session ID")

	// A cookie holding the pre-login ID must stay anonymous.
	stale := httptest.NewRequest(http.MethodGet, "/", nil)
	stale.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: preLoginID})
	reloaded, err := sm.Load(context.Background(), stale)
	require.NoError(t, err)
	assert.Zero(t, reloaded.UserID())
}
