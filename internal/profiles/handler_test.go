package profiles_test

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
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfeed/quillfeed/internal/profiles"
	"github.com/quillfeed/quillfeed/internal/shared"
	"github.com/quillfeed/quillfeed/internal/view"
	_ "github.com/quillfeed/quillfeed/testing"
)

func newProfilesHandler(t *testing.T, repo profiles.Repository) (*profiles.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "sessionsecret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err, "templates")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := profiles.NewHandler(logger, profiles.NewService(repo), templates, csrfManager)
	return handler, sessionManager
}

func asUser(t *testing.T, sm *shared.SessionManager, req *http.Request, userID int64, pathID string) *http.Request {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err, "load session")
	if userID != 0 {
		sess.SetUser(userID)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	if pathID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", pathID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func TestAboutShowsSiteCounts(t *testing.T) {
	handler, sm := newProfilesHandler(t, newMemRepo())

	req := asUser(t, sm, httptest.NewRequest(http.MethodGet, "/about", nil), 0, "")
	res := httptest.NewRecorder()
	handler.ShowAboutForTest(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "2")
	assert.Contains(t, res.Body.String(), "3")
}

func TestProfileShowsArticleCountAndLinks(t *testing.T) {
	repo := newMemRepo()
	repo.users[1] = withGitHub(repo.users[1], "https://github.com/alice")
	handler, sm := newProfilesHandler(t, repo)

	req := asUser(t, sm, httptest.NewRequest(http.MethodGet, "/profile/1", nil), 2, "1")
	res := httptest.NewRecorder()
	handler.ShowProfileForTest(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "alice")
	assert.Contains(t, res.Body.String(), "https://github.com/alice")
}

func TestProfileUnknownUserIsNotFound(t *testing.T) {
	handler, sm := newProfilesHandler(t, newMemRepo())

	for _, id := range []string{"99", "abc"} {
		req := asUser(t, sm, httptest.NewRequest(http.MethodGet, "/profile/"+id, nil), 1, id)
		res := httptest.NewRecorder()
		handler.ShowProfileForTest(res, req)
		assert.Equal(t, http.StatusNotFound, res.Code, "id %s", id)
	}
}

func TestEditProfileUpdatesAndRedirects(t *testing.T) {
	repo := newMemRepo()
	handler, sm := newProfilesHandler(t, repo)

	form := url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Archer"},
		"username":   {"alice2"},
		"email":      {"alice@example.com"},
		"github":     {"https://github.com/alice"},
	}
	req := httptest.NewRequest(http.MethodPost, "/edit_profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asUser(t, sm, req, 1, "")
	res := httptest.NewRecorder()
	handler.HandleEditProfileForTest(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/profile/1", res.Header().Get("Location"))
	updated, err := repo.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "https://github.com/alice", updated.GitHub)
}

func TestEditProfileDuplicateUsernameEchoesForm(t *testing.T) {
	repo := newMemRepo()
	handler, sm := newProfilesHandler(t, repo)

	form := url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Archer"},
		"username":   {"bob"},
		"email":      {"alice@example.com"},
	}
	req := httptest.NewRequest(http.MethodPost, "/edit_profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asUser(t, sm, req, 1, "")
	res := httptest.NewRecorder()
	handler.HandleEditProfileForTest(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "already taken")
	assert.Contains(t, res.Body.String(), "bob")
	kept, err := repo.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", kept.Username, "username unchanged on failure")
}

func withGitHub(p profiles.Profile, link string) profiles.Profile {
	p.GitHub = link
	return p
}
