package app_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfeed/quillfeed/internal/app"
	"github.com/quillfeed/quillfeed/internal/articles"
	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/observability"
	"github.com/quillfeed/quillfeed/internal/profiles"
	"github.com/quillfeed/quillfeed/internal/shared"
	"github.com/quillfeed/quillfeed/internal/view"
	_ "github.com/quillfeed/quillfeed/testing"
)

type emptyArticlesRepo struct{}

func (emptyArticlesRepo) WithTx(ctx context.Context, fn func(context.Context, articles.Repository) error) error {
	return fn(ctx, emptyArticlesRepo{})
}
func (emptyArticlesRepo) Create(context.Context, int64, string, string) (int64, error) {
	return 1, nil
}
func (emptyArticlesRepo) Get(context.Context, int64) (*articles.Article, error) {
	return nil, shared.ErrNotFound
}
func (emptyArticlesRepo) ListRecent(context.Context, int) ([]articles.FeedItem, error) {
	return nil, nil
}
func (emptyArticlesRepo) ListByOwner(context.Context, int64) ([]articles.Article, error) {
	return nil, nil
}
func (emptyArticlesRepo) Update(context.Context, int64, string, string) error { return nil }
func (emptyArticlesRepo) Delete(context.Context, int64) error                 { return nil }
func (emptyArticlesRepo) GetAuthor(context.Context, int64) (*articles.Author, error) {
	return nil, shared.ErrNotFound
}

type emptyAuthRepo struct{}

func (emptyAuthRepo) CreateUser(context.Context, auth.NewUser) (int64, error) { return 1, nil }
func (emptyAuthRepo) FindByUsername(context.Context, string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}
func (emptyAuthRepo) CreateSession(context.Context, string, int64, time.Time, string, string) error {
	return nil
}
func (emptyAuthRepo) DeleteSession(context.Context, string) error { return nil }

type emptyProfilesRepo struct{}

func (emptyProfilesRepo) GetUser(context.Context, int64) (*profiles.Profile, error) {
	return nil, shared.ErrNotFound
}
func (emptyProfilesRepo) UpdateProfile(context.Context, int64, profiles.ProfileUpdate) error {
	return nil
}
func (emptyProfilesRepo) CountUsers(context.Context) (int64, error)              { return 0, nil }
func (emptyProfilesRepo) CountArticles(context.Context) (int64, error)           { return 0, nil }
func (emptyProfilesRepo) CountArticlesByUser(context.Context, int64) (int64, error) { return 0, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "sessionsecret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &app.Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}

	return app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		AuthHandler:     auth.NewHandler(logger, auth.NewService(emptyAuthRepo{}), templates, sessionManager, csrfManager),
		ArticlesHandler: articles.NewHandler(logger, articles.NewService(emptyArticlesRepo{}), templates, csrfManager),
		ProfilesHandler: profiles.NewHandler(logger, profiles.NewService(emptyProfilesRepo{}), templates, csrfManager),
		Metrics:         observability.NewMetrics(),
	})
}

func TestRouterServesPublicPages(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/", "/home", "/about", "/login", "/register", "/healthz", "/metrics"} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, res.Code, "GET %s", path)
	}
}

func TestRouterProtectsAuthenticatedRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/add_post", "/my_posts", "/edit_profile", "/profile/1", "/logout", "/edit_post/1"} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, res.Code, "GET %s", path)
		assert.Equal(t, "/login", res.Header().Get("Location"), "GET %s", path)
	}
}

func TestRouterRejectsMutationWithoutCSRFToken(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/delete_post/1", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRouterServesStaticAssets(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "public, max-age=3600", res.Header().Get("Cache-Control"))
}
