package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfeed/quillfeed/internal/app"
	_ "github.com/quillfeed/quillfeed/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "sessionsecret")
	t.Setenv("CSRF_SECRET", "csrfsecret")

	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "csrfsecret")

	_, err := app.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresCSRFSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "sessionsecret")
	t.Setenv("CSRF_SECRET", "")

	_, err := app.LoadConfig()
	assert.Error(t, err)
}
