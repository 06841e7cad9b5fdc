package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EXPORT_API_BASE_URL", "https://backend.example.com/api")
	t.Setenv("EXPORT_API_TOKEN", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("testdata/absent.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "seatrace", cfg.MongoDB.DBName)
	assert.Equal(t, "*/15 * * * *", cfg.Reconcile.CronSchedule)
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadRequiresBackend(t *testing.T) {
	t.Setenv("EXPORT_API_BASE_URL", "")
	t.Setenv("EXPORT_API_TOKEN", "")

	_, err := Load("testdata/absent.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPORT_API_BASE_URL")
}

func TestLoadTimeoutOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EXPORT_API_TIMEOUT_SECONDS", "90")

	cfg, err := Load("testdata/absent.env")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Backend.Timeout)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EXPORT_API_TIMEOUT_SECONDS", "soon")

	_, err := Load("testdata/absent.env")
	assert.Error(t, err)
}

func TestLoadRejectsHalfConfiguredSheets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")

	_, err := Load("testdata/absent.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SHEET_REPORT_ID")
}
