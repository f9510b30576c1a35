package config

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("HTTP_ADDR", "")
		t.Setenv("PORT", "")
		t.Setenv("API_BASE_URL", "")
		t.Setenv("HISTORY_LIMIT", "")

		cfg, err := New()
		require.NoError(t, err)
		require.Equal(t, ":8080", cfg.HTTPAddr)
		require.Equal(t, "http://localhost:3000/api", cfg.APIBaseURL)
		require.Equal(t, DefaultPollInterval, cfg.PollInterval)
		require.Equal(t, 20, cfg.HistoryLimit)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("HTTP_ADDR", "")
		t.Setenv("PORT", "9090")
		t.Setenv("API_BASE_URL", "https://backend.example.com/api")
		t.Setenv("API_TIMEOUT_SECONDS", "3")
		t.Setenv("ADMIN_TOKEN", "admin-token")
		t.Setenv("SSE_HEARTBEAT_SECONDS", "2")
		t.Setenv("HISTORY_LIMIT", "5")

		cfg, err := New()
		require.NoError(t, err)
		require.Equal(t, ":9090", cfg.HTTPAddr)
		require.Equal(t, "https://backend.example.com/api", cfg.APIBaseURL)
		require.Equal(t, 3*time.Second, cfg.APITimeout)
		require.Equal(t, "admin-token", cfg.AdminToken)
		require.Equal(t, 2*time.Second, cfg.SSEHeartbeat)
		require.Equal(t, 5, cfg.HistoryLimit)
		require.Equal(t, DefaultPollInterval, cfg.PollInterval)
	})

	t.Run("invalid base url", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "not a url")

		_, err := New()
		require.Error(t, err)
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Equal(t, "APIBaseURL", verrs[0].Field())
	})
}
