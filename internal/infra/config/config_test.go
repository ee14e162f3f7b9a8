package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SIGNAL_NUMBER", "+4916099999999")
	t.Setenv("HORTPRO_EMAIL", "parent@example.com")
	t.Setenv("HORTPRO_PASSWORD", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load("does-not-exist.env")
		require.NoError(t, err)

		assert.Equal(t, "https://elternportal.hortpro.de/api", cfg.HortproBaseURL)
		assert.Equal(t, 60*time.Second, cfg.CheckInterval)
		assert.Equal(t, 10*time.Minute, cfg.KeepAliveInterval)
		assert.Equal(t, "cookie.txt", cfg.CookiePath)
		assert.Equal(t, "bin/signal-cli", cfg.SignalCLIPath)
		assert.Equal(t, "chat_ids.json", cfg.RecipientsPath)
		assert.Equal(t, "presences_per_users.json", cfg.StatePath)
		assert.Equal(t, "scheduler.csv", cfg.SchedulePath)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CHECK_INTERVAL_SECONDS", "30")
		t.Setenv("KEEP_ALIVE_INTERVAL_MINUTES", "5")
		t.Setenv("LOG_LEVEL", "DEBUG")

		cfg, err := Load("does-not-exist.env")
		require.NoError(t, err)

		assert.Equal(t, 30*time.Second, cfg.CheckInterval)
		assert.Equal(t, 5*time.Minute, cfg.KeepAliveInterval)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("missing required keys", func(t *testing.T) {
		for _, key := range []string{"SIGNAL_NUMBER", "HORTPRO_EMAIL", "HORTPRO_PASSWORD"} {
			t.Run(key, func(t *testing.T) {
				setRequired(t)
				t.Setenv(key, "")

				_, err := Load("does-not-exist.env")
				require.Error(t, err)
				assert.Contains(t, err.Error(), key)
			})
		}
	})

	t.Run("non-numeric interval", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CHECK_INTERVAL_SECONDS", "soon")

		_, err := Load("does-not-exist.env")
		assert.Error(t, err)
	})

	t.Run("non-positive interval", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CHECK_INTERVAL_SECONDS", "0")

		_, err := Load("does-not-exist.env")
		assert.Error(t, err)
	})
}
