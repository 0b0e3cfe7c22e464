package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DAIRY_API_URL", "DAIRY_HTTP_TIMEOUT", "DAIRY_STATE_PATH", "DAIRY_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.NotEmpty(t, cfg.State.Path)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DAIRY_API_URL", "https://erp.coop.example/api")
	t.Setenv("DAIRY_HTTP_TIMEOUT", "10s")
	t.Setenv("DAIRY_STATE_PATH", "/tmp/dairy-test.db")
	t.Setenv("DAIRY_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://erp.coop.example/api", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, "/tmp/dairy-test.db", cfg.State.Path)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DAIRY_HTTP_TIMEOUT", "not-a-duration")
	_, err := Load("")
	require.Error(t, err)

	t.Setenv("DAIRY_HTTP_TIMEOUT", "30s")
	t.Setenv("DAIRY_LOG_LEVEL", "loud")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	var nilCfg *Config
	require.Error(t, nilCfg.Validate())

	cfg := &Config{
		API:     APIConfig{BaseURL: "http://localhost:5000/api", Timeout: 30 * time.Second},
		State:   StateConfig{Path: "state.db"},
		Logging: LoggingConfig{Level: "info"},
	}
	require.NoError(t, cfg.Validate())

	cfg.API.Timeout = 0
	require.Error(t, cfg.Validate())
}
