package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amphitheatre-app/playbooks/internal/constants"
)

func TestConfig_GetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		expected slog.Level
	}{
		{
			name:     "DEBUG level",
			logLevel: "DEBUG",
			expected: slog.LevelDebug,
		},
		{
			name:     "INFO level",
			logLevel: "INFO",
			expected: slog.LevelInfo,
		},
		{
			name:     "WARN level",
			logLevel: "WARN",
			expected: slog.LevelWarn,
		},
		{
			name:     "ERROR level",
			logLevel: "ERROR",
			expected: slog.LevelError,
		},
		{
			name:     "invalid level defaults to INFO",
			logLevel: "INVALID",
			expected: slog.LevelInfo,
		},
		{
			name:     "empty string defaults to INFO",
			logLevel: "",
			expected: slog.LevelInfo,
		},
		{
			name:     "lowercase level",
			logLevel: "debug",
			expected: slog.LevelDebug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			result := cfg.GetLogLevel()
			assert.Equal(t, tt.expected, result)
		})
	}
}

// chdirTemp moves the test into an empty directory so that no stray
// playbooks.yaml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PLAYBOOKS_ORCHESTRATOR_URL", "http://amp.local:8170")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, constants.Development, cfg.Env)
	assert.Equal(t, 8170, cfg.Port)
	assert.Equal(t, ":8170", cfg.Addr())
	assert.Equal(t, constants.DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, constants.ServerShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, "http://amp.local:8170", cfg.Orchestrator.URL)
	assert.Equal(t, constants.DefaultClientTimeout, cfg.Orchestrator.Timeout)
	assert.Equal(t, constants.GitHubDriver, cfg.SCM.Driver)
	assert.Equal(t, "https://api.github.com", cfg.SCM.BaseURL)
	assert.Equal(t, "https://github.com", cfg.SCM.GitBaseURL)
	assert.Equal(t, constants.DefaultLogsKeepAlive, cfg.Logs.KeepAlive)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, constants.ProjectName, cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PLAYBOOKS_ENV", "Production")
	t.Setenv("PLAYBOOKS_PORT", "9000")
	t.Setenv("PLAYBOOKS_LOG_LEVEL", "debug")
	t.Setenv("PLAYBOOKS_REQUEST_TIMEOUT", "5s")
	t.Setenv("PLAYBOOKS_ORCHESTRATOR_URL", "https://amp.example.com")
	t.Setenv("PLAYBOOKS_ORCHESTRATOR_TOKEN", "secret")
	t.Setenv("PLAYBOOKS_SCM_DRIVER", "GIT")
	t.Setenv("PLAYBOOKS_SCM_GIT_BASE_URL", "https://git.example.com")
	t.Setenv("PLAYBOOKS_LOGS_KEEPALIVE", "2s")
	t.Setenv("PLAYBOOKS_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("PLAYBOOKS_TELEMETRY_OTLP_ENDPOINT", "localhost:4317")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, constants.Production, cfg.Env)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.GetLogLevel())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "secret", cfg.Orchestrator.Token)
	assert.Equal(t, constants.GitDriver, cfg.SCM.Driver)
	assert.Equal(t, "https://git.example.com", cfg.SCM.GitBaseURL)
	assert.Equal(t, 2*time.Second, cfg.Logs.KeepAlive)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
}

func TestLoad_File(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7000
orchestrator:
  url: http://file.example.com
  token: from-file
scm:
  driver: git
logs:
  keepalive: 30s
`), 0o600))

	t.Run("explicit path", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 7000, cfg.Port)
		assert.Equal(t, "http://file.example.com", cfg.Orchestrator.URL)
		assert.Equal(t, "from-file", cfg.Orchestrator.Token)
		assert.Equal(t, constants.GitDriver, cfg.SCM.Driver)
		assert.Equal(t, 30*time.Second, cfg.Logs.KeepAlive)
	})

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("PLAYBOOKS_ORCHESTRATOR_TOKEN", "from-env")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Orchestrator.Token)
	})

	t.Run("default file in working directory", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "playbooks.yaml"), []byte("orchestrator:\n  url: http://cwd.example.com\n"), 0o600))

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "http://cwd.example.com", cfg.Orchestrator.URL)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing orchestrator url",
			env:  map[string]string{},
		},
		{
			name: "malformed orchestrator url",
			env:  map[string]string{"PLAYBOOKS_ORCHESTRATOR_URL": "not a url"},
		},
		{
			name: "unknown scm driver",
			env: map[string]string{
				"PLAYBOOKS_ORCHESTRATOR_URL": "http://amp.local",
				"PLAYBOOKS_SCM_DRIVER":       "svn",
			},
		},
		{
			name: "unknown environment",
			env: map[string]string{
				"PLAYBOOKS_ORCHESTRATOR_URL": "http://amp.local",
				"PLAYBOOKS_ENV":              "staging",
			},
		},
		{
			name: "port out of range",
			env: map[string]string{
				"PLAYBOOKS_ORCHESTRATOR_URL": "http://amp.local",
				"PLAYBOOKS_PORT":             "70000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}
