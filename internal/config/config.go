// Package config manages configuration for the playbooks service.
// It uses Viper for unified configuration management from files and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/amphitheatre-app/playbooks/internal/constants"
)

// Config represents the configuration of the playbooks service.
// It supports loading from a YAML file and environment variables.
type Config struct {
	Env             constants.Environment `mapstructure:"env" validate:"oneof=development production"`
	Port            int                   `mapstructure:"port" validate:"min=1,max=65535"`
	LogLevel        string                `mapstructure:"log_level"`
	RequestTimeout  time.Duration         `mapstructure:"request_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration         `mapstructure:"shutdown_timeout" validate:"min=0"`

	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	SCM          SCMConfig          `mapstructure:"scm"`
	Logs         LogsConfig         `mapstructure:"logs"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
}

// OrchestratorConfig locates the orchestration server.
type OrchestratorConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// SCMConfig selects and configures the SCM driver.
type SCMConfig struct {
	Driver  constants.SCMDriver `mapstructure:"driver" validate:"oneof=github git"`
	BaseURL string              `mapstructure:"base_url" validate:"omitempty,url"`
	Token   string              `mapstructure:"token"`
	// GitBaseURL is prepended to owner/repo when the git driver clones.
	GitBaseURL string `mapstructure:"git_base_url" validate:"omitempty,url"`
}

// LogsConfig configures log streaming.
type LogsConfig struct {
	KeepAlive time.Duration `mapstructure:"keepalive" validate:"min=0"`
}

// CORSConfig configures cross-origin requests.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TelemetryConfig configures tracing export.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

var validate = validator.New()

// keys lists every configuration key bound to an environment variable.
var keys = []string{
	"env",
	"port",
	"log_level",
	"request_timeout",
	"shutdown_timeout",
	"orchestrator.url",
	"orchestrator.token",
	"orchestrator.timeout",
	"scm.driver",
	"scm.base_url",
	"scm.token",
	"scm.git_base_url",
	"logs.keepalive",
	"cors.allowed_origins",
	"telemetry.otlp_endpoint",
	"telemetry.service_name",
}

// Load loads the configuration using Viper.
// The file at path is read when path is set, otherwise ./playbooks.yaml is
// read when present. Environment variables with the PLAYBOOKS_ prefix take
// precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := loadConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("error loading config file: %w", err)
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Env = constants.Environment(strings.ToLower(strings.TrimSpace(string(cfg.Env))))
	cfg.SCM.Driver = constants.SCMDriver(strings.ToLower(strings.TrimSpace(string(cfg.SCM.Driver))))
	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration and exits on error.
// Suitable for application startup where configuration errors should be fatal.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// GetLogLevel returns the slog.Level from the string configuration.
// Defaults to INFO if the level string is invalid.
func (c *Config) GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", string(constants.Development))
	v.SetDefault("port", 8170)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("request_timeout", constants.DefaultRequestTimeout)
	v.SetDefault("shutdown_timeout", constants.ServerShutdownTimeout)
	v.SetDefault("orchestrator.timeout", constants.DefaultClientTimeout)
	v.SetDefault("scm.driver", string(constants.GitHubDriver))
	v.SetDefault("scm.base_url", "https://api.github.com")
	v.SetDefault("scm.git_base_url", "https://github.com")
	v.SetDefault("logs.keepalive", constants.DefaultLogsKeepAlive)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("telemetry.service_name", constants.ProjectName)
}

func loadConfigFile(v *viper.Viper, path string) error {
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.SetConfigName(constants.ProjectName)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing default file is acceptable, the service runs from env vars alone.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

func bindEnvVars(v *viper.Viper) {
	for _, key := range keys {
		envVar := constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, envVar)
	}
}

// splitOrigins flattens comma separated entries, as they arrive from env vars.
func splitOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
