// Package config loads and validates server configuration from flags,
// environment variables, and a YAML config file.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Schema    SchemaConfig    `mapstructure:"schema"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	GraphQLPath     string        `mapstructure:"graphql_path"`
	GraphiQL        bool          `mapstructure:"graphiql"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
	MetricsPath     string        `mapstructure:"metrics_path"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// DatabaseConfig holds store connection settings.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchemaConfig holds descriptor loading and schema compilation settings.
type SchemaConfig struct {
	ModelsFile            string   `mapstructure:"models_file"`
	IncludeModels         []string `mapstructure:"include_models"`
	ExcludeModels         []string `mapstructure:"exclude_models"`
	ListFieldNameTemplate string   `mapstructure:"list_field_name_template"`
	ByPkFieldNameTemplate string   `mapstructure:"by_pk_field_name_template"`
	DefaultPageLimit      int      `mapstructure:"default_page_limit"`
	EnableMutations       bool     `mapstructure:"enable_mutations"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	Endpoint         string  `mapstructure:"endpoint"`
	Insecure         bool    `mapstructure:"insecure"`
	LogsEnabled      bool    `mapstructure:"logs_enabled"`
	ServiceName      string  `mapstructure:"service_name"`
	Environment      string  `mapstructure:"environment"`
	TraceSampleRatio float64 `mapstructure:"trace_sample_ratio"`
}

// Validate checks the configuration for errors that would prevent startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.GraphQLPath, "/") {
		return fmt.Errorf("server.graphql_path must start with /, got %q", c.Server.GraphQLPath)
	}
	if c.Server.MetricsEnabled && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return fmt.Errorf("server.metrics_path must start with /, got %q", c.Server.MetricsPath)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Schema.ModelsFile == "" {
		return fmt.Errorf("schema.models_file is required")
	}
	if c.Schema.DefaultPageLimit < 0 {
		return fmt.Errorf("schema.default_page_limit must not be negative, got %d", c.Schema.DefaultPageLimit)
	}
	for _, tmpl := range []struct{ key, value string }{
		{"schema.list_field_name_template", c.Schema.ListFieldNameTemplate},
		{"schema.by_pk_field_name_template", c.Schema.ByPkFieldNameTemplate},
	} {
		if tmpl.value != "" && !strings.Contains(tmpl.value, "{model}") {
			return fmt.Errorf("%s must contain {model}, got %q", tmpl.key, tmpl.value)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	if c.Telemetry.TraceSampleRatio < 0 || c.Telemetry.TraceSampleRatio > 1 {
		return fmt.Errorf("telemetry.trace_sample_ratio must be between 0 and 1, got %g", c.Telemetry.TraceSampleRatio)
	}

	return nil
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
