package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var defineFlagsOnce sync.Once

// Load loads configuration from multiple sources with the following
// precedence: command line flags, environment variables, config file,
// default values.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	defineFlags()
	if !pflag.Parsed() {
		pflag.Parse()
	}

	cfgPath, _ := pflag.CommandLine.GetString("config")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("model-graphql")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/model-graphql/")
		v.AddConfigPath("$HOME/.model-graphql")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Canonical keys are dot + snake_case; env vars look like
	// MODELQL_DATABASE_MAX_OPEN_CONNS.
	v.SetEnvPrefix("MODELQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindChangedFlagsToViper(v)

	var cfg Config
	if err := v.UnmarshalExact(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		),
	); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.graphql_path", "/graphql")
	v.SetDefault("server.graphiql", true)
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors.enabled", false)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("server.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("server.cors.allowed_headers", []string{"Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("server.cors.expose_headers", []string{"X-Request-ID"})
	v.SetDefault("server.cors.allow_credentials", false)
	v.SetDefault("server.cors.max_age", 300)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("schema.models_file", "")
	v.SetDefault("schema.include_models", []string{})
	v.SetDefault("schema.exclude_models", []string{})
	v.SetDefault("schema.list_field_name_template", "{model}")
	v.SetDefault("schema.by_pk_field_name_template", "{model}_by_pk")
	v.SetDefault("schema.default_page_limit", 0)
	v.SetDefault("schema.enable_mutations", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.logs_enabled", false)
	v.SetDefault("telemetry.service_name", "model-graphql")
	v.SetDefault("telemetry.environment", "development")
	v.SetDefault("telemetry.trace_sample_ratio", 1.0)
}

func defineFlags() {
	defineFlagsOnce.Do(func() {
		pflag.String("config", "", "Path to config file")
		pflag.Bool("version", false, "Print version and exit")

		pflag.String("server.host", "0.0.0.0", "HTTP listen host")
		pflag.Int("server.port", 8080, "HTTP listen port")
		pflag.String("server.graphql_path", "/graphql", "GraphQL endpoint path")
		pflag.Bool("server.graphiql", true, "Serve the GraphiQL UI")
		pflag.Bool("server.metrics_enabled", true, "Serve Prometheus metrics")

		pflag.String("database.dsn", "", "Store DSN")
		pflag.Int("database.max_open_conns", 25, "Maximum open store connections")

		pflag.String("schema.models_file", "", "Path to the model descriptors file")
		pflag.Int("schema.default_page_limit", 0, "Default limit for list fields (0 = unbounded)")
		pflag.Bool("schema.enable_mutations", false, "Expose insert/update/delete mutations")

		pflag.String("logging.level", "info", "Log level (debug, info, warn, error)")
		pflag.String("logging.format", "json", "Log format (json, text)")
	})
}

// bindChangedFlagsToViper copies only explicitly-set flags into Viper,
// preserving precedence: flags > env > file > defaults.
func bindChangedFlagsToViper(v *viper.Viper) {
	pflag.CommandLine.Visit(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "version" {
			return
		}

		switch f.Value.Type() {
		case "string":
			val, _ := pflag.CommandLine.GetString(f.Name)
			v.Set(f.Name, val)
		case "int":
			val, _ := pflag.CommandLine.GetInt(f.Name)
			v.Set(f.Name, val)
		case "bool":
			val, _ := pflag.CommandLine.GetBool(f.Name)
			v.Set(f.Name, val)
		case "stringSlice":
			val, _ := pflag.CommandLine.GetStringSlice(f.Name)
			v.Set(f.Name, val)
		default:
			v.Set(f.Name, f.Value.String())
		}
	})
}
