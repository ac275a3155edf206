package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/coffee-meetup/config.yaml",
}

// envMappings maps environment variable names to config paths. Variables not
// listed here are ignored.
var envMappings = map[string]string{
	"environment": "environment",

	"port":                "server.port",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"shutdown_timeout":    "server.shutdown_timeout",

	"database_url":        "database.url",
	"db_host":             "database.host",
	"db_port":             "database.port",
	"db_user":             "database.user",
	"db_password":         "database.password",
	"db_name":             "database.name",
	"db_sslmode":          "database.sslmode",
	"db_max_conns":        "database.max_conns",
	"db_connect_attempts": "database.connect_attempts",

	"jwt_secret": "auth.jwt_secret",
	"jwt_issuer": "auth.issuer",
	"jwt_ttl":    "auth.token_ttl",

	"default_capacity":     "booking.default_capacity",
	"reveal_window_days":   "booking.reveal_window_days",
	"reminder_window_days": "booking.reminder_window_days",
	"upcoming_limit":       "booking.upcoming_limit",
	"meetup_timezone":      "booking.timezone",

	"reminder_enabled":        "reminder.enabled",
	"reminder_run_at":         "reminder.run_at",
	"reminder_max_concurrent": "reminder.max_concurrent",
	"reminder_send_rate":      "reminder.send_rate",

	"smtp_enabled":   "smtp.enabled",
	"smtp_host":      "smtp.host",
	"smtp_port":      "smtp.port",
	"smtp_user":      "smtp.user",
	"smtp_password":  "smtp.password",
	"smtp_from":      "smtp.from",
	"smtp_from_name": "smtp.from_name",
	"smtp_use_tls":   "smtp.use_tls",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// sliceConfigPaths are accepted as comma-separated strings from the environment.
var sliceConfigPaths = []string{"server.cors_origins"}

// Load resolves configuration: defaults, then the config file if one exists,
// then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
