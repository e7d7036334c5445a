package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. FASAL_SERVER_PORT
const EnvPrefix = "FASAL_"

// ConfigPathEnvVar names a YAML config file when no path is given
const ConfigPathEnvVar = "FASAL_CONFIG"

// sections are the top-level keys env names are split on. rate_limit
// contains an underscore so a plain replace cannot be used.
var sections = []string{"rate_limit", "server", "models", "history", "i18n_remote", "i18n", "features", "log", "cors"}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Version: "dev",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Models: ModelsConfig{
			Dir:   "models",
			Yield: "voting_yield.gob",
			Crop:  "rf_crop.gob",
		},
		History: HistoryConfig{
			Enabled: true,
			Driver:  "sqlite3",
			DSN:     "fasal-vikas.db",
		},
		I18n: I18nConfig{
			Default: "en",
			Remote: RemoteConfig{
				Enabled:   false,
				URL:       "https://libretranslate.de/translate",
				Timeout:   3 * time.Second,
				CacheSize: 1024,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 120,
			Window:   time.Minute,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// FASAL_* environment variables, in increasing priority. An empty path
// falls back to $FASAL_CONFIG.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitList(k, "cors.origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps FASAL_RATE_LIMIT_WINDOW to rate_limit.window and
// FASAL_I18N_REMOTE_URL to i18n.remote.url.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "version" {
		return key
	}
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s+"_"); ok {
			return strings.ReplaceAll(s, "i18n_remote", "i18n.remote") + "." + rest
		}
	}
	return key
}

func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}
	if c.Models.Yield == "" {
		errs = append(errs, errors.New("models.yield is required"))
	}
	if c.Models.Crop == "" {
		errs = append(errs, errors.New("models.crop is required"))
	}
	if c.History.Enabled {
		switch c.History.Driver {
		case "sqlite3", "postgres":
		default:
			errs = append(errs, fmt.Errorf("history.driver must be sqlite3 or postgres, got %q", c.History.Driver))
		}
		if c.History.DSN == "" {
			errs = append(errs, errors.New("history.dsn is required when history is enabled"))
		}
	}
	if c.I18n.Remote.Enabled {
		if c.I18n.Remote.URL == "" {
			errs = append(errs, errors.New("i18n.remote.url is required when remote translation is enabled"))
		}
		if c.I18n.Remote.Timeout <= 0 {
			errs = append(errs, errors.New("i18n.remote.timeout must be positive"))
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("rate_limit.requests and rate_limit.window must be positive"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
