package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Version   string          `koanf:"version"`
	Server    ServerConfig    `koanf:"server"`
	Models    ModelsConfig    `koanf:"models"`
	History   HistoryConfig   `koanf:"history"`
	I18n      I18nConfig      `koanf:"i18n"`
	Features  FeaturesConfig  `koanf:"features"`
	Log       LogConfig       `koanf:"log"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ModelsConfig locates the model artifacts
type ModelsConfig struct {
	Dir   string `koanf:"dir"`
	Yield string `koanf:"yield"`
	Crop  string `koanf:"crop"`
}

// YieldPath returns the yield model path
func (m ModelsConfig) YieldPath() string {
	return resolve(m.Dir, m.Yield)
}

// CropPath returns the crop classifier path
func (m ModelsConfig) CropPath() string {
	return resolve(m.Dir, m.Crop)
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// HistoryConfig configures the prediction log
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Driver  string `koanf:"driver"`
	DSN     string `koanf:"dsn"`
}

// I18nConfig configures localization
type I18nConfig struct {
	Default string       `koanf:"default"`
	Remote  RemoteConfig `koanf:"remote"`
}

// RemoteConfig configures the optional translation service
type RemoteConfig struct {
	Enabled   bool          `koanf:"enabled"`
	URL       string        `koanf:"url"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout"`
	CacheSize int           `koanf:"cache_size"`
}

// FeaturesConfig toggles optional endpoints
type FeaturesConfig struct {
	CropRecommendation bool `koanf:"crop_recommendation"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RateLimitConfig limits API requests per client IP
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// CORSConfig lists allowed browser origins
type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
