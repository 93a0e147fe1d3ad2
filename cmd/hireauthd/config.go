package main

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// serverConfig holds daemon configuration loaded from the environment. An
// optional .env file is read first; real environment variables override it.
type serverConfig struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	// RedisAddr is the session registry backend.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty selects the in-memory account
	// store, for development only.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// AccessSecret and RefreshSecret sign the two token classes. Required,
	// at least 32 bytes each, and must differ.
	AccessSecret  string `mapstructure:"ACCESS_SECRET"`
	RefreshSecret string `mapstructure:"REFRESH_SECRET"`
	// AccessTTL and RefreshTTL are Go duration strings.
	AccessTTL  time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL time.Duration `mapstructure:"REFRESH_TTL"`
	// MaxSessions caps concurrent refresh sessions per account.
	MaxSessions int `mapstructure:"MAX_SESSIONS"`
	// CookieSecure marks the refresh cookie Secure. Disable only for local
	// plain-HTTP development.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func loadConfig() (serverConfig, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine, e.g. in CI

	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ACCESS_TTL", "15m")
	v.SetDefault("REFRESH_TTL", "168h")
	v.SetDefault("MAX_SESSIONS", 5)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("LOG_LEVEL", "info")

	var cfg serverConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return serverConfig{}, err
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return serverConfig{}, errors.New("ACCESS_SECRET and REFRESH_SECRET are required")
	}
	return cfg, nil
}
