package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultAccessTTL          = "15m"
	defaultRefreshTTL         = "240h"
	defaultCookieSecure       = "false"
	defaultCookieSameSite     = "Lax"
	defaultCookiePath         = "/api/v1/auth"
	defaultAccessTokenSecret  = "change-me-access-secret"
	defaultRefreshTokenSecret = "change-me-refresh-secret"
	defaultUploadsDir         = "./uploads"
	defaultStaticBase         = "/static/uploads"
	defaultPort               = "8080"
)

// Config is loaded once at startup and injected into services; secrets are
// never read from the environment after boot.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CookieSecure       bool
	CookieSameSite     string
	CookiePath         string
	UploadsDir         string
	StaticBase         string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.AccessTokenSecret = strings.TrimSpace(getEnv("ACCESS_TOKEN_SECRET", defaultAccessTokenSecret))
	cfg.RefreshTokenSecret = strings.TrimSpace(getEnv("REFRESH_TOKEN_SECRET", defaultRefreshTokenSecret))

	var err error
	cfg.AccessTokenTTL, err = parseDurationEnv("ACCESS_TOKEN_TTL", defaultAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.RefreshTokenTTL, err = parseDurationEnv("REFRESH_TOKEN_TTL", defaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)
	cfg.CookieSameSite = strings.TrimSpace(getEnv("COOKIE_SAMESITE", defaultCookieSameSite))
	cfg.CookiePath = strings.TrimSpace(getEnv("COOKIE_PATH", defaultCookiePath))
	cfg.UploadsDir = strings.TrimSpace(getEnv("UPLOADS_DIR", defaultUploadsDir))
	cfg.StaticBase = strings.TrimSpace(getEnv("STATIC_BASE", defaultStaticBase))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("auth cookie config: secure=%t, sameSite=%s, path=%s", cfg.CookieSecure, cfg.CookieSameSite, cfg.CookiePath)

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be > 0")
	}
	if cfg.RefreshTokenTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be > 0")
	}
	if cfg.RefreshTokenTTL <= cfg.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		// Distinct keys per token class: compromise of one must not forge the other.
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if cfg.CookiePath == "" {
		return fmt.Errorf("COOKIE_PATH must not be empty")
	}
	if cfg.CookieSameSite == "" {
		return fmt.Errorf("COOKIE_SAMESITE must not be empty")
	}
	sameSite := strings.ToLower(strings.TrimSpace(cfg.CookieSameSite))
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.AccessTokenSecret, defaultAccessTokenSecret) {
			return fmt.Errorf("in prod/release ACCESS_TOKEN_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenSecret, defaultRefreshTokenSecret) {
			return fmt.Errorf("in prod/release REFRESH_TOKEN_SECRET must be set and not default")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
