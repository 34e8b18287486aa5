package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type SMTP struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSMode   string
	FromName  string
	FromEmail string
}

func (s SMTP) Configured() bool { return s.Host != "" && s.FromEmail != "" }

type Config struct {
	Env          string
	Addr         string
	PublicURL    *url.URL
	DBDSN        string
	CookieSecret string
	SessionTTL   time.Duration
	SetupTTL     time.Duration
	LogLevel     string

	SMTP SMTP

	AdminBootstrapEmail     string
	AdminBootstrapFirstName string
	AdminBootstrapLastName  string
	AdminBootstrapPassword  string
}

func Load() (Config, error) {
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:          getenv("APP_ENV"),
		Addr:         getenv("APP_ADDR"),
		DBDSN:        getenv("APP_DB_DSN"),
		LogLevel:     getenv("APP_LOG_LEVEL"),
		CookieSecret: getenv("APP_COOKIE_SECRET"),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	publicURLRaw := getenv("APP_PUBLIC_URL")
	if publicURLRaw != "" {
		parsed, err := url.Parse(publicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	sessionTTL, err := parseTTL(getenv("APP_SESSION_TTL"), 30*24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("APP_SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = sessionTTL

	setupTTL, err := parseTTL(getenv("APP_SETUP_TOKEN_TTL"), 48*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("APP_SETUP_TOKEN_TTL: %w", err)
	}
	cfg.SetupTTL = setupTTL

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	cfg.SMTP = SMTP{
		Host:      getenv("APP_SMTP_HOST"),
		Username:  getenv("APP_SMTP_USERNAME"),
		Password:  getenv("APP_SMTP_PASSWORD"),
		TLSMode:   getenv("APP_SMTP_TLS_MODE"),
		FromName:  getenv("APP_SMTP_FROM_NAME"),
		FromEmail: strings.TrimSpace(strings.ToLower(getenv("APP_SMTP_FROM_EMAIL"))),
	}
	if raw := getenv("APP_SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, errors.New("APP_SMTP_PORT: must be a valid port number")
		}
		cfg.SMTP.Port = port
	} else {
		cfg.SMTP.Port = 587
	}
	switch cfg.SMTP.TLSMode {
	case "", "starttls", "tls", "none":
	default:
		return Config{}, errors.New("APP_SMTP_TLS_MODE: must be one of starttls, tls, none")
	}
	if cfg.SMTP.Host != "" && cfg.SMTP.FromEmail == "" {
		return Config{}, errors.New("APP_SMTP_FROM_EMAIL: required when APP_SMTP_HOST is set")
	}

	cfg.AdminBootstrapEmail = strings.TrimSpace(strings.ToLower(getenv("APP_ADMIN_BOOTSTRAP_EMAIL")))
	cfg.AdminBootstrapFirstName = strings.TrimSpace(getenv("APP_ADMIN_BOOTSTRAP_FIRST_NAME"))
	cfg.AdminBootstrapLastName = strings.TrimSpace(getenv("APP_ADMIN_BOOTSTRAP_LAST_NAME"))
	cfg.AdminBootstrapPassword = getenv("APP_ADMIN_BOOTSTRAP_PASSWORD")

	if cfg.AdminBootstrapPassword != "" && cfg.AdminBootstrapEmail == "" {
		return Config{}, errors.New("APP_ADMIN_BOOTSTRAP_EMAIL: required when APP_ADMIN_BOOTSTRAP_PASSWORD is set")
	}

	if cfg.IsProd() {
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.CookieSecret) < 32 {
			return Config{}, errors.New("APP_COOKIE_SECRET: must be at least 32 bytes in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) CookieSecure() bool {
	if c.PublicURL != nil {
		return c.PublicURL.Scheme == "https"
	}
	return c.IsProd()
}

func parseTTL(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		return 0, errors.New("must be > 0")
	}
	return ttl, nil
}
