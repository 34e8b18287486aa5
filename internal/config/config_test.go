package config

import (
	"strings"
	"testing"
	"time"
)

func getenvFrom(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv(getenvFrom(nil))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Env != "dev" {
		t.Fatalf("Env: got %q", cfg.Env)
	}
	if cfg.Addr != "127.0.0.1:8080" {
		t.Fatalf("Addr: got %q", cfg.Addr)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("SessionTTL: got %s", cfg.SessionTTL)
	}
	if cfg.SetupTTL != 48*time.Hour {
		t.Fatalf("SetupTTL: got %s", cfg.SetupTTL)
	}
	if cfg.SMTP.Port != 587 {
		t.Fatalf("SMTP.Port: got %d", cfg.SMTP.Port)
	}
	if cfg.SMTP.Configured() {
		t.Fatalf("expected SMTP unconfigured by default")
	}
	if cfg.IsProd() || cfg.CookieSecure() {
		t.Fatalf("expected dev defaults to be insecure")
	}
}

func TestLoadFromEnv_ProdValidation(t *testing.T) {
	env := map[string]string{"APP_ENV": "prod"}
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error for prod without public url")
	}

	env["APP_PUBLIC_URL"] = "https://portal.example.edu"
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error for prod without db dsn")
	}

	env["APP_DB_DSN"] = "postgres://u:p@localhost:5432/portal"
	env["APP_COOKIE_SECRET"] = "short"
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error for short cookie secret in prod")
	}

	env["APP_COOKIE_SECRET"] = strings.Repeat("s", 32)
	cfg, err := LoadFromEnv(getenvFrom(env))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if !cfg.IsProd() {
		t.Fatalf("expected prod")
	}
	if !cfg.CookieSecure() {
		t.Fatalf("expected secure cookies behind https public url")
	}
}

func TestLoadFromEnv_BadValues(t *testing.T) {
	cases := []map[string]string{
		{"APP_ENV": "staging"},
		{"APP_PUBLIC_URL": "not a url at all\x00"},
		{"APP_PUBLIC_URL": "ftp://example.com"},
		{"APP_SESSION_TTL": "banana"},
		{"APP_SESSION_TTL": "-5m"},
		{"APP_SMTP_PORT": "70000"},
		{"APP_SMTP_TLS_MODE": "ssl3"},
		{"APP_SMTP_HOST": "smtp.example.com"},
		{"APP_ADMIN_BOOTSTRAP_PASSWORD": "longenoughpassword"},
	}
	for _, env := range cases {
		if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
			t.Errorf("expected error for env %v", env)
		}
	}
}

func TestLoadFromEnv_SMTP(t *testing.T) {
	env := map[string]string{
		"APP_SMTP_HOST":       "smtp.example.com",
		"APP_SMTP_PORT":       "465",
		"APP_SMTP_TLS_MODE":   "tls",
		"APP_SMTP_FROM_EMAIL": "Academy@Example.EDU",
	}
	cfg, err := LoadFromEnv(getenvFrom(env))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if !cfg.SMTP.Configured() {
		t.Fatalf("expected SMTP configured")
	}
	if cfg.SMTP.Port != 465 {
		t.Fatalf("SMTP.Port: got %d", cfg.SMTP.Port)
	}
	if cfg.SMTP.FromEmail != "academy@example.edu" {
		t.Fatalf("SMTP.FromEmail: got %q", cfg.SMTP.FromEmail)
	}
}
