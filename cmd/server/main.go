package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/auth"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/config"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/email"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/httpapi"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/service"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	var (
		authSvc         *service.AuthService
		applicationsSvc *service.ApplicationsService
		provisionSvc    *service.ProvisionService
		eventsSvc       *service.EventsService
		contentSvc      *service.ContentService
		setupSvc        *service.PasswordSetupService
		notifier        service.Notifier
		dbPing          func(context.Context) error
	)

	portalURL := ""
	if cfg.PublicURL != nil {
		portalURL = cfg.PublicURL.String()
	}

	if cfg.SMTP.Configured() {
		notifier = &service.EmailService{
			Settings: email.SMTPSettings{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				TLSMode:  cfg.SMTP.TLSMode,
			},
			FromName:  cfg.SMTP.FromName,
			FromEmail: cfg.SMTP.FromEmail,
		}
	} else {
		logger.Info("smtp not configured, outbound email disabled")
	}

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		profiles := postgres.NewProfilesStore(pgPool)
		applications := postgres.NewApplicationsStore(pgPool)
		sessions := postgres.NewSessionsStore(pgPool)
		setupTokens := postgres.NewSetupTokensStore(pgPool)
		events := postgres.NewEventsStore(pgPool)
		rsvps := postgres.NewRsvpsStore(pgPool)
		catalog := postgres.NewCatalogStore(pgPool)
		content := postgres.NewContentStore(pgPool)

		if err := bootstrapAdminUser(context.Background(), logger, users, cfg); err != nil {
			logger.Error("bootstrap admin failed", "err", err)
			os.Exit(1)
		}

		authSvc = &service.AuthService{
			Users:      users,
			Sessions:   sessions,
			Profiles:   profiles,
			Email:      notifier,
			Logger:     logger,
			PortalURL:  portalURL,
			SessionTTL: cfg.SessionTTL,
		}
		applicationsSvc = &service.ApplicationsService{Store: applications}
		provisionSvc = &service.ProvisionService{
			Applications: applications,
			Users:        users,
			Profiles:     profiles,
			Email:        notifier,
			Logger:       logger,
			PortalURL:    portalURL,
		}
		eventsSvc = &service.EventsService{
			Events: events,
			Rsvps:  rsvps,
			Email:  notifier,
			Logger: logger,
		}
		contentSvc = &service.ContentService{Catalog: catalog, Blocks: content}
		setupSvc = &service.PasswordSetupService{
			Store:    setupTokens,
			Users:    users,
			Profiles: profiles,
			TokenTTL: cfg.SetupTTL,
		}
		dbPing = pgPool.Ping
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:       logger,
		IsProd:       cfg.IsProd(),
		DBPing:       dbPing,
		Auth:         authSvc,
		Applications: applicationsSvc,
		Provision:    provisionSvc,
		Events:       eventsSvc,
		Content:      contentSvc,
		Setup:        setupSvc,
		Email:        notifier,
		CookieCodec:  auth.NewCookieCodec([]byte(cfg.CookieSecret)),
		CookieSecure: cfg.CookieSecure(),
		SessionTTL:   cfg.SessionTTL,
		PublicURL:    cfg.PublicURL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

// bootstrapAdminUser seeds the first admin identity from env so a fresh
// deployment has someone who can sign in and review applications.
func bootstrapAdminUser(ctx context.Context, logger *slog.Logger, users *postgres.UsersStore, cfg config.Config) error {
	if cfg.AdminBootstrapPassword == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.AdminBootstrapPassword) < 12 {
		return errors.New("APP_ADMIN_BOOTSTRAP_PASSWORD: must be at least 12 characters")
	}
	if cfg.AdminBootstrapEmail == "" {
		return errors.New("admin bootstrap: email is required")
	}

	_, err := users.GetUserByEmail(ctx, cfg.AdminBootstrapEmail)
	if err == nil {
		logger.Info("admin bootstrap: user already exists", "email", cfg.AdminBootstrapEmail)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("admin bootstrap: lookup user: %w", err)
	}

	hash, err := auth.HashPassword(cfg.AdminBootstrapPassword)
	if err != nil {
		return fmt.Errorf("admin bootstrap: hash password: %w", err)
	}

	_, err = users.CreateUser(ctx, cfg.AdminBootstrapEmail, domain.RoleAdmin, hash)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			logger.Info("admin bootstrap: user already exists", "email", cfg.AdminBootstrapEmail)
			return nil
		}
		return fmt.Errorf("admin bootstrap: create user: %w", err)
	}

	logger.Info("admin bootstrap: created admin user", "email", cfg.AdminBootstrapEmail)
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
