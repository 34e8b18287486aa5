package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/auth"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth         *service.AuthService
	Applications *service.ApplicationsService
	Provision    *service.ProvisionService
	Events       *service.EventsService
	Content      *service.ContentService
	Setup        *service.PasswordSetupService
	Email        service.Notifier

	CookieCodec  auth.CookieCodec
	CookieSecure bool
	SessionTTL   time.Duration
	PublicURL    *url.URL
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:          logger,
		isProd:          opts.IsProd,
		dbPing:          opts.DBPing,
		authSvc:         opts.Auth,
		applicationsSvc: opts.Applications,
		provisionSvc:    opts.Provision,
		eventsSvc:       opts.Events,
		contentSvc:      opts.Content,
		setupSvc:        opts.Setup,
		emailSvc:        opts.Email,
		cookieCodec:     opts.CookieCodec,
		cookieSecure:    opts.CookieSecure,
		sessionTTL:      opts.SessionTTL,
		publicURL:       opts.PublicURL,
		loginLimiter:    newLoginLimiter(),
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /healthz", api.handleHealthz)

	if api.authSvc != nil {
		apiMux.HandleFunc("POST /v1/auth/login", api.handleAuthLogin)
		apiMux.HandleFunc("POST /v1/auth/logout", api.requireAuth(api.handleAuthLogout))
		apiMux.HandleFunc("GET /v1/auth/me", api.requireAuth(api.handleAuthMe))
		apiMux.HandleFunc("POST /v1/admin/invites", api.requireAdmin(api.handleAdminInvite))
	}

	if api.setupSvc != nil {
		apiMux.HandleFunc("POST /v1/auth/forgot", api.handleAuthForgot)
		apiMux.HandleFunc("POST /v1/auth/setup-password", api.handleSetupPassword)
	}

	if api.applicationsSvc != nil {
		apiMux.HandleFunc("POST /v1/applications", api.handleApplicationSubmit)
		apiMux.HandleFunc("GET /v1/admin/applications", api.requireAdmin(api.handleApplicationsList))
		apiMux.HandleFunc("POST /v1/admin/applications", api.requireAdmin(api.handleApplicationSubmit))
		apiMux.HandleFunc("GET /v1/admin/applications/{id}", api.requireAdmin(api.handleApplicationGet))
	}
	if api.provisionSvc != nil {
		apiMux.HandleFunc("POST /v1/admin/applications/{id}/status", api.requireAdmin(api.handleApplicationStatus))
		apiMux.HandleFunc("POST /v1/admin/applications/{id}/revoke", api.requireAdmin(api.handleApplicationRevoke))
	}

	if api.eventsSvc != nil {
		apiMux.HandleFunc("GET /v1/events", api.handleEventsList)
		apiMux.HandleFunc("GET /v1/events/{id}", api.handleEventGet)
		apiMux.HandleFunc("POST /v1/events/{id}/rsvps", api.handleRsvpCreate)
		apiMux.HandleFunc("DELETE /v1/events/{id}/rsvps/{code}", api.handleRsvpCancel)

		apiMux.HandleFunc("POST /v1/admin/events", api.requireAdmin(api.handleEventCreate))
		apiMux.HandleFunc("PUT /v1/admin/events/{id}", api.requireAdmin(api.handleEventUpdate))
		apiMux.HandleFunc("DELETE /v1/admin/events/{id}", api.requireAdmin(api.handleEventDelete))
		apiMux.HandleFunc("GET /v1/admin/events/{id}/rsvps", api.requireAdmin(api.handleRsvpsList))
	}

	if api.contentSvc != nil {
		apiMux.HandleFunc("GET /v1/certifications", api.handleCertificationsList)
		apiMux.HandleFunc("GET /v1/internships", api.handleInternshipsList)
		apiMux.HandleFunc("GET /v1/content", api.handleContentList)
		apiMux.HandleFunc("GET /v1/content/{slug}", api.handleContentGet)

		apiMux.HandleFunc("POST /v1/admin/certifications", api.requireAdmin(api.handleCertificationCreate))
		apiMux.HandleFunc("PUT /v1/admin/certifications/{id}", api.requireAdmin(api.handleCertificationUpdate))
		apiMux.HandleFunc("DELETE /v1/admin/certifications/{id}", api.requireAdmin(api.handleCertificationDelete))
		apiMux.HandleFunc("POST /v1/admin/internships", api.requireAdmin(api.handleInternshipCreate))
		apiMux.HandleFunc("PUT /v1/admin/internships/{id}", api.requireAdmin(api.handleInternshipUpdate))
		apiMux.HandleFunc("DELETE /v1/admin/internships/{id}", api.requireAdmin(api.handleInternshipDelete))
		apiMux.HandleFunc("PUT /v1/admin/content/{slug}", api.requireAdmin(api.handleContentUpsert))
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := apiMux.Handler(r)
		if pattern == "" {
			handleV1NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = CORS()(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc         *service.AuthService
	applicationsSvc *service.ApplicationsService
	provisionSvc    *service.ProvisionService
	eventsSvc       *service.EventsService
	contentSvc      *service.ContentService
	setupSvc        *service.PasswordSetupService
	emailSvc        service.Notifier

	cookieCodec  auth.CookieCodec
	cookieSecure bool
	sessionTTL   time.Duration
	publicURL    *url.URL

	loginLimiter *loginLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
