package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/email"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type setupPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// handleAuthForgot mints a password setup token and emails the link. The
// response is 204 whether or not the address maps to an account, so the
// endpoint cannot be used to probe for registered emails.
func (a *api) handleAuthForgot(w http.ResponseWriter, r *http.Request) {
	if a.setupSvc == nil || a.emailSvc == nil || a.authSvc == nil {
		WriteError(w, http.StatusServiceUnavailable, "setup_unavailable", "password setup unavailable")
		return
	}

	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	addr := normalizeEmail(req.Email)
	if !validEmail(addr) {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "must be a valid email"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.loginLimiter.Allow("forgot:ip:"+ip, now) || !a.loginLimiter.Allow("forgot:email:"+addr, now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	user, err := a.authSvc.Users.GetUserByEmail(r.Context(), addr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		WriteDomainError(w, err)
		return
	}
	if user.Status == domain.UserStatusDisabled {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	token, err := a.setupSvc.CreateSetupToken(r.Context(), user.ID, addr, "")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.emailSvc.Send(r.Context(), email.PasswordSetup{
		Email:    addr,
		SetupURL: a.setupLink(r, token),
	}); err != nil {
		a.logger.Error("send setup email failed", "err", err)
		WriteError(w, http.StatusInternalServerError, "setup_failed", "failed to send setup email")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleSetupPassword(w http.ResponseWriter, r *http.Request) {
	var req setupPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"token": "required", "password": "required"}))
		return
	}
	if len(req.Password) < 12 {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"password": "must be at least 12 characters"}))
		return
	}

	if err := a.setupSvc.CompleteSetup(r.Context(), token, req.Password); err != nil {
		WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) setupLink(r *http.Request, token string) string {
	if a.publicURL != nil {
		u := *a.publicURL
		u.Path = "/setup-password"
		u.RawQuery = "token=" + url.QueryEscape(token)
		return u.String()
	}
	scheme := "http"
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return fmt.Sprintf("%s://%s/setup-password?token=%s", scheme, r.Host, url.QueryEscape(token))
}
