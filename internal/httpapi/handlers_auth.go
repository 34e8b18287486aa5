package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/auth"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
)

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func writeUser(w http.ResponseWriter, status int, u domain.User) {
	WriteJSON(w, status, userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Role:        string(u.Role),
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	})
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"login": "required", "password": "required"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.loginLimiter.Allow("ip:"+ip, now) || !a.loginLimiter.Allow("login:"+strings.ToLower(req.Login), now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	u, sessID, err := a.authSvc.Login(r.Context(), req.Login, req.Password, ip, r.UserAgent())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	cookieValue := a.cookieCodec.EncodeSessionID(sessID)
	auth.SetSessionCookie(w, cookieValue, a.sessionTTL, a.cookieSecure)

	writeUser(w, http.StatusOK, u)
}

func (a *api) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	sessID, ok := CurrentSessionID(r.Context())
	if !ok || sessID == "" {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	_ = a.authSvc.Logout(r.Context(), sessID)
	auth.ClearSessionCookie(w, a.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	writeUser(w, http.StatusOK, u)
}

type inviteRequest struct {
	Email string `json:"email"`
}

type inviteResponse struct {
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}

func (a *api) handleAdminInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	invitedBy := ""
	if u, ok := CurrentUser(r.Context()); ok {
		invitedBy = u.Email
	}

	creds, err := a.authSvc.InviteAdmin(r.Context(), req.Email, invitedBy)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, inviteResponse{
		Email:        creds.Username,
		TempPassword: creds.TempPassword,
	})
}
