package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/service"
)

type applicationResponse struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Status       string     `json:"status"`
	AdminComment string     `json:"admin_comment,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	Major          string `json:"major,omitempty"`
	GraduationYear *int   `json:"graduation_year,omitempty"`
	University     string `json:"university,omitempty"`
	LinkedInURL    string `json:"linkedin_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func toApplicationResponse(app domain.Application) applicationResponse {
	return applicationResponse{
		ID:             app.ID,
		FirstName:      app.FirstName,
		LastName:       app.LastName,
		Email:          app.Email,
		Status:         string(app.Status),
		AdminComment:   app.AdminComment,
		ReviewedAt:     app.ReviewedAt,
		Major:          app.Major,
		GraduationYear: app.GraduationYear,
		University:     app.University,
		LinkedInURL:    app.LinkedInURL,
		CreatedAt:      app.CreatedAt,
	}
}

type submitApplicationRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Major          string `json:"major"`
	GraduationYear *int   `json:"graduation_year"`
	University     string `json:"university"`
	LinkedInURL    string `json:"linkedin_url"`
}

func (a *api) handleApplicationSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	app, err := a.applicationsSvc.Submit(r.Context(), service.SubmitApplicationParams{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Major:          req.Major,
		GraduationYear: req.GraduationYear,
		University:     req.University,
		LinkedInURL:    req.LinkedInURL,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toApplicationResponse(app))
}

func (a *api) handleApplicationsList(w http.ResponseWriter, r *http.Request) {
	status := domain.ApplicationStatus(r.URL.Query().Get("status"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteDomainError(w, domain.NewValidationError(map[string]string{"limit": "must be a non-negative integer"}))
			return
		}
		limit = n
	}

	apps, err := a.applicationsSvc.List(r.Context(), status, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationResponse(app))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"applications": out})
}

func (a *api) handleApplicationGet(w http.ResponseWriter, r *http.Request) {
	app, err := a.applicationsSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

type applicationStatusRequest struct {
	Status       string `json:"status"`
	AdminComment string `json:"admin_comment"`
}

type approvalResponse struct {
	Success      bool   `json:"success"`
	TempUsername string `json:"temp_username,omitempty"`
	TempPassword string `json:"temp_password,omitempty"`
}

// handleApplicationStatus runs the review decision: approving provisions a
// portal account and returns the issued credentials, rejecting only records
// the decision. Either way the applicant is emailed best-effort.
func (a *api) handleApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req applicationStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	id := r.PathValue("id")

	switch req.Status {
	case string(domain.ApplicationApproved):
		creds, err := a.provisionSvc.Approve(r.Context(), id, req.AdminComment)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, approvalResponse{
			Success:      true,
			TempUsername: creds.Username,
			TempPassword: creds.TempPassword,
		})
	case string(domain.ApplicationRejected):
		if err := a.provisionSvc.Reject(r.Context(), id, req.AdminComment); err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, approvalResponse{Success: true})
	default:
		WriteDomainError(w, domain.NewValidationError(map[string]string{"status": "must be approved or rejected"}))
	}
}

type revokeRequest struct {
	Email string `json:"email"`
}

type revokeResponse struct {
	Success            bool `json:"success"`
	DeletedProfile     bool `json:"deleted_profile"`
	DeletedApplication bool `json:"deleted_application"`
}

func (a *api) handleApplicationRevoke(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	res, err := a.provisionSvc.Revoke(r.Context(), r.PathValue("id"), req.Email)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, revokeResponse{
		Success:            true,
		DeletedProfile:     res.DeletedProfile,
		DeletedApplication: res.DeletedApplication,
	})
}
