package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid request")
	case errors.Is(err, domain.ErrSetupTokenInvalid):
		WriteError(w, http.StatusBadRequest, "setup_token_invalid", "setup link is invalid")
	case errors.Is(err, domain.ErrSetupTokenExpired):
		WriteError(w, http.StatusBadRequest, "setup_token_expired", "setup link has expired")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid login or password")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrUserDisabled):
		WriteError(w, http.StatusForbidden, "user_disabled", "user is disabled")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "email_taken", "email already in use")
	case errors.Is(err, domain.ErrApplicationExists):
		WriteError(w, http.StatusConflict, "application_exists", "an application for this email is already on file")
	case errors.Is(err, domain.ErrDuplicateRsvp):
		WriteError(w, http.StatusConflict, "duplicate_rsvp", "this email already has an rsvp for this event")
	case errors.Is(err, domain.ErrEventFull):
		WriteError(w, http.StatusConflict, "event_full", "event is at capacity and has no waitlist")
	case errors.Is(err, domain.ErrIdentityWrite):
		WriteError(w, http.StatusInternalServerError, "identity_error", "account identity step failed")
	case errors.Is(err, domain.ErrProfileWrite):
		WriteError(w, http.StatusInternalServerError, "profile_error", "profile write failed")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
