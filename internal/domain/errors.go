package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrEmailTaken         = errors.New("email_taken")
	ErrApplicationExists  = errors.New("application_exists")
	ErrDuplicateRsvp      = errors.New("duplicate_rsvp")
	ErrEventFull          = errors.New("event_full")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserDisabled       = errors.New("user_disabled")
	ErrSetupTokenInvalid  = errors.New("setup_token_invalid")
	ErrSetupTokenExpired  = errors.New("setup_token_expired")
	ErrValidation         = errors.New("validation")

	// Provisioning step markers. The approval workflow wraps store failures
	// with these so callers can tell which step gave up.
	ErrIdentityWrite = errors.New("identity_write")
	ErrProfileWrite  = errors.New("profile_write")
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}
