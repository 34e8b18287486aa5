package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
)

type ApplicationsStore interface {
	CreateApplication(ctx context.Context, a domain.Application) (domain.Application, error)
	GetApplication(ctx context.Context, id string) (domain.Application, error)
	GetActiveApplicationByEmail(ctx context.Context, email string) (domain.Application, error)
	ListApplications(ctx context.Context, status domain.ApplicationStatus, limit int) ([]domain.Application, error)
}

type ApplicationsService struct {
	Store ApplicationsStore
}

type SubmitApplicationParams struct {
	FirstName      string
	LastName       string
	Email          string
	Major          string
	GraduationYear *int
	University     string
	LinkedInURL    string
}

// Submit records a new application in pending state. The duplicate check is
// read-then-insert: a pending or approved application for the same address
// blocks a second submission, a rejected one does not.
func (s *ApplicationsService) Submit(ctx context.Context, p SubmitApplicationParams) (domain.Application, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))

	fields := map[string]string{}
	if p.FirstName == "" {
		fields["first_name"] = "required"
	}
	if p.LastName == "" {
		fields["last_name"] = "required"
	}
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		fields["email"] = "must be a valid email"
	}
	if p.GraduationYear != nil && (*p.GraduationYear < 1900 || *p.GraduationYear > 2200) {
		fields["graduation_year"] = "must be a plausible year"
	}
	if len(fields) > 0 {
		return domain.Application{}, domain.NewValidationError(fields)
	}

	_, err := s.Store.GetActiveApplicationByEmail(ctx, p.Email)
	if err == nil {
		return domain.Application{}, domain.ErrApplicationExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Application{}, err
	}

	return s.Store.CreateApplication(ctx, domain.Application{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Major:          strings.TrimSpace(p.Major),
		GraduationYear: p.GraduationYear,
		University:     strings.TrimSpace(p.University),
		LinkedInURL:    strings.TrimSpace(p.LinkedInURL),
	})
}

func (s *ApplicationsService) Get(ctx context.Context, id string) (domain.Application, error) {
	return s.Store.GetApplication(ctx, id)
}

func (s *ApplicationsService) List(ctx context.Context, status domain.ApplicationStatus, limit int) ([]domain.Application, error) {
	switch status {
	case "", domain.ApplicationPending, domain.ApplicationApproved, domain.ApplicationRejected:
	default:
		return nil, domain.NewValidationError(map[string]string{"status": "must be pending, approved or rejected"})
	}
	return s.Store.ListApplications(ctx, status, limit)
}
