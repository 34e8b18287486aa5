package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
)

type stubApplicationsStore struct {
	t *testing.T

	createFunc    func(context.Context, domain.Application) (domain.Application, error)
	getFunc       func(context.Context, string) (domain.Application, error)
	getActiveFunc func(context.Context, string) (domain.Application, error)
	listFunc      func(context.Context, domain.ApplicationStatus, int) ([]domain.Application, error)
}

func (s *stubApplicationsStore) CreateApplication(ctx context.Context, a domain.Application) (domain.Application, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, a)
	}
	s.t.Fatalf("CreateApplication called unexpectedly")
	return domain.Application{}, context.Canceled
}

func (s *stubApplicationsStore) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, id)
	}
	s.t.Fatalf("GetApplication called unexpectedly")
	return domain.Application{}, context.Canceled
}

func (s *stubApplicationsStore) GetActiveApplicationByEmail(ctx context.Context, addr string) (domain.Application, error) {
	if s.getActiveFunc != nil {
		return s.getActiveFunc(ctx, addr)
	}
	s.t.Fatalf("GetActiveApplicationByEmail called unexpectedly")
	return domain.Application{}, context.Canceled
}

func (s *stubApplicationsStore) ListApplications(ctx context.Context, status domain.ApplicationStatus, limit int) ([]domain.Application, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, status, limit)
	}
	s.t.Fatalf("ListApplications called unexpectedly")
	return nil, context.Canceled
}

func TestSubmit_NormalizesAndCreates(t *testing.T) {
	var created domain.Application
	store := &stubApplicationsStore{
		t: t,
		getActiveFunc: func(_ context.Context, addr string) (domain.Application, error) {
			if addr != "jane@uc.edu" {
				t.Fatalf("expected normalized email, got %q", addr)
			}
			return domain.Application{}, domain.ErrNotFound
		},
		createFunc: func(_ context.Context, a domain.Application) (domain.Application, error) {
			created = a
			a.ID = "app-1"
			a.Status = domain.ApplicationPending
			return a, nil
		},
	}

	svc := &ApplicationsService{Store: store}

	out, err := svc.Submit(context.Background(), SubmitApplicationParams{
		FirstName: " Jane ",
		LastName:  " Doe ",
		Email:     " Jane@UC.edu ",
		Major:     " Finance ",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if created.FirstName != "Jane" || created.LastName != "Doe" {
		t.Fatalf("expected trimmed names, got %q %q", created.FirstName, created.LastName)
	}
	if created.Email != "jane@uc.edu" || created.Major != "Finance" {
		t.Fatalf("unexpected normalization: %+v", created)
	}
	if out.Status != domain.ApplicationPending {
		t.Fatalf("status: got %s", out.Status)
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc := &ApplicationsService{Store: &stubApplicationsStore{t: t}}

	year := 1234
	_, err := svc.Submit(context.Background(), SubmitApplicationParams{
		Email:          "bad",
		GraduationYear: &year,
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"first_name", "last_name", "email", "graduation_year"} {
		if ve.Fields[field] == "" {
			t.Errorf("expected error for field %s, got %v", field, ve.Fields)
		}
	}
}

func TestSubmit_ActiveApplicationBlocks(t *testing.T) {
	store := &stubApplicationsStore{
		t: t,
		getActiveFunc: func(_ context.Context, _ string) (domain.Application, error) {
			return domain.Application{ID: "app-1", Status: domain.ApplicationPending}, nil
		},
	}

	svc := &ApplicationsService{Store: store}

	_, err := svc.Submit(context.Background(), SubmitApplicationParams{
		FirstName: "Jane", LastName: "Doe", Email: "jane@uc.edu",
	})
	if !errors.Is(err, domain.ErrApplicationExists) {
		t.Fatalf("expected application exists, got %v", err)
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	svc := &ApplicationsService{Store: &stubApplicationsStore{t: t}}

	_, err := svc.List(context.Background(), "archived", 0)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}

	store := &stubApplicationsStore{
		t: t,
		listFunc: func(_ context.Context, status domain.ApplicationStatus, _ int) ([]domain.Application, error) {
			if status != domain.ApplicationPending {
				t.Fatalf("unexpected status filter: %s", status)
			}
			return nil, nil
		},
	}
	svc = &ApplicationsService{Store: store}
	if _, err := svc.List(context.Background(), domain.ApplicationPending, 50); err != nil {
		t.Fatalf("List: %v", err)
	}
}
