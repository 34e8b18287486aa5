package service

import (
	"context"
	"strings"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
)

type CatalogStore interface {
	CreateCertification(ctx context.Context, c domain.Certification) (domain.Certification, error)
	UpdateCertification(ctx context.Context, c domain.Certification) (domain.Certification, error)
	ListCertifications(ctx context.Context) ([]domain.Certification, error)
	DeleteCertification(ctx context.Context, id string) (bool, error)

	CreateInternship(ctx context.Context, i domain.Internship) (domain.Internship, error)
	UpdateInternship(ctx context.Context, i domain.Internship) (domain.Internship, error)
	ListInternships(ctx context.Context) ([]domain.Internship, error)
	DeleteInternship(ctx context.Context, id string) (bool, error)
}

type ContentBlocksStore interface {
	UpsertContentBlock(ctx context.Context, b domain.ContentBlock) (domain.ContentBlock, error)
	GetContentBlock(ctx context.Context, slug string) (domain.ContentBlock, error)
	ListContentBlocks(ctx context.Context) ([]domain.ContentBlock, error)
}

// ContentService covers the browsable resources (certifications,
// internships) and slug-keyed site copy.
type ContentService struct {
	Catalog CatalogStore
	Blocks  ContentBlocksStore
}

func (s *ContentService) CreateCertification(ctx context.Context, c domain.Certification) (domain.Certification, error) {
	if strings.TrimSpace(c.Title) == "" {
		return domain.Certification{}, domain.NewValidationError(map[string]string{"title": "required"})
	}
	return s.Catalog.CreateCertification(ctx, c)
}

func (s *ContentService) UpdateCertification(ctx context.Context, c domain.Certification) (domain.Certification, error) {
	if strings.TrimSpace(c.Title) == "" {
		return domain.Certification{}, domain.NewValidationError(map[string]string{"title": "required"})
	}
	return s.Catalog.UpdateCertification(ctx, c)
}

func (s *ContentService) ListCertifications(ctx context.Context) ([]domain.Certification, error) {
	return s.Catalog.ListCertifications(ctx)
}

func (s *ContentService) DeleteCertification(ctx context.Context, id string) error {
	deleted, err := s.Catalog.DeleteCertification(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ContentService) CreateInternship(ctx context.Context, i domain.Internship) (domain.Internship, error) {
	if err := validateInternship(i); err != nil {
		return domain.Internship{}, err
	}
	return s.Catalog.CreateInternship(ctx, i)
}

func (s *ContentService) UpdateInternship(ctx context.Context, i domain.Internship) (domain.Internship, error) {
	if err := validateInternship(i); err != nil {
		return domain.Internship{}, err
	}
	return s.Catalog.UpdateInternship(ctx, i)
}

func (s *ContentService) ListInternships(ctx context.Context) ([]domain.Internship, error) {
	return s.Catalog.ListInternships(ctx)
}

func (s *ContentService) DeleteInternship(ctx context.Context, id string) error {
	deleted, err := s.Catalog.DeleteInternship(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ContentService) UpsertContentBlock(ctx context.Context, b domain.ContentBlock) (domain.ContentBlock, error) {
	fields := map[string]string{}
	if !validSlug(b.Slug) {
		fields["slug"] = "must be 1-64 chars [a-z0-9-]"
	}
	if strings.TrimSpace(b.Body) == "" {
		fields["body"] = "required"
	}
	if len(fields) > 0 {
		return domain.ContentBlock{}, domain.NewValidationError(fields)
	}
	return s.Blocks.UpsertContentBlock(ctx, b)
}

func (s *ContentService) GetContentBlock(ctx context.Context, slug string) (domain.ContentBlock, error) {
	return s.Blocks.GetContentBlock(ctx, slug)
}

func (s *ContentService) ListContentBlocks(ctx context.Context) ([]domain.ContentBlock, error) {
	return s.Blocks.ListContentBlocks(ctx)
}

func validateInternship(i domain.Internship) error {
	fields := map[string]string{}
	if strings.TrimSpace(i.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(i.Company) == "" {
		fields["company"] = "required"
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}

func validSlug(s string) bool {
	if len(s) < 1 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
