package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogStore holds the browsable resources: certifications and
// internship postings.
type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const certificationColumns = `id, title, provider, description, url, created_at, updated_at`

func (s *CatalogStore) CreateCertification(ctx context.Context, c domain.Certification) (domain.Certification, error) {
	q := `
		INSERT INTO certifications (title, provider, description, url)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + certificationColumns

	row := s.pool.QueryRow(ctx, q, c.Title, nullIfEmpty(c.Provider), nullIfEmpty(c.Description), nullIfEmpty(c.URL))
	out, err := scanCertification(row)
	if err != nil {
		return domain.Certification{}, fmt.Errorf("create certification: %w", err)
	}
	return out, nil
}

func (s *CatalogStore) UpdateCertification(ctx context.Context, c domain.Certification) (domain.Certification, error) {
	q := `
		UPDATE certifications
		SET title = $2, provider = $3, description = $4, url = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + certificationColumns

	row := s.pool.QueryRow(ctx, q, c.ID, c.Title, nullIfEmpty(c.Provider), nullIfEmpty(c.Description), nullIfEmpty(c.URL))
	out, err := scanCertification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Certification{}, domain.ErrNotFound
		}
		return domain.Certification{}, fmt.Errorf("update certification: %w", err)
	}
	return out, nil
}

func (s *CatalogStore) ListCertifications(ctx context.Context) ([]domain.Certification, error) {
	q := `SELECT ` + certificationColumns + ` FROM certifications ORDER BY title ASC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list certifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Certification
	for rows.Next() {
		c, err := scanCertification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certification: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list certifications: %w", err)
	}
	return out, nil
}

func (s *CatalogStore) DeleteCertification(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM certifications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete certification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const internshipColumns = `id, title, company, location, description, apply_url, deadline, created_at, updated_at`

func (s *CatalogStore) CreateInternship(ctx context.Context, i domain.Internship) (domain.Internship, error) {
	q := `
		INSERT INTO internships (title, company, location, description, apply_url, deadline)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + internshipColumns

	row := s.pool.QueryRow(ctx, q,
		i.Title,
		i.Company,
		nullIfEmpty(i.Location),
		nullIfEmpty(i.Description),
		nullIfEmpty(i.ApplyURL),
		nullableTime(i.Deadline),
	)
	out, err := scanInternship(row)
	if err != nil {
		return domain.Internship{}, fmt.Errorf("create internship: %w", err)
	}
	return out, nil
}

func (s *CatalogStore) UpdateInternship(ctx context.Context, i domain.Internship) (domain.Internship, error) {
	q := `
		UPDATE internships
		SET title = $2, company = $3, location = $4, description = $5,
			apply_url = $6, deadline = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + internshipColumns

	row := s.pool.QueryRow(ctx, q,
		i.ID,
		i.Title,
		i.Company,
		nullIfEmpty(i.Location),
		nullIfEmpty(i.Description),
		nullIfEmpty(i.ApplyURL),
		nullableTime(i.Deadline),
	)
	out, err := scanInternship(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Internship{}, domain.ErrNotFound
		}
		return domain.Internship{}, fmt.Errorf("update internship: %w", err)
	}
	return out, nil
}

func (s *CatalogStore) ListInternships(ctx context.Context) ([]domain.Internship, error) {
	q := `SELECT ` + internshipColumns + ` FROM internships ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}
	defer rows.Close()

	var out []domain.Internship
	for rows.Next() {
		i, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan internship: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}
	return out, nil
}

func (s *CatalogStore) DeleteInternship(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM internships WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete internship: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanCertification(row pgx.Row) (domain.Certification, error) {
	var (
		c           domain.Certification
		idUUID      pgtype.UUID
		provider    pgtype.Text
		description pgtype.Text
		url         pgtype.Text
	)
	err := row.Scan(&idUUID, &c.Title, &provider, &description, &url, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Certification{}, err
	}

	c.ID = uuidOrEmpty(idUUID)
	c.Provider = textOrEmpty(provider)
	c.Description = textOrEmpty(description)
	c.URL = textOrEmpty(url)
	return c, nil
}

func scanInternship(row pgx.Row) (domain.Internship, error) {
	var (
		i           domain.Internship
		idUUID      pgtype.UUID
		location    pgtype.Text
		description pgtype.Text
		applyURL    pgtype.Text
		deadlineTS  pgtype.Timestamptz
	)
	err := row.Scan(&idUUID, &i.Title, &i.Company, &location, &description, &applyURL, &deadlineTS, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return domain.Internship{}, err
	}

	i.ID = uuidOrEmpty(idUUID)
	i.Location = textOrEmpty(location)
	i.Description = textOrEmpty(description)
	i.ApplyURL = textOrEmpty(applyURL)
	i.Deadline = timestamptzPtr(deadlineTS)
	return i, nil
}
