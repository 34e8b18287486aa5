package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApplicationsStore struct {
	pool *pgxpool.Pool
}

func NewApplicationsStore(pool *pgxpool.Pool) *ApplicationsStore {
	return &ApplicationsStore{pool: pool}
}

const applicationColumns = `
	id, first_name, last_name, email, status, admin_comment, reviewed_at,
	major, graduation_year, university, linkedin_url,
	created_at, updated_at
`

func (s *ApplicationsStore) CreateApplication(ctx context.Context, a domain.Application) (domain.Application, error) {
	q := `
		INSERT INTO applications (
			first_name, last_name, email,
			major, graduation_year, university, linkedin_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + applicationColumns

	row := s.pool.QueryRow(ctx, q,
		a.FirstName,
		a.LastName,
		a.Email,
		nullIfEmpty(a.Major),
		nullableInt(a.GraduationYear),
		nullIfEmpty(a.University),
		nullIfEmpty(a.LinkedInURL),
	)
	out, err := scanApplication(row)
	if err != nil {
		return domain.Application{}, fmt.Errorf("create application: %w", err)
	}
	return out, nil
}

func (s *ApplicationsStore) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	a, err := scanApplication(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

// GetActiveApplicationByEmail finds a pending or approved application for
// the address. Rejected applications do not block re-applying.
func (s *ApplicationsStore) GetActiveApplicationByEmail(ctx context.Context, email string) (domain.Application, error) {
	q := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE lower(email) = lower($1) AND status IN ('pending', 'approved')
		ORDER BY created_at DESC
		LIMIT 1
	`

	a, err := scanApplication(s.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, fmt.Errorf("get application by email: %w", err)
	}
	return a, nil
}

func (s *ApplicationsStore) ListApplications(ctx context.Context, status domain.ApplicationStatus, limit int) ([]domain.Application, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	q := `SELECT ` + applicationColumns + ` FROM applications`
	args := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

func (s *ApplicationsStore) SetApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus, adminComment string, when time.Time) error {
	const q = `
		UPDATE applications
		SET status = $2, admin_comment = $3, reviewed_at = $4, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, id, status, nullIfEmpty(adminComment), when)
	if err != nil {
		return fmt.Errorf("set application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ApplicationsStore) DeleteApplication(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM applications WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanApplication(row pgx.Row) (domain.Application, error) {
	var (
		a          domain.Application
		idUUID     pgtype.UUID
		comment    pgtype.Text
		reviewedTS pgtype.Timestamptz
		major      pgtype.Text
		gradYear   pgtype.Int4
		university pgtype.Text
		linkedin   pgtype.Text
	)
	err := row.Scan(
		&idUUID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.Status,
		&comment,
		&reviewedTS,
		&major,
		&gradYear,
		&university,
		&linkedin,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Application{}, err
	}

	a.ID = uuidOrEmpty(idUUID)
	a.AdminComment = textOrEmpty(comment)
	a.ReviewedAt = timestamptzPtr(reviewedTS)
	a.Major = textOrEmpty(major)
	a.GraduationYear = int4Ptr(gradYear)
	a.University = textOrEmpty(university)
	a.LinkedInURL = textOrEmpty(linkedin)
	return a, nil
}
