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

type ProfilesStore struct {
	pool *pgxpool.Pool
}

func NewProfilesStore(pool *pgxpool.Pool) *ProfilesStore {
	return &ProfilesStore{pool: pool}
}

const profileColumns = `
	user_id, first_name, last_name, email, username,
	temp_password, is_temp_password_used,
	major, graduation_year, university, linkedin_url,
	created_at, updated_at
`

// UpsertProfile inserts or replaces the profile row for p.UserID. The
// user_id primary key is what enforces at most one profile per identity.
func (s *ProfilesStore) UpsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	q := `
		INSERT INTO profiles (
			user_id, first_name, last_name, email, username,
			temp_password, is_temp_password_used,
			major, graduation_year, university, linkedin_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			temp_password = EXCLUDED.temp_password,
			is_temp_password_used = EXCLUDED.is_temp_password_used,
			major = EXCLUDED.major,
			graduation_year = EXCLUDED.graduation_year,
			university = EXCLUDED.university,
			linkedin_url = EXCLUDED.linkedin_url,
			updated_at = now()
		RETURNING ` + profileColumns

	row := s.pool.QueryRow(ctx, q,
		p.UserID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Username,
		nullIfEmpty(p.TempPassword),
		p.IsTempPasswordUsed,
		nullIfEmpty(p.Major),
		nullableInt(p.GraduationYear),
		nullIfEmpty(p.University),
		nullIfEmpty(p.LinkedInURL),
	)
	out, err := scanProfile(row)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return out, nil
}

func (s *ProfilesStore) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := scanProfile(s.pool.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile by user id: %w", err)
	}
	return p, nil
}

func (s *ProfilesStore) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1) LIMIT 1`

	p, err := scanProfile(s.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile by email: %w", err)
	}
	return p, nil
}

// MarkTempPasswordUsed flips the first-use flag and drops the stored temp
// password. Safe to call repeatedly.
func (s *ProfilesStore) MarkTempPasswordUsed(ctx context.Context, userID string) error {
	const q = `
		UPDATE profiles
		SET is_temp_password_used = true, temp_password = NULL, updated_at = now()
		WHERE user_id = $1
	`
	_, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("mark temp password used: %w", err)
	}
	return nil
}

func (s *ProfilesStore) DeleteProfile(ctx context.Context, userID string) (bool, error) {
	const q = `DELETE FROM profiles WHERE user_id = $1`
	tag, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var (
		p          domain.Profile
		userIDUUID pgtype.UUID
		tempPass   pgtype.Text
		major      pgtype.Text
		gradYear   pgtype.Int4
		university pgtype.Text
		linkedin   pgtype.Text
	)
	err := row.Scan(
		&userIDUUID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Username,
		&tempPass,
		&p.IsTempPasswordUsed,
		&major,
		&gradYear,
		&university,
		&linkedin,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}

	p.UserID = uuidOrEmpty(userIDUUID)
	p.TempPassword = textOrEmpty(tempPass)
	p.Major = textOrEmpty(major)
	p.GraduationYear = int4Ptr(gradYear)
	p.University = textOrEmpty(university)
	p.LinkedInURL = textOrEmpty(linkedin)
	return p, nil
}
