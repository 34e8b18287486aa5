package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func (s *UsersStore) CreateUser(ctx context.Context, email string, role domain.UserRole, passwordHash string) (domain.User, error) {
	const q = `
		INSERT INTO users (email, role, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, role, status, created_at, updated_at, last_login_at
	`

	var (
		u           domain.User
		idUUID      pgtype.UUID
		lastLoginTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, email, role, passwordHash).Scan(
		&idUUID,
		&u.Email,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLoginTS,
	)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.LastLoginAt = timestamptzPtr(lastLoginTS)
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const q = `
		SELECT id, email, role, status, created_at, updated_at, last_login_at
		FROM users
		WHERE id = $1
	`

	var (
		u           domain.User
		idUUID      pgtype.UUID
		lastLoginTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&idUUID,
		&u.Email,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLoginTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.LastLoginAt = timestamptzPtr(lastLoginTS)
	return u, nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	const q = `
		SELECT id, email, role, status, password_hash, created_at, updated_at, last_login_at
		FROM users
		WHERE lower(email) = lower($1)
		LIMIT 1
	`
	return s.getWithPassword(ctx, q, email)
}

// GetUserByLogin resolves either the profile username or the identity email.
func (s *UsersStore) GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error) {
	const q = `
		SELECT u.id, u.email, u.role, u.status, u.password_hash, u.created_at, u.updated_at, u.last_login_at
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE lower(u.email) = lower($1) OR lower(p.username) = lower($1)
		ORDER BY (lower(u.email) = lower($1)) DESC
		LIMIT 1
	`
	return s.getWithPassword(ctx, q, login)
}

func (s *UsersStore) getWithPassword(ctx context.Context, q, arg string) (domain.UserWithPassword, error) {
	var (
		u           domain.UserWithPassword
		idUUID      pgtype.UUID
		lastLoginTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&idUUID,
		&u.Email,
		&u.Role,
		&u.Status,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLoginTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user: %w", err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.LastLoginAt = timestamptzPtr(lastLoginTS)
	return u, nil
}

func (s *UsersStore) SetPasswordHash(ctx context.Context, userID, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	const q = `
		UPDATE users
		SET last_login_at = $2, updated_at = now()
		WHERE id = $1
	`
	_, err := s.pool.Exec(ctx, q, userID, when)
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

func (s *UsersStore) DeleteUser(ctx context.Context, userID string) (bool, error) {
	const q = `DELETE FROM users WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
