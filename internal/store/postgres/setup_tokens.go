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

type SetupTokensStore struct {
	pool *pgxpool.Pool
}

func NewSetupTokensStore(pool *pgxpool.Pool) *SetupTokensStore {
	return &SetupTokensStore{pool: pool}
}

func (s *SetupTokensStore) CreateSetupToken(ctx context.Context, token domain.SetupToken) error {
	const q = `
		INSERT INTO password_setup_tokens (
			user_id, token_hash, sent_to_email, created_by_admin_id, created_at, expires_at, used_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var createdBy any
	if token.CreatedBy != "" {
		createdBy = token.CreatedBy
	}
	_, err := s.pool.Exec(ctx, q,
		token.UserID,
		token.TokenHash,
		token.SentToEmail,
		createdBy,
		token.CreatedAt,
		token.ExpiresAt,
		token.UsedAt,
	)
	if err != nil {
		return fmt.Errorf("create setup token: %w", err)
	}
	return nil
}

func (s *SetupTokensStore) GetSetupTokenByHash(ctx context.Context, tokenHash string) (domain.SetupToken, error) {
	const q = `
		SELECT id, user_id, token_hash, sent_to_email, created_by_admin_id, created_at, expires_at, used_at
		FROM password_setup_tokens
		WHERE token_hash = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		token      domain.SetupToken
		idUUID     pgtype.UUID
		userIDUUID pgtype.UUID
		createdBy  pgtype.UUID
		usedAt     pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, tokenHash).Scan(
		&idUUID,
		&userIDUUID,
		&token.TokenHash,
		&token.SentToEmail,
		&createdBy,
		&token.CreatedAt,
		&token.ExpiresAt,
		&usedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SetupToken{}, domain.ErrNotFound
		}
		return domain.SetupToken{}, fmt.Errorf("get setup token: %w", err)
	}

	token.ID = uuidOrEmpty(idUUID)
	token.UserID = uuidOrEmpty(userIDUUID)
	token.CreatedBy = uuidOrEmpty(createdBy)
	token.UsedAt = timestamptzPtr(usedAt)
	return token, nil
}

func (s *SetupTokensStore) MarkSetupTokenUsed(ctx context.Context, tokenHash string, when time.Time) error {
	const q = `
		UPDATE password_setup_tokens
		SET used_at = $2
		WHERE token_hash = $1
	`
	tag, err := s.pool.Exec(ctx, q, tokenHash, when)
	if err != nil {
		return fmt.Errorf("mark setup token used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
