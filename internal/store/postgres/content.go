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

type ContentStore struct {
	pool *pgxpool.Pool
}

func NewContentStore(pool *pgxpool.Pool) *ContentStore {
	return &ContentStore{pool: pool}
}

func (s *ContentStore) UpsertContentBlock(ctx context.Context, b domain.ContentBlock) (domain.ContentBlock, error) {
	const q = `
		INSERT INTO content_blocks (slug, title, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			updated_at = now()
		RETURNING slug, title, body, updated_at
	`

	var (
		out   domain.ContentBlock
		title pgtype.Text
	)
	err := s.pool.QueryRow(ctx, q, b.Slug, nullIfEmpty(b.Title), b.Body).Scan(
		&out.Slug,
		&title,
		&out.Body,
		&out.UpdatedAt,
	)
	if err != nil {
		return domain.ContentBlock{}, fmt.Errorf("upsert content block: %w", err)
	}
	out.Title = textOrEmpty(title)
	return out, nil
}

func (s *ContentStore) GetContentBlock(ctx context.Context, slug string) (domain.ContentBlock, error) {
	const q = `SELECT slug, title, body, updated_at FROM content_blocks WHERE slug = $1`

	var (
		out   domain.ContentBlock
		title pgtype.Text
	)
	err := s.pool.QueryRow(ctx, q, slug).Scan(&out.Slug, &title, &out.Body, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ContentBlock{}, domain.ErrNotFound
		}
		return domain.ContentBlock{}, fmt.Errorf("get content block: %w", err)
	}
	out.Title = textOrEmpty(title)
	return out, nil
}

func (s *ContentStore) ListContentBlocks(ctx context.Context) ([]domain.ContentBlock, error) {
	const q = `SELECT slug, title, body, updated_at FROM content_blocks ORDER BY slug ASC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list content blocks: %w", err)
	}
	defer rows.Close()

	var out []domain.ContentBlock
	for rows.Next() {
		var (
			b     domain.ContentBlock
			title pgtype.Text
		)
		if err := rows.Scan(&b.Slug, &title, &b.Body, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content block: %w", err)
		}
		b.Title = textOrEmpty(title)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list content blocks: %w", err)
	}
	return out, nil
}
