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

type EventsStore struct {
	pool *pgxpool.Pool
}

func NewEventsStore(pool *pgxpool.Pool) *EventsStore {
	return &EventsStore{pool: pool}
}

const eventColumns = `
	id, title, description, location, event_type,
	starts_at, ends_at, capacity, allow_waitlist,
	created_at, updated_at
`

func (s *EventsStore) CreateEvent(ctx context.Context, e domain.CalendarEvent) (domain.CalendarEvent, error) {
	q := `
		INSERT INTO events (title, description, location, event_type, starts_at, ends_at, capacity, allow_waitlist)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns

	row := s.pool.QueryRow(ctx, q,
		e.Title,
		nullIfEmpty(e.Description),
		nullIfEmpty(e.Location),
		nullIfEmpty(e.EventType),
		e.StartsAt,
		nullableTime(e.EndsAt),
		e.Capacity,
		e.AllowWaitlist,
	)
	out, err := scanEvent(row)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("create event: %w", err)
	}
	return out, nil
}

func (s *EventsStore) UpdateEvent(ctx context.Context, e domain.CalendarEvent) (domain.CalendarEvent, error) {
	q := `
		UPDATE events
		SET title = $2, description = $3, location = $4, event_type = $5,
			starts_at = $6, ends_at = $7, capacity = $8, allow_waitlist = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + eventColumns

	row := s.pool.QueryRow(ctx, q,
		e.ID,
		e.Title,
		nullIfEmpty(e.Description),
		nullIfEmpty(e.Location),
		nullIfEmpty(e.EventType),
		e.StartsAt,
		nullableTime(e.EndsAt),
		e.Capacity,
		e.AllowWaitlist,
	)
	out, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CalendarEvent{}, domain.ErrNotFound
		}
		return domain.CalendarEvent{}, fmt.Errorf("update event: %w", err)
	}
	return out, nil
}

func (s *EventsStore) GetEvent(ctx context.Context, id string) (domain.CalendarEvent, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CalendarEvent{}, domain.ErrNotFound
		}
		return domain.CalendarEvent{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *EventsStore) ListEvents(ctx context.Context, from time.Time, limit int) ([]domain.CalendarEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	q := `SELECT ` + eventColumns + ` FROM events`
	args := []any{}
	if !from.IsZero() {
		q += ` WHERE starts_at >= $1`
		args = append(args, from)
	}
	q += fmt.Sprintf(` ORDER BY starts_at ASC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (s *EventsStore) DeleteEvent(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM events WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanEvent(row pgx.Row) (domain.CalendarEvent, error) {
	var (
		e           domain.CalendarEvent
		idUUID      pgtype.UUID
		description pgtype.Text
		location    pgtype.Text
		eventType   pgtype.Text
		endsTS      pgtype.Timestamptz
	)
	err := row.Scan(
		&idUUID,
		&e.Title,
		&description,
		&location,
		&eventType,
		&e.StartsAt,
		&endsTS,
		&e.Capacity,
		&e.AllowWaitlist,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return domain.CalendarEvent{}, err
	}

	e.ID = uuidOrEmpty(idUUID)
	e.Description = textOrEmpty(description)
	e.Location = textOrEmpty(location)
	e.EventType = textOrEmpty(eventType)
	e.EndsAt = timestamptzPtr(endsTS)
	return e, nil
}

type RsvpsStore struct {
	pool *pgxpool.Pool
}

func NewRsvpsStore(pool *pgxpool.Pool) *RsvpsStore {
	return &RsvpsStore{pool: pool}
}

const rsvpColumns = `id, event_id, name, email, status, confirmation_code, created_at`

// CreateRsvp inserts the row; the partial unique index on
// (event_id, lower(email)) for non-cancelled rows surfaces duplicates.
func (s *RsvpsStore) CreateRsvp(ctx context.Context, r domain.Rsvp) (domain.Rsvp, error) {
	q := `
		INSERT INTO event_rsvps (event_id, name, email, status, confirmation_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + rsvpColumns

	row := s.pool.QueryRow(ctx, q, r.EventID, r.Name, r.Email, r.Status, r.ConfirmationCode)
	out, err := scanRsvp(row)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return domain.Rsvp{}, domain.ErrDuplicateRsvp
		}
		return domain.Rsvp{}, fmt.Errorf("create rsvp: %w", err)
	}
	return out, nil
}

func (s *RsvpsStore) GetRsvpByEmail(ctx context.Context, eventID, email string) (domain.Rsvp, error) {
	q := `
		SELECT ` + rsvpColumns + `
		FROM event_rsvps
		WHERE event_id = $1 AND lower(email) = lower($2) AND status <> 'cancelled'
		LIMIT 1
	`

	r, err := scanRsvp(s.pool.QueryRow(ctx, q, eventID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rsvp{}, domain.ErrNotFound
		}
		return domain.Rsvp{}, fmt.Errorf("get rsvp by email: %w", err)
	}
	return r, nil
}

func (s *RsvpsStore) CountConfirmed(ctx context.Context, eventID string) (int, error) {
	const q = `SELECT count(*) FROM event_rsvps WHERE event_id = $1 AND status = 'confirmed'`

	var n int
	if err := s.pool.QueryRow(ctx, q, eventID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count confirmed rsvps: %w", err)
	}
	return n, nil
}

func (s *RsvpsStore) ListRsvps(ctx context.Context, eventID string) ([]domain.Rsvp, error) {
	q := `
		SELECT ` + rsvpColumns + `
		FROM event_rsvps
		WHERE event_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	defer rows.Close()

	var out []domain.Rsvp
	for rows.Next() {
		r, err := scanRsvp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return out, nil
}

func (s *RsvpsStore) CancelRsvp(ctx context.Context, eventID, confirmationCode string) error {
	const q = `
		UPDATE event_rsvps
		SET status = 'cancelled'
		WHERE event_id = $1 AND confirmation_code = $2 AND status <> 'cancelled'
	`
	tag, err := s.pool.Exec(ctx, q, eventID, confirmationCode)
	if err != nil {
		return fmt.Errorf("cancel rsvp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRsvp(row pgx.Row) (domain.Rsvp, error) {
	var (
		r           domain.Rsvp
		idUUID      pgtype.UUID
		eventIDUUID pgtype.UUID
	)
	err := row.Scan(
		&idUUID,
		&eventIDUUID,
		&r.Name,
		&r.Email,
		&r.Status,
		&r.ConfirmationCode,
		&r.CreatedAt,
	)
	if err != nil {
		return domain.Rsvp{}, err
	}

	r.ID = uuidOrEmpty(idUUID)
	r.EventID = uuidOrEmpty(eventIDUUID)
	return r, nil
}
