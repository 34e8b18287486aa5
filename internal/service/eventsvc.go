package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/email"

	"github.com/google/uuid"
)

type EventsStore interface {
	CreateEvent(ctx context.Context, e domain.CalendarEvent) (domain.CalendarEvent, error)
	UpdateEvent(ctx context.Context, e domain.CalendarEvent) (domain.CalendarEvent, error)
	GetEvent(ctx context.Context, id string) (domain.CalendarEvent, error)
	ListEvents(ctx context.Context, from time.Time, limit int) ([]domain.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) (bool, error)
}

type RsvpsStore interface {
	CreateRsvp(ctx context.Context, r domain.Rsvp) (domain.Rsvp, error)
	GetRsvpByEmail(ctx context.Context, eventID, email string) (domain.Rsvp, error)
	CountConfirmed(ctx context.Context, eventID string) (int, error)
	ListRsvps(ctx context.Context, eventID string) ([]domain.Rsvp, error)
	CancelRsvp(ctx context.Context, eventID, confirmationCode string) error
}

type EventsService struct {
	Events EventsStore
	Rsvps  RsvpsStore
	Email  Notifier
	Logger *slog.Logger
	Now    func() time.Time
}

type EventParams struct {
	Title         string
	Description   string
	Location      string
	EventType     string
	StartsAt      time.Time
	EndsAt        *time.Time
	Capacity      int
	AllowWaitlist bool
}

func (p EventParams) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "required"
	}
	if p.StartsAt.IsZero() {
		fields["starts_at"] = "required"
	}
	if p.EndsAt != nil && !p.StartsAt.IsZero() && p.EndsAt.Before(p.StartsAt) {
		fields["ends_at"] = "must not be before starts_at"
	}
	if p.Capacity < 0 {
		fields["capacity"] = "must be >= 0"
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}

func (p EventParams) toEvent(id string) domain.CalendarEvent {
	return domain.CalendarEvent{
		ID:            id,
		Title:         strings.TrimSpace(p.Title),
		Description:   p.Description,
		Location:      p.Location,
		EventType:     p.EventType,
		StartsAt:      p.StartsAt,
		EndsAt:        p.EndsAt,
		Capacity:      p.Capacity,
		AllowWaitlist: p.AllowWaitlist,
	}
}

func (s *EventsService) CreateEvent(ctx context.Context, p EventParams) (domain.CalendarEvent, error) {
	if err := p.validate(); err != nil {
		return domain.CalendarEvent{}, err
	}
	return s.Events.CreateEvent(ctx, p.toEvent(""))
}

func (s *EventsService) UpdateEvent(ctx context.Context, id string, p EventParams) (domain.CalendarEvent, error) {
	if err := p.validate(); err != nil {
		return domain.CalendarEvent{}, err
	}
	return s.Events.UpdateEvent(ctx, p.toEvent(id))
}

func (s *EventsService) DeleteEvent(ctx context.Context, id string) error {
	deleted, err := s.Events.DeleteEvent(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *EventsService) GetEvent(ctx context.Context, id string) (domain.CalendarEvent, error) {
	return s.Events.GetEvent(ctx, id)
}

// ListEvents returns events ordered by start time; with upcomingOnly set it
// skips anything that already started.
func (s *EventsService) ListEvents(ctx context.Context, upcomingOnly bool, limit int) ([]domain.CalendarEvent, error) {
	var from time.Time
	if upcomingOnly {
		now := s.Now
		if now == nil {
			now = time.Now
		}
		from = now()
	}
	return s.Events.ListEvents(ctx, from, limit)
}

func (s *EventsService) ListRsvps(ctx context.Context, eventID string) ([]domain.Rsvp, error) {
	if _, err := s.Events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.Rsvps.ListRsvps(ctx, eventID)
}

type RsvpParams struct {
	Name  string
	Email string
}

// CreateRsvp registers an attendee. The capacity check is a read followed
// by an insert with no transaction around the pair; two requests racing at
// the boundary can both confirm. The unique index on (event, email) is the
// only hard guarantee.
func (s *EventsService) CreateRsvp(ctx context.Context, eventID string, p RsvpParams) (domain.Rsvp, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))

	fields := map[string]string{}
	if p.Name == "" {
		fields["name"] = "required"
	}
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		fields["email"] = "must be a valid email"
	}
	if len(fields) > 0 {
		return domain.Rsvp{}, domain.NewValidationError(fields)
	}

	event, err := s.Events.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Rsvp{}, err
	}

	_, err = s.Rsvps.GetRsvpByEmail(ctx, eventID, p.Email)
	if err == nil {
		return domain.Rsvp{}, domain.ErrDuplicateRsvp
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Rsvp{}, err
	}

	status := domain.RsvpConfirmed
	if event.Capacity > 0 {
		confirmed, err := s.Rsvps.CountConfirmed(ctx, eventID)
		if err != nil {
			return domain.Rsvp{}, err
		}
		if confirmed >= event.Capacity {
			if !event.AllowWaitlist {
				return domain.Rsvp{}, domain.ErrEventFull
			}
			status = domain.RsvpWaitlisted
		}
	}

	created, err := s.Rsvps.CreateRsvp(ctx, domain.Rsvp{
		EventID:          eventID,
		Name:             p.Name,
		Email:            p.Email,
		Status:           status,
		ConfirmationCode: uuid.NewString(),
	})
	if err != nil {
		return domain.Rsvp{}, err
	}

	if created.Status == domain.RsvpWaitlisted {
		sendBestEffort(ctx, s.Logger, s.Email, email.RsvpWaitlist{
			Name:             created.Name,
			Email:            created.Email,
			EventTitle:       event.Title,
			EventStartsAt:    event.StartsAt,
			ConfirmationCode: created.ConfirmationCode,
		})
	} else {
		sendBestEffort(ctx, s.Logger, s.Email, email.RsvpConfirmation{
			Name:             created.Name,
			Email:            created.Email,
			EventTitle:       event.Title,
			EventStartsAt:    event.StartsAt,
			EventLocation:    event.Location,
			ConfirmationCode: created.ConfirmationCode,
		})
	}

	return created, nil
}

func (s *EventsService) CancelRsvp(ctx context.Context, eventID, confirmationCode string) error {
	if confirmationCode == "" {
		return domain.NewValidationError(map[string]string{"confirmation_code": "required"})
	}
	return s.Rsvps.CancelRsvp(ctx, eventID, confirmationCode)
}
