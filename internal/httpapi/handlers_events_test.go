package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/service"
)

type fakeEventsStore struct {
	events map[string]domain.CalendarEvent
}

func (f *fakeEventsStore) CreateEvent(_ context.Context, e domain.CalendarEvent) (domain.CalendarEvent, error) {
	e.ID = "evt-new"
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeEventsStore) UpdateEvent(_ context.Context, e domain.CalendarEvent) (domain.CalendarEvent, error) {
	if _, ok := f.events[e.ID]; !ok {
		return domain.CalendarEvent{}, domain.ErrNotFound
	}
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeEventsStore) GetEvent(_ context.Context, id string) (domain.CalendarEvent, error) {
	e, ok := f.events[id]
	if !ok {
		return domain.CalendarEvent{}, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventsStore) ListEvents(_ context.Context, from time.Time, _ int) ([]domain.CalendarEvent, error) {
	var out []domain.CalendarEvent
	for _, e := range f.events {
		if from.IsZero() || e.StartsAt.After(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventsStore) DeleteEvent(_ context.Context, id string) (bool, error) {
	if _, ok := f.events[id]; !ok {
		return false, nil
	}
	delete(f.events, id)
	return true, nil
}

type fakeRsvpsStore struct {
	rsvps []domain.Rsvp
}

func (f *fakeRsvpsStore) CreateRsvp(_ context.Context, r domain.Rsvp) (domain.Rsvp, error) {
	for _, existing := range f.rsvps {
		if existing.EventID == r.EventID && existing.Email == r.Email && existing.Status != domain.RsvpCancelled {
			return domain.Rsvp{}, domain.ErrDuplicateRsvp
		}
	}
	r.ID = "rsvp-" + r.Email
	f.rsvps = append(f.rsvps, r)
	return r, nil
}

func (f *fakeRsvpsStore) GetRsvpByEmail(_ context.Context, eventID, addr string) (domain.Rsvp, error) {
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.Email == addr && r.Status != domain.RsvpCancelled {
			return r, nil
		}
	}
	return domain.Rsvp{}, domain.ErrNotFound
}

func (f *fakeRsvpsStore) CountConfirmed(_ context.Context, eventID string) (int, error) {
	n := 0
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.Status == domain.RsvpConfirmed {
			n++
		}
	}
	return n, nil
}

func (f *fakeRsvpsStore) ListRsvps(_ context.Context, eventID string) ([]domain.Rsvp, error) {
	var out []domain.Rsvp
	for _, r := range f.rsvps {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRsvpsStore) CancelRsvp(_ context.Context, eventID, code string) error {
	for i, r := range f.rsvps {
		if r.EventID == eventID && r.ConfirmationCode == code && r.Status != domain.RsvpCancelled {
			f.rsvps[i].Status = domain.RsvpCancelled
			return nil
		}
	}
	return domain.ErrNotFound
}

func eventsFixture(capacity int, waitlist bool) (*api, *fakeRsvpsStore) {
	events := &fakeEventsStore{events: map[string]domain.CalendarEvent{
		"evt-1": {
			ID:            "evt-1",
			Title:         "Alumni Panel",
			StartsAt:      time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC),
			Capacity:      capacity,
			AllowWaitlist: waitlist,
		},
	}}
	rsvps := &fakeRsvpsStore{}

	a := &api{
		eventsSvc: &service.EventsService{Events: events, Rsvps: rsvps},
	}
	return a, rsvps
}

func postRsvp(t *testing.T, a *api, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/events/evt-1/rsvps", strings.NewReader(body))
	req.SetPathValue("id", "evt-1")
	rr := httptest.NewRecorder()
	a.handleRsvpCreate(rr, req)
	return rr
}

func TestRsvpCreate_Confirmed(t *testing.T) {
	a, _ := eventsFixture(10, false)

	rr := postRsvp(t, a, `{"name":"Jane Doe","email":"jane@uc.edu"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp rsvpResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "confirmed" || resp.ConfirmationCode == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRsvpCreate_WaitlistAndFull(t *testing.T) {
	a, _ := eventsFixture(1, true)

	if rr := postRsvp(t, a, `{"name":"A","email":"a@uc.edu"}`); rr.Code != http.StatusCreated {
		t.Fatalf("first rsvp status: %d", rr.Code)
	}

	rr := postRsvp(t, a, `{"name":"B","email":"b@uc.edu"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("second rsvp status: %d", rr.Code)
	}
	var resp rsvpResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "waitlisted" {
		t.Fatalf("expected waitlisted, got %q", resp.Status)
	}

	// Same event with no waitlist turns the third attendee away.
	a2, _ := eventsFixture(1, false)
	if rr := postRsvp(t, a2, `{"name":"A","email":"a@uc.edu"}`); rr.Code != http.StatusCreated {
		t.Fatalf("rsvp status: %d", rr.Code)
	}
	rr = postRsvp(t, a2, `{"name":"B","email":"b@uc.edu"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", rr.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "event_full" {
		t.Fatalf("error code: got %q", envelope.Error.Code)
	}
}

func TestRsvpCreate_Duplicate(t *testing.T) {
	a, _ := eventsFixture(10, false)

	if rr := postRsvp(t, a, `{"name":"Jane","email":"jane@uc.edu"}`); rr.Code != http.StatusCreated {
		t.Fatalf("first rsvp status: %d", rr.Code)
	}
	rr := postRsvp(t, a, `{"name":"Jane","email":"JANE@uc.edu"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected conflict for duplicate email, got %d", rr.Code)
	}
}

func TestRsvpCancel(t *testing.T) {
	a, rsvps := eventsFixture(10, false)

	rr := postRsvp(t, a, `{"name":"Jane","email":"jane@uc.edu"}`)
	var created rsvpResponse
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/events/evt-1/rsvps/"+created.ConfirmationCode, nil)
	req.SetPathValue("id", "evt-1")
	req.SetPathValue("code", created.ConfirmationCode)
	cancelRR := httptest.NewRecorder()
	a.handleRsvpCancel(cancelRR, req)

	if cancelRR.Code != http.StatusNoContent {
		t.Fatalf("status: %d", cancelRR.Code)
	}
	if rsvps.rsvps[0].Status != domain.RsvpCancelled {
		t.Fatalf("rsvp not cancelled: %+v", rsvps.rsvps[0])
	}

	// Cancelling the same code again is a 404.
	cancelRR = httptest.NewRecorder()
	a.handleRsvpCancel(cancelRR, req)
	if cancelRR.Code != http.StatusNotFound {
		t.Fatalf("expected not found on repeat cancel, got %d", cancelRR.Code)
	}

	// A cancelled seat frees the email for a fresh rsvp.
	if rr := postRsvp(t, a, `{"name":"Jane","email":"jane@uc.edu"}`); rr.Code != http.StatusCreated {
		t.Fatalf("expected re-rsvp after cancel, got %d", rr.Code)
	}
}

func TestEventCreateAndGet(t *testing.T) {
	a, _ := eventsFixture(0, false)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/events",
		strings.NewReader(`{"title":"Mock Interviews","starts_at":"2025-06-01T17:00:00Z","capacity":25,"allow_waitlist":true}`))
	rr := httptest.NewRecorder()
	a.handleEventCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", rr.Code, rr.Body.String())
	}
	var created eventResponse
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" || created.Capacity != 25 || !created.AllowWaitlist {
		t.Fatalf("unexpected response: %+v", created)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/v1/events/"+created.ID, nil)
	getReq.SetPathValue("id", created.ID)
	getRR := httptest.NewRecorder()
	a.handleEventGet(getRR, getReq)
	if getRR.Code != http.StatusOK {
		t.Fatalf("get status: %d", getRR.Code)
	}
}

func TestEventCreate_Validation(t *testing.T) {
	a, _ := eventsFixture(0, false)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/events", strings.NewReader(`{"title":""}`))
	rr := httptest.NewRecorder()
	a.handleEventCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rr.Code)
	}
}
