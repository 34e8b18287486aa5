package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/service"
)

type eventResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Location      string     `json:"location,omitempty"`
	EventType     string     `json:"event_type,omitempty"`
	StartsAt      time.Time  `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	Capacity      int        `json:"capacity"`
	AllowWaitlist bool       `json:"allow_waitlist"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toEventResponse(e domain.CalendarEvent) eventResponse {
	return eventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		EventType:     e.EventType,
		StartsAt:      e.StartsAt,
		EndsAt:        e.EndsAt,
		Capacity:      e.Capacity,
		AllowWaitlist: e.AllowWaitlist,
		CreatedAt:     e.CreatedAt,
	}
}

type eventRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	EventType     string     `json:"event_type"`
	StartsAt      time.Time  `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
	Capacity      int        `json:"capacity"`
	AllowWaitlist bool       `json:"allow_waitlist"`
}

func (req eventRequest) params() service.EventParams {
	return service.EventParams{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		EventType:     req.EventType,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		Capacity:      req.Capacity,
		AllowWaitlist: req.AllowWaitlist,
	}
}

func (a *api) handleEventsList(w http.ResponseWriter, r *http.Request) {
	upcoming := r.URL.Query().Get("upcoming") == "1" || r.URL.Query().Get("upcoming") == "true"

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteDomainError(w, domain.NewValidationError(map[string]string{"limit": "must be a non-negative integer"}))
			return
		}
		limit = n
	}

	events, err := a.eventsSvc.ListEvents(r.Context(), upcoming, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (a *api) handleEventGet(w http.ResponseWriter, r *http.Request) {
	e, err := a.eventsSvc.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toEventResponse(e))
}

func (a *api) handleEventCreate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	e, err := a.eventsSvc.CreateEvent(r.Context(), req.params())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toEventResponse(e))
}

func (a *api) handleEventUpdate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	e, err := a.eventsSvc.UpdateEvent(r.Context(), r.PathValue("id"), req.params())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toEventResponse(e))
}

func (a *api) handleEventDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.eventsSvc.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rsvpResponse struct {
	ID               string    `json:"id"`
	EventID          string    `json:"event_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Status           string    `json:"status"`
	ConfirmationCode string    `json:"confirmation_code"`
	CreatedAt        time.Time `json:"created_at"`
}

func toRsvpResponse(rv domain.Rsvp) rsvpResponse {
	return rsvpResponse{
		ID:               rv.ID,
		EventID:          rv.EventID,
		Name:             rv.Name,
		Email:            rv.Email,
		Status:           string(rv.Status),
		ConfirmationCode: rv.ConfirmationCode,
		CreatedAt:        rv.CreatedAt,
	}
}

type rsvpRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *api) handleRsvpCreate(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	rv, err := a.eventsSvc.CreateRsvp(r.Context(), r.PathValue("id"), service.RsvpParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toRsvpResponse(rv))
}

func (a *api) handleRsvpCancel(w http.ResponseWriter, r *http.Request) {
	if err := a.eventsSvc.CancelRsvp(r.Context(), r.PathValue("id"), r.PathValue("code")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleRsvpsList(w http.ResponseWriter, r *http.Request) {
	rsvps, err := a.eventsSvc.ListRsvps(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]rsvpResponse, 0, len(rsvps))
	for _, rv := range rsvps {
		out = append(out, toRsvpResponse(rv))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"rsvps": out})
}
