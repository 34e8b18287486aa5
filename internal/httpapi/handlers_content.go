package httpapi

import (
	"net/http"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
)

type certificationResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Provider    string    `json:"provider,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCertificationResponse(c domain.Certification) certificationResponse {
	return certificationResponse{
		ID:          c.ID,
		Title:       c.Title,
		Provider:    c.Provider,
		Description: c.Description,
		URL:         c.URL,
		CreatedAt:   c.CreatedAt,
	}
}

type certificationRequest struct {
	Title       string `json:"title"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

func (a *api) handleCertificationsList(w http.ResponseWriter, r *http.Request) {
	certs, err := a.contentSvc.ListCertifications(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]certificationResponse, 0, len(certs))
	for _, c := range certs {
		out = append(out, toCertificationResponse(c))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"certifications": out})
}

func (a *api) handleCertificationCreate(w http.ResponseWriter, r *http.Request) {
	var req certificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	c, err := a.contentSvc.CreateCertification(r.Context(), domain.Certification{
		Title:       req.Title,
		Provider:    req.Provider,
		Description: req.Description,
		URL:         req.URL,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toCertificationResponse(c))
}

func (a *api) handleCertificationUpdate(w http.ResponseWriter, r *http.Request) {
	var req certificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	c, err := a.contentSvc.UpdateCertification(r.Context(), domain.Certification{
		ID:          r.PathValue("id"),
		Title:       req.Title,
		Provider:    req.Provider,
		Description: req.Description,
		URL:         req.URL,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toCertificationResponse(c))
}

func (a *api) handleCertificationDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.contentSvc.DeleteCertification(r.Context(), r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type internshipResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	ApplyURL    string     `json:"apply_url,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toInternshipResponse(i domain.Internship) internshipResponse {
	return internshipResponse{
		ID:          i.ID,
		Title:       i.Title,
		Company:     i.Company,
		Location:    i.Location,
		Description: i.Description,
		ApplyURL:    i.ApplyURL,
		Deadline:    i.Deadline,
		CreatedAt:   i.CreatedAt,
	}
}

type internshipRequest struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	ApplyURL    string     `json:"apply_url"`
	Deadline    *time.Time `json:"deadline"`
}

func (req internshipRequest) model(id string) domain.Internship {
	return domain.Internship{
		ID:          id,
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
		ApplyURL:    req.ApplyURL,
		Deadline:    req.Deadline,
	}
}

func (a *api) handleInternshipsList(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.contentSvc.ListInternships(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]internshipResponse, 0, len(jobs))
	for _, i := range jobs {
		out = append(out, toInternshipResponse(i))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"internships": out})
}

func (a *api) handleInternshipCreate(w http.ResponseWriter, r *http.Request) {
	var req internshipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	i, err := a.contentSvc.CreateInternship(r.Context(), req.model(""))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toInternshipResponse(i))
}

func (a *api) handleInternshipUpdate(w http.ResponseWriter, r *http.Request) {
	var req internshipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	i, err := a.contentSvc.UpdateInternship(r.Context(), req.model(r.PathValue("id")))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toInternshipResponse(i))
}

func (a *api) handleInternshipDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.contentSvc.DeleteInternship(r.Context(), r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type contentBlockResponse struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toContentBlockResponse(b domain.ContentBlock) contentBlockResponse {
	return contentBlockResponse{
		Slug:      b.Slug,
		Title:     b.Title,
		Body:      b.Body,
		UpdatedAt: b.UpdatedAt,
	}
}

func (a *api) handleContentList(w http.ResponseWriter, r *http.Request) {
	blocks, err := a.contentSvc.ListContentBlocks(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]contentBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toContentBlockResponse(b))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"content": out})
}

func (a *api) handleContentGet(w http.ResponseWriter, r *http.Request) {
	b, err := a.contentSvc.GetContentBlock(r.Context(), r.PathValue("slug"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toContentBlockResponse(b))
}

type contentBlockRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (a *api) handleContentUpsert(w http.ResponseWriter, r *http.Request) {
	var req contentBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	b, err := a.contentSvc.UpsertContentBlock(r.Context(), domain.ContentBlock{
		Slug:  r.PathValue("slug"),
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toContentBlockResponse(b))
}
