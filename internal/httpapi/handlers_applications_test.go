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

// fakeReviewStore is an in-memory application store for handler tests.
type fakeReviewStore struct {
	apps map[string]domain.Application
}

func (f *fakeReviewStore) GetApplication(_ context.Context, id string) (domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return app, nil
}

func (f *fakeReviewStore) SetApplicationStatus(_ context.Context, id string, status domain.ApplicationStatus, adminComment string, when time.Time) error {
	app, ok := f.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	app.Status = status
	app.AdminComment = adminComment
	app.ReviewedAt = &when
	f.apps[id] = app
	return nil
}

func (f *fakeReviewStore) DeleteApplication(_ context.Context, id string) (bool, error) {
	if _, ok := f.apps[id]; !ok {
		return false, nil
	}
	delete(f.apps, id)
	return true, nil
}

func (f *fakeReviewStore) CreateApplication(_ context.Context, a domain.Application) (domain.Application, error) {
	a.ID = "app-new"
	a.Status = domain.ApplicationPending
	a.CreatedAt = time.Now()
	f.apps[a.ID] = a
	return a, nil
}

func (f *fakeReviewStore) GetActiveApplicationByEmail(_ context.Context, addr string) (domain.Application, error) {
	for _, app := range f.apps {
		if app.Email == addr && app.Status != domain.ApplicationRejected {
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (f *fakeReviewStore) ListApplications(_ context.Context, status domain.ApplicationStatus, _ int) ([]domain.Application, error) {
	var out []domain.Application
	for _, app := range f.apps {
		if status == "" || app.Status == status {
			out = append(out, app)
		}
	}
	return out, nil
}

type fakeIdentityStore struct {
	byEmail map[string]domain.UserWithPassword
	nextID  int
}

func (f *fakeIdentityStore) GetUserByEmail(_ context.Context, addr string) (domain.UserWithPassword, error) {
	u, ok := f.byEmail[addr]
	if !ok {
		return domain.UserWithPassword{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeIdentityStore) CreateUser(_ context.Context, addr string, role domain.UserRole, hash string) (domain.User, error) {
	if _, ok := f.byEmail[addr]; ok {
		return domain.User{}, domain.ErrEmailTaken
	}
	f.nextID++
	u := domain.UserWithPassword{
		User:         domain.User{ID: "user-" + string(rune('0'+f.nextID)), Email: addr, Role: role, Status: domain.UserStatusActive},
		PasswordHash: hash,
	}
	f.byEmail[addr] = u
	return u.User, nil
}

func (f *fakeIdentityStore) SetPasswordHash(_ context.Context, userID, hash string) error {
	for addr, u := range f.byEmail {
		if u.ID == userID {
			u.PasswordHash = hash
			f.byEmail[addr] = u
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeIdentityStore) DeleteUser(_ context.Context, userID string) (bool, error) {
	for addr, u := range f.byEmail {
		if u.ID == userID {
			delete(f.byEmail, addr)
			return true, nil
		}
	}
	return false, nil
}

type fakeProfilesStore struct {
	byUser map[string]domain.Profile
}

func (f *fakeProfilesStore) GetProfileByUserID(_ context.Context, userID string) (domain.Profile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfilesStore) GetProfileByEmail(_ context.Context, addr string) (domain.Profile, error) {
	for _, p := range f.byUser {
		if p.Email == addr {
			return p, nil
		}
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (f *fakeProfilesStore) UpsertProfile(_ context.Context, p domain.Profile) (domain.Profile, error) {
	f.byUser[p.UserID] = p
	return p, nil
}

func (f *fakeProfilesStore) DeleteProfile(_ context.Context, userID string) (bool, error) {
	if _, ok := f.byUser[userID]; !ok {
		return false, nil
	}
	delete(f.byUser, userID)
	return true, nil
}

func provisionFixture() (*api, *fakeReviewStore, *fakeIdentityStore, *fakeProfilesStore) {
	apps := &fakeReviewStore{apps: map[string]domain.Application{
		"app-1": {
			ID:        "app-1",
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@uc.edu",
			Status:    domain.ApplicationPending,
			Major:     "Finance",
		},
	}}
	users := &fakeIdentityStore{byEmail: map[string]domain.UserWithPassword{}}
	profiles := &fakeProfilesStore{byUser: map[string]domain.Profile{}}

	a := &api{
		applicationsSvc: &service.ApplicationsService{Store: apps},
		provisionSvc: &service.ProvisionService{
			Applications: apps,
			Users:        users,
			Profiles:     profiles,
		},
	}
	return a, apps, users, profiles
}

func TestApplicationStatus_ApproveIssuesCredentials(t *testing.T) {
	a, apps, users, profiles := provisionFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/applications/app-1/status",
		strings.NewReader(`{"status":"approved","admin_comment":"welcome"}`))
	req.SetPathValue("id", "app-1")
	rr := httptest.NewRecorder()
	a.handleApplicationStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Success      bool   `json:"success"`
		TempUsername string `json:"temp_username"`
		TempPassword string `json:"temp_password"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.TempUsername != "jane.doe" || len(resp.TempPassword) != 16 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	app := apps.apps["app-1"]
	if app.Status != domain.ApplicationApproved || app.ReviewedAt == nil {
		t.Fatalf("application not approved: %+v", app)
	}
	u, ok := users.byEmail["jane@uc.edu"]
	if !ok || u.Role != domain.RoleStudent {
		t.Fatalf("identity not provisioned: %+v", u)
	}
	p, ok := profiles.byUser[u.ID]
	if !ok || p.Username != "jane.doe" || p.TempPassword != resp.TempPassword {
		t.Fatalf("profile not provisioned: %+v", p)
	}
}

func TestApplicationStatus_DoubleApproveConverges(t *testing.T) {
	a, _, users, profiles := provisionFixture()

	approve := func() string {
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/applications/app-1/status",
			strings.NewReader(`{"status":"approved"}`))
		req.SetPathValue("id", "app-1")
		rr := httptest.NewRecorder()
		a.handleApplicationStatus(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status: %d, body: %s", rr.Code, rr.Body.String())
		}
		var resp struct {
			TempPassword string `json:"temp_password"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return resp.TempPassword
	}

	first := approve()
	second := approve()

	if len(users.byEmail) != 1 {
		t.Fatalf("expected one identity, got %d", len(users.byEmail))
	}
	if len(profiles.byUser) != 1 {
		t.Fatalf("expected one profile, got %d", len(profiles.byUser))
	}
	if first == second {
		t.Fatalf("expected fresh temp password on re-approval")
	}
	for _, p := range profiles.byUser {
		if p.TempPassword != second {
			t.Fatalf("profile carries stale credential")
		}
		if p.Major != "Finance" {
			t.Fatalf("expected major preserved, got %q", p.Major)
		}
	}
}

func TestApplicationStatus_Reject(t *testing.T) {
	a, apps, users, profiles := provisionFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/applications/app-1/status",
		strings.NewReader(`{"status":"rejected","admin_comment":"incomplete"}`))
	req.SetPathValue("id", "app-1")
	rr := httptest.NewRecorder()
	a.handleApplicationStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rr.Code, rr.Body.String())
	}

	app := apps.apps["app-1"]
	if app.Status != domain.ApplicationRejected || app.AdminComment != "incomplete" {
		t.Fatalf("application not rejected: %+v", app)
	}
	if len(users.byEmail) != 0 || len(profiles.byUser) != 0 {
		t.Fatalf("rejection must not provision anything")
	}
}

func TestApplicationStatus_UnknownStatus(t *testing.T) {
	a, _, _, _ := provisionFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/applications/app-1/status",
		strings.NewReader(`{"status":"archived"}`))
	req.SetPathValue("id", "app-1")
	rr := httptest.NewRecorder()
	a.handleApplicationStatus(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rr.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "validation_error" {
		t.Fatalf("error code: got %q", envelope.Error.Code)
	}
}

func TestApplicationRevoke_ThenSecondCallIsNoop(t *testing.T) {
	a, apps, users, profiles := provisionFixture()

	// Provision first so there is something to tear down.
	approveReq := httptest.NewRequest(http.MethodPost, "/v1/admin/applications/app-1/status",
		strings.NewReader(`{"status":"approved"}`))
	approveReq.SetPathValue("id", "app-1")
	a.handleApplicationStatus(httptest.NewRecorder(), approveReq)

	revoke := func() revokeResponse {
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/applications/app-1/revoke",
			strings.NewReader(`{"email":"jane@uc.edu"}`))
		req.SetPathValue("id", "app-1")
		rr := httptest.NewRecorder()
		a.handleApplicationRevoke(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status: %d, body: %s", rr.Code, rr.Body.String())
		}
		var resp revokeResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return resp
	}

	first := revoke()
	if !first.Success || !first.DeletedProfile || !first.DeletedApplication {
		t.Fatalf("unexpected first revoke: %+v", first)
	}
	if len(apps.apps) != 0 || len(users.byEmail) != 0 || len(profiles.byUser) != 0 {
		t.Fatalf("expected full teardown")
	}

	second := revoke()
	if !second.Success || second.DeletedProfile || second.DeletedApplication {
		t.Fatalf("unexpected second revoke: %+v", second)
	}
}

func TestApplicationSubmit(t *testing.T) {
	a, apps, _, _ := provisionFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/applications",
		strings.NewReader(`{"first_name":"Ben","last_name":"Ortiz","email":"ben@uc.edu","major":"Economics"}`))
	rr := httptest.NewRecorder()
	a.handleApplicationSubmit(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp applicationResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "pending" || resp.Email != "ben@uc.edu" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if _, ok := apps.apps[resp.ID]; !ok {
		t.Fatalf("application not stored")
	}

	// Same email again while pending.
	req = httptest.NewRequest(http.MethodPost, "/v1/applications",
		strings.NewReader(`{"first_name":"Ben","last_name":"Ortiz","email":"ben@uc.edu"}`))
	rr = httptest.NewRecorder()
	a.handleApplicationSubmit(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", rr.Code)
	}
}

func TestApplicationSubmit_BadJSON(t *testing.T) {
	a, _, _, _ := provisionFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/applications", strings.NewReader(`{"first_name":`))
	rr := httptest.NewRecorder()
	a.handleApplicationSubmit(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rr.Code)
	}
}
