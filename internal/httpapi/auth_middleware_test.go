package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/auth"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/service"
)

type fakeSessionUsers struct {
	users map[string]domain.User
}

func (f *fakeSessionUsers) GetUserByID(_ context.Context, id string) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeSessionUsers) GetUserByLogin(_ context.Context, _ string) (domain.UserWithPassword, error) {
	return domain.UserWithPassword{}, domain.ErrNotFound
}

func (f *fakeSessionUsers) GetUserByEmail(_ context.Context, _ string) (domain.UserWithPassword, error) {
	return domain.UserWithPassword{}, domain.ErrNotFound
}

func (f *fakeSessionUsers) CreateUser(_ context.Context, _ string, _ domain.UserRole, _ string) (domain.User, error) {
	return domain.User{}, domain.ErrEmailTaken
}

func (f *fakeSessionUsers) SetLastLogin(_ context.Context, _ string, _ time.Time) error { return nil }

type fakeSessionStore struct {
	sessions map[string]domain.Session
}

func (f *fakeSessionStore) CreateSession(_ context.Context, userID string, expiresAt time.Time, _, _ string) (string, error) {
	id := "sess-" + userID
	f.sessions[id] = domain.Session{ID: id, UserID: userID, ExpiresAt: expiresAt}
	return id, nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, sessionID string) (domain.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) RevokeSession(_ context.Context, sessionID string, _ time.Time) error {
	delete(f.sessions, sessionID)
	return nil
}

func adminGateFixture() (*api, auth.CookieCodec) {
	codec := auth.NewCookieCodec([]byte(strings.Repeat("k", 32)))
	users := &fakeSessionUsers{users: map[string]domain.User{
		"user-admin":    {ID: "user-admin", Role: domain.RoleAdmin, Status: domain.UserStatusActive},
		"user-student":  {ID: "user-student", Role: domain.RoleStudent, Status: domain.UserStatusActive},
		"user-disabled": {ID: "user-disabled", Role: domain.RoleAdmin, Status: domain.UserStatusDisabled},
	}}
	sessions := &fakeSessionStore{sessions: map[string]domain.Session{
		"sess-user-admin":    {ID: "sess-user-admin", UserID: "user-admin"},
		"sess-user-student":  {ID: "sess-user-student", UserID: "user-student"},
		"sess-user-disabled": {ID: "sess-user-disabled", UserID: "user-disabled"},
	}}

	a := &api{
		authSvc:     &service.AuthService{Users: users, Sessions: sessions},
		cookieCodec: codec,
	}
	return a, codec
}

func requestWithSession(codec auth.CookieCodec, sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/applications", nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: codec.EncodeSessionID(sessionID)})
	}
	return req
}

func TestRequireAdmin(t *testing.T) {
	a, codec := adminGateFixture()

	var calledAs string
	handler := a.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		u, _ := CurrentUser(r.Context())
		calledAs = u.ID
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name      string
		sessionID string
		want      int
	}{
		{"admin", "sess-user-admin", http.StatusOK},
		{"student", "sess-user-student", http.StatusForbidden},
		{"disabled", "sess-user-disabled", http.StatusForbidden},
		{"no cookie", "", http.StatusUnauthorized},
		{"unknown session", "sess-nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		handler(rr, requestWithSession(codec, tc.sessionID))
		if rr.Code != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, rr.Code, tc.want)
		}
	}

	if calledAs != "user-admin" {
		t.Fatalf("expected handler to run as admin, got %q", calledAs)
	}
}

func TestRequireAuth_RejectsTamperedCookie(t *testing.T) {
	a, codec := adminGateFixture()

	handler := a.requireAuth(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: codec.EncodeSessionID("sess-user-admin") + "x"})
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rr.Code)
	}
}

func TestLoginLimiter(t *testing.T) {
	l := newLoginLimiter()
	now := time.Now()

	for i := 0; i < l.max; i++ {
		if !l.Allow("ip:1.2.3.4", now) {
			t.Fatalf("attempt %d unexpectedly limited", i)
		}
	}
	if l.Allow("ip:1.2.3.4", now) {
		t.Fatalf("expected limit after %d attempts", l.max)
	}
	if !l.Allow("ip:5.6.7.8", now) {
		t.Fatalf("unrelated key should not be limited")
	}
	if !l.Allow("ip:1.2.3.4", now.Add(l.window+time.Second)) {
		t.Fatalf("expected limit to clear after window")
	}
}
