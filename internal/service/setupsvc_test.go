package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/auth"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
)

type memSetupTokens struct {
	byHash map[string]domain.SetupToken
}

func newMemSetupTokens() *memSetupTokens {
	return &memSetupTokens{byHash: make(map[string]domain.SetupToken)}
}

func (m *memSetupTokens) CreateSetupToken(_ context.Context, token domain.SetupToken) error {
	m.byHash[token.TokenHash] = token
	return nil
}

func (m *memSetupTokens) GetSetupTokenByHash(_ context.Context, tokenHash string) (domain.SetupToken, error) {
	token, ok := m.byHash[tokenHash]
	if !ok {
		return domain.SetupToken{}, domain.ErrNotFound
	}
	return token, nil
}

func (m *memSetupTokens) MarkSetupTokenUsed(_ context.Context, tokenHash string, when time.Time) error {
	token, ok := m.byHash[tokenHash]
	if !ok {
		return domain.ErrNotFound
	}
	token.UsedAt = &when
	m.byHash[tokenHash] = token
	return nil
}

type recordingSetupUsers struct {
	userID string
	hash   string
}

func (r *recordingSetupUsers) SetPasswordHash(_ context.Context, userID, hash string) error {
	r.userID = userID
	r.hash = hash
	return nil
}

func TestSetupToken_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newMemSetupTokens()
	users := &recordingSetupUsers{}

	var retired string
	profiles := &stubLoginProfiles{
		t: t,
		markUsedFunc: func(_ context.Context, userID string) error {
			retired = userID
			return nil
		},
	}

	svc := &PasswordSetupService{
		Store:    store,
		Users:    users,
		Profiles: profiles,
		TokenTTL: 48 * time.Hour,
		Now:      func() time.Time { return now },
	}

	raw, err := svc.CreateSetupToken(context.Background(), "user-1", "jane@uc.edu", "admin@uc.edu")
	if err != nil {
		t.Fatalf("CreateSetupToken: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected raw token")
	}
	if _, ok := store.byHash[raw]; ok {
		t.Fatalf("raw token must not be stored verbatim")
	}

	if err := svc.CompleteSetup(context.Background(), raw, "a brand new password"); err != nil {
		t.Fatalf("CompleteSetup: %v", err)
	}

	if users.userID != "user-1" {
		t.Fatalf("password set for wrong user: %q", users.userID)
	}
	ok, err := auth.VerifyPassword(users.hash, "a brand new password")
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
	if retired != "user-1" {
		t.Fatalf("expected temp credential retired for user-1, got %q", retired)
	}

	// Second use of the same token is rejected.
	if err := svc.CompleteSetup(context.Background(), raw, "another password here"); !errors.Is(err, domain.ErrSetupTokenInvalid) {
		t.Fatalf("expected invalid token on reuse, got %v", err)
	}
}

func TestCompleteSetup_UnknownToken(t *testing.T) {
	svc := &PasswordSetupService{
		Store: newMemSetupTokens(),
		Users: &recordingSetupUsers{},
	}

	err := svc.CompleteSetup(context.Background(), "no-such-token", "a brand new password")
	if !errors.Is(err, domain.ErrSetupTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestCompleteSetup_ExpiredToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newMemSetupTokens()

	svc := &PasswordSetupService{
		Store:    store,
		Users:    &recordingSetupUsers{},
		TokenTTL: time.Hour,
		Now:      func() time.Time { return now },
	}

	raw, err := svc.CreateSetupToken(context.Background(), "user-1", "jane@uc.edu", "")
	if err != nil {
		t.Fatalf("CreateSetupToken: %v", err)
	}

	svc.Now = func() time.Time { return now.Add(2 * time.Hour) }

	if err := svc.CompleteSetup(context.Background(), raw, "a brand new password"); !errors.Is(err, domain.ErrSetupTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestCreateSetupToken_RequiresUserAndEmail(t *testing.T) {
	svc := &PasswordSetupService{Store: newMemSetupTokens(), Users: &recordingSetupUsers{}}

	if _, err := svc.CreateSetupToken(context.Background(), "", "jane@uc.edu", ""); err == nil {
		t.Fatalf("expected error for missing user id")
	}
	if _, err := svc.CreateSetupToken(context.Background(), "user-1", "", ""); err == nil {
		t.Fatalf("expected error for missing email")
	}
}
