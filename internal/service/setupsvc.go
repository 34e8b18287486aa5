package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/auth"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
)

type SetupTokensStore interface {
	CreateSetupToken(ctx context.Context, token domain.SetupToken) error
	GetSetupTokenByHash(ctx context.Context, tokenHash string) (domain.SetupToken, error)
	MarkSetupTokenUsed(ctx context.Context, tokenHash string, when time.Time) error
}

type SetupUsersStore interface {
	SetPasswordHash(ctx context.Context, userID, passwordHash string) error
}

// PasswordSetupService handles out-of-band password choice: forgotten
// passwords and replacing an issued temp credential with a real one.
type PasswordSetupService struct {
	Store    SetupTokensStore
	Users    SetupUsersStore
	Profiles LoginProfilesStore
	TokenTTL time.Duration
	Now      func() time.Time
}

// CreateSetupToken mints an opaque single-use token and returns the raw
// value for the email link. Only the sha256 of it is stored.
func (s *PasswordSetupService) CreateSetupToken(ctx context.Context, userID, sentToEmail, createdBy string) (string, error) {
	if s.Store == nil {
		return "", fmt.Errorf("setup token store unavailable")
	}
	if userID == "" || sentToEmail == "" {
		return "", fmt.Errorf("user id and email are required")
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.TokenTTL == 0 {
		s.TokenTTL = 48 * time.Hour
	}

	raw, tokenHash, err := newSetupToken()
	if err != nil {
		return "", err
	}

	now := s.Now()
	token := domain.SetupToken{
		UserID:      userID,
		TokenHash:   tokenHash,
		SentToEmail: sentToEmail,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.TokenTTL),
	}
	if err := s.Store.CreateSetupToken(ctx, token); err != nil {
		return "", err
	}
	return raw, nil
}

// CompleteSetup validates the raw token, stores the new password hash and
// burns the token. Completing setup also retires any outstanding temp
// credential on the profile.
func (s *PasswordSetupService) CompleteSetup(ctx context.Context, rawToken, newPassword string) error {
	if s.Store == nil || s.Users == nil {
		return fmt.Errorf("setup service unavailable")
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	tokenHash := hashSetupToken(rawToken)
	token, err := s.Store.GetSetupTokenByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrSetupTokenInvalid
		}
		return err
	}
	if token.UsedAt != nil {
		return domain.ErrSetupTokenInvalid
	}
	if token.ExpiresAt.Before(s.Now()) {
		return domain.ErrSetupTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.SetPasswordHash(ctx, token.UserID, hash); err != nil {
		return err
	}
	if err := s.Store.MarkSetupTokenUsed(ctx, tokenHash, s.Now()); err != nil {
		return err
	}
	if s.Profiles != nil {
		_ = s.Profiles.MarkTempPasswordUsed(ctx, token.UserID)
	}
	return nil
}

func newSetupToken() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("read token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw, hashSetupToken(raw), nil
}

func hashSetupToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
