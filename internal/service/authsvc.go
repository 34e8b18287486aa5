package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/auth"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/domain"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/email"
)

type AuthUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	CreateUser(ctx context.Context, email string, role domain.UserRole, passwordHash string) (domain.User, error)
	SetLastLogin(ctx context.Context, userID string, when time.Time) error
}

type SessionsStore interface {
	CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error)
	GetSession(ctx context.Context, sessionID string) (domain.Session, error)
	RevokeSession(ctx context.Context, sessionID string, when time.Time) error
}

type LoginProfilesStore interface {
	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)
	MarkTempPasswordUsed(ctx context.Context, userID string) error
}

// AuthService issues and resolves portal sessions. Admin access rides the
// same sessions; the role on the resolved user is what gates admin routes.
type AuthService struct {
	Users      AuthUsersStore
	Sessions   SessionsStore
	Profiles   LoginProfilesStore
	Email      Notifier
	Logger     *slog.Logger
	PortalURL  string
	SessionTTL time.Duration
	Now        func() time.Time
}

func (s *AuthService) Login(ctx context.Context, login, password, ip, userAgent string) (domain.User, string, error) {
	if s.Now == nil {
		s.Now = time.Now
	}

	login = strings.TrimSpace(login)

	u, err := s.Users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	sessID, err := s.Sessions.CreateSession(ctx, u.ID, s.Now().Add(s.SessionTTL), ip, userAgent)
	if err != nil {
		return domain.User{}, "", err
	}

	_ = s.Users.SetLastLogin(ctx, u.ID, s.Now())
	s.markTempPasswordUsed(ctx, u.ID, password)

	return u.User, sessID, nil
}

// markTempPasswordUsed retires the issued temp credential after its first
// successful use. Best-effort: login has already succeeded.
func (s *AuthService) markTempPasswordUsed(ctx context.Context, userID, password string) {
	if s.Profiles == nil {
		return
	}
	profile, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil || profile.IsTempPasswordUsed || profile.TempPassword == "" {
		return
	}
	if profile.TempPassword != password {
		return
	}
	if err := s.Profiles.MarkTempPasswordUsed(ctx, userID); err != nil {
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("mark temp password used failed", "user_id", userID, "err", err)
	}
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if s.Now == nil {
		s.Now = time.Now
	}

	return s.Sessions.RevokeSession(ctx, sessionID, s.Now())
}

func (s *AuthService) GetUserForSession(ctx context.Context, sessionID string) (domain.User, error) {
	sess, err := s.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}

	u, err := s.Users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, domain.ErrForbidden
	}

	return u, nil
}

// InviteAdmin creates an admin identity with a temp credential and emails
// the invite. The inviting admin also sees the credential in the response.
func (s *AuthService) InviteAdmin(ctx context.Context, emailAddr, invitedBy string) (domain.Credentials, error) {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return domain.Credentials{}, domain.NewValidationError(map[string]string{"email": "must be a valid email"})
	}

	if _, err := s.Users.GetUserByEmail(ctx, emailAddr); err == nil {
		return domain.Credentials{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Credentials{}, err
	}

	tempPassword, err := auth.TempPassword()
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("generate temp password: %w", err)
	}
	passwordHash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("hash temp password: %w", err)
	}

	if _, err := s.Users.CreateUser(ctx, emailAddr, domain.RoleAdmin, passwordHash); err != nil {
		return domain.Credentials{}, err
	}

	sendBestEffort(ctx, s.Logger, s.Email, email.AdminInvite{
		Email:        emailAddr,
		TempPassword: tempPassword,
		InvitedBy:    invitedBy,
		PortalURL:    s.PortalURL,
	})

	return domain.Credentials{Username: emailAddr, TempPassword: tempPassword}, nil
}
