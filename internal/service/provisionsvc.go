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

type IdentityStore interface {
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	CreateUser(ctx context.Context, email string, role domain.UserRole, passwordHash string) (domain.User, error)
	SetPasswordHash(ctx context.Context, userID, passwordHash string) error
	DeleteUser(ctx context.Context, userID string) (bool, error)
}

type ProfilesStore interface {
	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error)
	UpsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)
	DeleteProfile(ctx context.Context, userID string) (bool, error)
}

type ReviewApplicationsStore interface {
	GetApplication(ctx context.Context, id string) (domain.Application, error)
	SetApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus, adminComment string, when time.Time) error
	DeleteApplication(ctx context.Context, id string) (bool, error)
}

// ProvisionService turns a reviewed application into (or out of) a portal
// account: approval issues credentials, rejection records the decision, and
// revocation tears the account down again.
type ProvisionService struct {
	Applications ReviewApplicationsStore
	Users        IdentityStore
	Profiles     ProfilesStore
	Email        Notifier
	Logger       *slog.Logger
	PortalURL    string
	Now          func() time.Time
}

// Approve provisions an account for the application and marks it approved.
//
// The steps run in a fixed order with no rollback: once the identity write
// has landed, later failures leave partial state behind and the admin
// retries the whole call. Every step is written to converge on retry: the
// identity is found by email instead of re-created, and the profile is an
// upsert keyed on the identity id, so re-approving an already-approved
// application resets the credential rather than duplicating anything.
func (s *ProvisionService) Approve(ctx context.Context, applicationID, adminComment string) (domain.Credentials, error) {
	if s.Now == nil {
		s.Now = time.Now
	}

	app, err := s.Applications.GetApplication(ctx, applicationID)
	if err != nil {
		return domain.Credentials{}, err
	}

	fields := map[string]string{}
	if strings.TrimSpace(app.FirstName) == "" {
		fields["first_name"] = "required"
	}
	if strings.TrimSpace(app.LastName) == "" {
		fields["last_name"] = "required"
	}
	if strings.TrimSpace(app.Email) == "" {
		fields["email"] = "required"
	}
	if len(fields) > 0 {
		return domain.Credentials{}, domain.NewValidationError(fields)
	}

	username := auth.TempUsername(app.FirstName, app.LastName)
	tempPassword, err := auth.TempPassword()
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("generate temp password: %w", err)
	}
	passwordHash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("hash temp password: %w", err)
	}

	appEmail := strings.TrimSpace(strings.ToLower(app.Email))

	var userID string
	existing, err := s.Users.GetUserByEmail(ctx, appEmail)
	switch {
	case err == nil:
		// Re-approval: keep the identity, reset its credential.
		if err := s.Users.SetPasswordHash(ctx, existing.ID, passwordHash); err != nil {
			return domain.Credentials{}, fmt.Errorf("%w: reset credential: %v", domain.ErrIdentityWrite, err)
		}
		userID = existing.ID
	case errors.Is(err, domain.ErrNotFound):
		created, err := s.Users.CreateUser(ctx, appEmail, domain.RoleStudent, passwordHash)
		if err != nil {
			return domain.Credentials{}, fmt.Errorf("%w: create identity: %v", domain.ErrIdentityWrite, err)
		}
		userID = created.ID
	default:
		return domain.Credentials{}, fmt.Errorf("%w: lookup identity: %v", domain.ErrIdentityWrite, err)
	}

	profile := domain.Profile{UserID: userID}
	if current, err := s.Profiles.GetProfileByUserID(ctx, userID); err == nil {
		profile = current
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Credentials{}, fmt.Errorf("%w: lookup profile: %v", domain.ErrProfileWrite, err)
	}
	mergeProfile(&profile, app, username, tempPassword)

	if _, err := s.Profiles.UpsertProfile(ctx, profile); err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: upsert profile: %v", domain.ErrProfileWrite, err)
	}

	if err := s.Applications.SetApplicationStatus(ctx, app.ID, domain.ApplicationApproved, adminComment, s.Now()); err != nil {
		return domain.Credentials{}, fmt.Errorf("mark application approved: %w", err)
	}

	sendBestEffort(ctx, s.Logger, s.Email, email.ApprovalEmail{
		FirstName:    app.FirstName,
		LastName:     app.LastName,
		Email:        appEmail,
		Username:     username,
		TempPassword: tempPassword,
		PortalURL:    s.PortalURL,
	})

	// Credentials go back to the caller too: the email above is only a
	// best-effort second channel.
	return domain.Credentials{Username: username, TempPassword: tempPassword}, nil
}

// Reject records the denial. No identity or profile work happens here.
func (s *ProvisionService) Reject(ctx context.Context, applicationID, reason string) error {
	if s.Now == nil {
		s.Now = time.Now
	}

	app, err := s.Applications.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	if err := s.Applications.SetApplicationStatus(ctx, app.ID, domain.ApplicationRejected, reason, s.Now()); err != nil {
		return fmt.Errorf("mark application rejected: %w", err)
	}

	sendBestEffort(ctx, s.Logger, s.Email, email.DenialEmail{
		FirstName: app.FirstName,
		Email:     strings.TrimSpace(strings.ToLower(app.Email)),
		Reason:    reason,
	})
	return nil
}

type RevocationResult struct {
	DeletedProfile     bool
	DeletedApplication bool
}

// Revoke removes the provisioned account and the application record.
// Profile and identity removal are best-effort and not rolled back into
// each other; the application delete always runs last regardless. Calling
// Revoke again after it has succeeded finds nothing to delete and is not
// an error.
func (s *ProvisionService) Revoke(ctx context.Context, applicationID, emailAddr string) (RevocationResult, error) {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))

	fields := map[string]string{}
	if applicationID == "" {
		fields["application_id"] = "required"
	}
	if emailAddr == "" {
		fields["email"] = "required"
	}
	if len(fields) > 0 {
		return RevocationResult{}, domain.NewValidationError(fields)
	}

	var res RevocationResult

	profile, err := s.Profiles.GetProfileByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		deleted, err := s.Profiles.DeleteProfile(ctx, profile.UserID)
		if err != nil {
			s.logf("revoke: profile delete failed", "application_id", applicationID, "err", err)
		}
		res.DeletedProfile = deleted
		if _, err := s.Users.DeleteUser(ctx, profile.UserID); err != nil {
			// Accepted inconsistency: the profile is gone but the identity
			// lingers until a later revoke or manual cleanup.
			s.logf("revoke: identity delete failed after profile removal", "user_id", profile.UserID, "err", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		// Nothing provisioned (or already revoked).
	default:
		s.logf("revoke: profile lookup failed", "email", emailAddr, "err", err)
	}

	deleted, err := s.Applications.DeleteApplication(ctx, applicationID)
	if err != nil {
		return res, fmt.Errorf("delete application: %w", err)
	}
	res.DeletedApplication = deleted
	return res, nil
}

func (s *ProvisionService) logf(msg string, args ...any) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(msg, args...)
}

// mergeProfile applies the application onto the profile. Required fields
// always overwrite; optional academic fields only overwrite when the
// incoming application actually carries a value, so a populated field is
// never blanked by a sparser re-submission.
func mergeProfile(p *domain.Profile, app domain.Application, username, tempPassword string) {
	p.FirstName = app.FirstName
	p.LastName = app.LastName
	p.Email = strings.TrimSpace(strings.ToLower(app.Email))
	p.Username = username
	p.TempPassword = tempPassword
	p.IsTempPasswordUsed = false

	if app.Major != "" {
		p.Major = app.Major
	}
	if app.GraduationYear != nil {
		p.GraduationYear = app.GraduationYear
	}
	if app.University != "" {
		p.University = app.University
	}
	if app.LinkedInURL != "" {
		p.LinkedInURL = app.LinkedInURL
	}
}
