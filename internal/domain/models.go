package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is the authentication identity record. Portal-facing data lives on
// the Profile keyed by the user id.
type User struct {
	ID          string
	Email       string
	Role        UserRole
	Status      UserStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

type UserWithPassword struct {
	User
	PasswordHash string
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

type Application struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Status       ApplicationStatus
	AdminComment string
	ReviewedAt   *time.Time

	// Optional academic fields. Empty/nil means the applicant left them blank.
	Major          string
	GraduationYear *int
	University     string
	LinkedInURL    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the post-approval learner record. At most one per user; the
// temp password is cleared once the holder signs in with it or completes a
// password setup link.
type Profile struct {
	UserID             string
	FirstName          string
	LastName           string
	Email              string
	Username           string
	TempPassword       string
	IsTempPasswordUsed bool

	Major          string
	GraduationYear *int
	University     string
	LinkedInURL    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials are the portal login details issued when an application is
// approved. They are returned to the approving admin and emailed to the
// applicant best-effort.
type Credentials struct {
	Username     string
	TempPassword string
}

type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Location    string
	EventType   string
	StartsAt    time.Time
	EndsAt      *time.Time

	// Capacity <= 0 means unlimited seats.
	Capacity      int
	AllowWaitlist bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type RsvpStatus string

const (
	RsvpConfirmed  RsvpStatus = "confirmed"
	RsvpWaitlisted RsvpStatus = "waitlisted"
	RsvpCancelled  RsvpStatus = "cancelled"
)

type Rsvp struct {
	ID               string
	EventID          string
	Name             string
	Email            string
	Status           RsvpStatus
	ConfirmationCode string
	CreatedAt        time.Time
}

type Certification struct {
	ID          string
	Title       string
	Provider    string
	Description string
	URL         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Internship struct {
	ID          string
	Title       string
	Company     string
	Location    string
	Description string
	ApplyURL    string
	Deadline    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContentBlock is a slug-keyed piece of editable site copy rendered by the
// front end (landing page sections, program descriptions, and so on).
type ContentBlock struct {
	Slug      string
	Title     string
	Body      string
	UpdatedAt time.Time
}

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// SetupToken lets a user set a password out of band: either a forgotten
// password or the first real password after a temp credential.
type SetupToken struct {
	ID          string
	UserID      string
	TokenHash   string
	SentToEmail string
	CreatedBy   string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
}
