package email

import (
	"fmt"
	"strings"
	"time"
)

// Template is one of the portal's outbound email variants. Each variant
// knows its recipient and renders its own plain-text body; delivery goes
// through a single sender so call sites cannot pick the wrong channel.
type Template interface {
	Recipient() string
	Subject() string
	Body() string
}

type ApprovalEmail struct {
	FirstName    string
	LastName     string
	Email        string
	Username     string
	TempPassword string
	PortalURL    string
}

func (t ApprovalEmail) Recipient() string { return t.Email }

func (t ApprovalEmail) Subject() string {
	return "Welcome to the UC Investment Academy"
}

func (t ApprovalEmail) Body() string {
	lines := []string{
		fmt.Sprintf("Hi %s,", t.FirstName),
		"",
		"Your application to the UC Investment Academy has been approved.",
		"",
		"Sign in to the student portal with these temporary credentials:",
		"",
		"  Username: " + t.Username,
		"  Password: " + t.TempPassword,
		"",
		"You will be asked to choose a new password after your first login.",
	}
	if t.PortalURL != "" {
		lines = append(lines, "", "Portal: "+t.PortalURL)
	}
	return strings.Join(lines, "\n")
}

type DenialEmail struct {
	FirstName string
	Email     string
	Reason    string
}

func (t DenialEmail) Recipient() string { return t.Email }

func (t DenialEmail) Subject() string {
	return "Your UC Investment Academy application"
}

func (t DenialEmail) Body() string {
	lines := []string{
		fmt.Sprintf("Hi %s,", t.FirstName),
		"",
		"Thank you for applying to the UC Investment Academy.",
		"After review, we are unable to offer you a place at this time.",
	}
	if t.Reason != "" {
		lines = append(lines, "", "Reviewer note: "+t.Reason)
	}
	lines = append(lines, "", "You are welcome to apply again in a future cycle.")
	return strings.Join(lines, "\n")
}

type RsvpConfirmation struct {
	Name             string
	Email            string
	EventTitle       string
	EventStartsAt    time.Time
	EventLocation    string
	ConfirmationCode string
}

func (t RsvpConfirmation) Recipient() string { return t.Email }

func (t RsvpConfirmation) Subject() string {
	return "You're confirmed: " + t.EventTitle
}

func (t RsvpConfirmation) Body() string {
	lines := []string{
		fmt.Sprintf("Hi %s,", t.Name),
		"",
		"Your spot for " + t.EventTitle + " is confirmed.",
		"",
		"  When: " + t.EventStartsAt.Format("Monday, January 2 2006 at 3:04 PM MST"),
	}
	if t.EventLocation != "" {
		lines = append(lines, "  Where: "+t.EventLocation)
	}
	lines = append(lines, "", "Confirmation code: "+t.ConfirmationCode)
	return strings.Join(lines, "\n")
}

type RsvpWaitlist struct {
	Name             string
	Email            string
	EventTitle       string
	EventStartsAt    time.Time
	ConfirmationCode string
}

func (t RsvpWaitlist) Recipient() string { return t.Email }

func (t RsvpWaitlist) Subject() string {
	return "You're on the waitlist: " + t.EventTitle
}

func (t RsvpWaitlist) Body() string {
	return strings.Join([]string{
		fmt.Sprintf("Hi %s,", t.Name),
		"",
		t.EventTitle + " is currently at capacity, so you have been added to the waitlist.",
		"We'll email you if a spot opens up.",
		"",
		"  When: " + t.EventStartsAt.Format("Monday, January 2 2006 at 3:04 PM MST"),
		"",
		"Confirmation code: " + t.ConfirmationCode,
	}, "\n")
}

type AdminInvite struct {
	Email        string
	TempPassword string
	InvitedBy    string
	PortalURL    string
}

func (t AdminInvite) Recipient() string { return t.Email }

func (t AdminInvite) Subject() string {
	return "UC Investment Academy admin access"
}

func (t AdminInvite) Body() string {
	lines := []string{
		"You have been given admin access to the UC Investment Academy portal.",
		"",
		"  Username: " + t.Email,
		"  Temporary password: " + t.TempPassword,
		"",
		"Please sign in and set a new password.",
	}
	if t.InvitedBy != "" {
		lines = append(lines, "", "Invited by: "+t.InvitedBy)
	}
	if t.PortalURL != "" {
		lines = append(lines, "", "Portal: "+t.PortalURL)
	}
	return strings.Join(lines, "\n")
}

type PasswordSetup struct {
	Email    string
	SetupURL string
}

func (t PasswordSetup) Recipient() string { return t.Email }

func (t PasswordSetup) Subject() string {
	return "Set your UC Investment Academy password"
}

func (t PasswordSetup) Body() string {
	return strings.Join([]string{
		"A password setup link was requested for this address.",
		"",
		"Choose a new password here:",
		t.SetupURL,
		"",
		"If you did not request this, you can ignore this email.",
	}, "\n")
}
