package mail

import (
	"fmt"

	"github.com/CareerForgeHQ/CareerForge/internal/pkg/env"
)

func appURL() string {
	return env.GetEnv("APP_URL", "http://localhost:4000")
}

// InvitationSubject is the subject line of invitation emails.
func InvitationSubject(institutionName string) string {
	return fmt.Sprintf("You have been invited to join %s on CareerForge", institutionName)
}

// InvitationBody renders the HTML body of an invitation email. The raw token
// appears only here; it is never returned over the API.
func InvitationBody(institutionName string, role string, token string) string {
	link := fmt.Sprintf("%s/register?invitation_token=%s", appURL(), token)
	return fmt.Sprintf(
		"<p>%s has invited you to join CareerForge as a %s.</p>"+
			"<p><a href=\"%s\">Accept your invitation</a></p>"+
			"<p>The invitation expires in 7 days.</p>",
		institutionName, role, link,
	)
}

// ActivationSubject is the subject line of account activation emails.
func ActivationSubject() string {
	return "Activate your CareerForge account"
}

// ActivationBody renders the HTML body of an activation email.
func ActivationBody(token string) string {
	link := fmt.Sprintf("%s/api/v1/auth/activate/%s", appURL(), token)
	return fmt.Sprintf(
		"<p>Welcome to CareerForge!</p>"+
			"<p><a href=\"%s\">Click here to activate your account</a></p>",
		link,
	)
}

// SeatThresholdSubject is the subject line of seat usage alerts.
func SeatThresholdSubject(institutionName string) string {
	return fmt.Sprintf("Seat usage alert for %s", institutionName)
}

// SeatThresholdBody renders the HTML body of a seat usage alert sent to
// institution admins once usage crosses the warning threshold.
func SeatThresholdBody(institutionName string, usedSeats, totalSeats int) string {
	return fmt.Sprintf(
		"<p>%s is using %d of %d licensed seats.</p>"+
			"<p>Consider freeing seats or upgrading the license before new students are turned away.</p>",
		institutionName, usedSeats, totalSeats,
	)
}
