package licensing

import "errors"

var (
	// ErrSeatUnavailable means the current per-student license has no free
	// seat for the requested enrollment or invitation.
	ErrSeatUnavailable = errors.New("no available seats, please contact your administrator")

	// ErrInvitationInvalid covers unknown, already claimed, cancelled and
	// expired invitation tokens. Callers cannot distinguish these cases.
	ErrInvitationInvalid = errors.New("invitation is invalid or expired")

	// ErrEmailTaken means a user account with that email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrAlreadyInvited means the email has an open invitation at this
	// institution.
	ErrAlreadyInvited = errors.New("email already has a pending invitation")

	// ErrNoCurrentLicense means the institution has no active, unexpired
	// license and therefore no institutional access.
	ErrNoCurrentLicense = errors.New("institution has no current license")

	// ErrInstitutionInactive means the institution was deactivated.
	ErrInstitutionInactive = errors.New("institution is not active")

	// ErrNotInstitutionMember means the target user does not belong to the
	// institution the admin is acting on.
	ErrNotInstitutionMember = errors.New("user does not belong to this institution")

	// ErrInvalidRole means the requested invitation role is not grantable.
	ErrInvalidRole = errors.New("role must be student or admin")
)
