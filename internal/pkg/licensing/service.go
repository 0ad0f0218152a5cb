package licensing

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"github.com/CareerForgeHQ/CareerForge/app/repository"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/mail"
)

// SeatWarnThreshold is the usage fraction at which institution admins get a
// seat alert. The alert re-fires on every seat-consuming event at or above
// the threshold; admins are reminded until seats are freed.
const SeatWarnThreshold = 0.8

// Service is the seat accounting engine. Every path that attaches a user to
// an institution - invitation claim, domain auto-enrollment, reactivation -
// funnels through enroll/consume here, so seat math can never diverge
// between registration modes.
type Service struct {
	Repos  *repository.Repositories
	Tx     repository.TxManager
	Mailer mail.Mailer
}

// NewService creates a licensing service over the given repositories
func NewService(repos *repository.Repositories, tx repository.TxManager, mailer mail.Mailer) *Service {
	return &Service{Repos: repos, Tx: tx, Mailer: mailer}
}

// BulkInviteResult aggregates the outcome of a bulk invitation request.
type BulkInviteResult struct {
	Invited []string          `json:"invited"`
	Failed  map[string]string `json:"failed"`
}

// Invite creates a pending invitation for the email. For student invitations
// the seat check counts open student invitations as well, so an admin cannot
// mail out more invitations than the license has headroom for. The invitation
// email is sent best-effort; the token stays valid when the send fails.
func (s *Service) Invite(institutionID uint, email string, role string, invitedBy uint) (*models.Invitation, error) {
	if role != models.ROLE_STUDENT && role != models.ROLE_ADMIN {
		return nil, ErrInvalidRole
	}

	institution, err := s.Repos.Institution.GetByID(institutionID)
	if err != nil {
		return nil, err
	}
	if !institution.IsActive {
		return nil, ErrInstitutionInactive
	}

	if _, err := s.Repos.User.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pending, err := s.Repos.Invitation.HasPendingForEmail(institutionID, email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrAlreadyInvited
	}

	license, err := s.currentLicense(s.Repos, institutionID)
	if err != nil {
		return nil, err
	}

	// Advisory headroom check: the authoritative seat check is the conditional
	// consume at claim time.
	if role == models.ROLE_STUDENT && license.IsPerStudent() && license.LicensedSeats != nil {
		open, err := s.Repos.Invitation.CountPendingStudents(institutionID)
		if err != nil {
			return nil, err
		}
		if license.UsedSeats+int(open) >= *license.LicensedSeats {
			return nil, ErrSeatUnavailable
		}
	}

	invitation, err := models.NewInvitation(institutionID, email, role, invitedBy)
	if err != nil {
		return nil, err
	}
	if err := s.Repos.Invitation.Create(invitation); err != nil {
		return nil, err
	}

	if err := s.Mailer.Send(email, mail.InvitationSubject(institution.Name),
		mail.InvitationBody(institution.Name, role, invitation.Token)); err != nil {
		log.Printf("invitation email to %s failed (token stays valid): %v", email, err)
	}

	return invitation, nil
}

// BulkInvite runs Invite per email and aggregates successes and failures.
func (s *Service) BulkInvite(institutionID uint, emails []string, role string, invitedBy uint) *BulkInviteResult {
	result := &BulkInviteResult{
		Invited: make([]string, 0, len(emails)),
		Failed:  make(map[string]string),
	}
	for _, email := range emails {
		if _, err := s.Invite(institutionID, email, role, invitedBy); err != nil {
			result.Failed[email] = err.Error()
			continue
		}
		result.Invited = append(result.Invited, email)
	}
	return result
}

// CancelInvitation expires a pending invitation. The token becomes
// permanently unusable; the row is kept for audit.
func (s *Service) CancelInvitation(institutionID uint, invitationID uint) error {
	invitation, err := s.Repos.Invitation.GetByID(invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvitationInvalid
		}
		return err
	}
	if invitation.InstitutionID != institutionID {
		return ErrNotInstitutionMember
	}
	if err := s.Repos.Invitation.Cancel(invitationID); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return ErrInvitationInvalid
		}
		return err
	}
	return nil
}

// EnrollWithInvitation redeems an invitation token and creates the
// institutional user. Seat consumption, user creation and the claim run in
// one transaction, so either all of it happens or none of it does.
func (s *Service) EnrollWithInvitation(token string, name string, password string) (*models.User, error) {
	invitation, err := s.Repos.Invitation.GetPendingByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationInvalid
		}
		return nil, err
	}

	institution, err := s.Repos.Institution.GetByID(invitation.InstitutionID)
	if err != nil {
		return nil, err
	}
	if !institution.IsActive {
		return nil, ErrInvitationInvalid
	}

	var user *models.User
	err = s.Tx.WithTx(func(r *repository.Repositories) error {
		// Invited users proved ownership of the address by receiving the
		// token, so they start out verified.
		var err error
		user, err = s.enroll(r, institution, name, invitation.Email, password, invitation.Role, true)
		if err != nil {
			return err
		}
		if err := r.Invitation.Claim(invitation.ID, user.ID, time.Now()); err != nil {
			if errors.Is(err, repository.ErrNotPending) {
				return ErrInvitationInvalid
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.checkSeatThreshold(institution)

	return user, nil
}

// EnrollByDomain attaches a registrant to the institution whose domain
// allowlist matched their email. Same transaction shape and the same seat
// accounting as the invitation path; the account still requires email
// activation.
func (s *Service) EnrollByDomain(institution *models.Institution, name string, email string, password string) (*models.User, error) {
	if !institution.IsActive {
		return nil, ErrInstitutionInactive
	}

	var user *models.User
	err := s.Tx.WithTx(func(r *repository.Repositories) error {
		var err error
		user, err = s.enroll(r, institution, name, email, password, models.ROLE_STUDENT, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.checkSeatThreshold(institution)

	return user, nil
}

// enroll is the single shared enrollment path. It consumes a seat when the
// role and license type require one, then creates the user. ConsumeSeat is a
// conditional update, so racing enrollments for the last seat cannot both
// pass.
func (s *Service) enroll(r *repository.Repositories, institution *models.Institution, name, email, password, role string, verified bool) (*models.User, error) {
	if _, err := r.User.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	license, err := s.currentLicense(r, institution.ID)
	if err != nil {
		return nil, err
	}

	if role == models.ROLE_STUDENT && license.IsPerStudent() {
		if err := r.License.ConsumeSeat(license.ID); err != nil {
			if errors.Is(err, repository.ErrSeatUnavailable) {
				return nil, ErrSeatUnavailable
			}
			return nil, err
		}
	}

	pw, err := models.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:             name,
		Email:            email,
		Password:         pw,
		Role:             role,
		Status:           models.STATUS_ACTIVE,
		SubscriptionTier: models.TIER_INSTITUTIONAL,
		InstitutionID:    &institution.ID,
		IsVerified:       verified,
	}
	if !verified {
		if err := user.GenerateActivationToken(); err != nil {
			return nil, err
		}
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := r.User.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Terminate deactivates an institutional user and releases their seat. The
// status transition is conditional, so a double termination releases the seat
// only once; ReleaseSeat itself clamps at zero as a second guard.
func (s *Service) Terminate(institutionID uint, userID uint) error {
	user, err := s.Repos.User.GetByID(userID)
	if err != nil {
		return err
	}
	if user.InstitutionID == nil || *user.InstitutionID != institutionID {
		return ErrNotInstitutionMember
	}

	return s.Tx.WithTx(func(r *repository.Repositories) error {
		changed, err := r.User.TransitionStatus(userID, models.STATUS_ACTIVE, models.STATUS_INACTIVE)
		if err != nil {
			return err
		}
		if !changed || user.Role != models.ROLE_STUDENT {
			return nil
		}
		license, err := r.License.GetCurrent(institutionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // nothing to release without a current license
			}
			return err
		}
		if license.IsPerStudent() {
			return r.License.ReleaseSeat(license.ID)
		}
		return nil
	})
}

// Reactivate brings a terminated institutional user back, re-consuming a seat
// when one is needed. Fails with ErrSeatUnavailable when the license filled
// up in the meantime.
func (s *Service) Reactivate(institutionID uint, userID uint) error {
	user, err := s.Repos.User.GetByID(userID)
	if err != nil {
		return err
	}
	if user.InstitutionID == nil || *user.InstitutionID != institutionID {
		return ErrNotInstitutionMember
	}

	institution, err := s.Repos.Institution.GetByID(institutionID)
	if err != nil {
		return err
	}

	err = s.Tx.WithTx(func(r *repository.Repositories) error {
		if user.Role == models.ROLE_STUDENT {
			license, err := s.currentLicense(r, institutionID)
			if err != nil {
				return err
			}
			if license.IsPerStudent() {
				if err := r.License.ConsumeSeat(license.ID); err != nil {
					if errors.Is(err, repository.ErrSeatUnavailable) {
						return ErrSeatUnavailable
					}
					return err
				}
			}
		}
		changed, err := r.User.TransitionStatus(userID, models.STATUS_INACTIVE, models.STATUS_ACTIVE)
		if err != nil {
			return err
		}
		if !changed {
			// Roll the transaction back so the seat consumed above is undone.
			return fmt.Errorf("user %d is not inactive", userID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.checkSeatThreshold(institution)

	return nil
}

// SeatAvailability reports the seat headroom of the institution's current
// license.
func (s *Service) SeatAvailability(institutionID uint) (*models.SeatAvailability, error) {
	return s.Repos.License.SeatAvailability(institutionID)
}

func (s *Service) currentLicense(r *repository.Repositories, institutionID uint) (*models.License, error) {
	license, err := r.License.GetCurrent(institutionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCurrentLicense
		}
		return nil, err
	}
	return license, nil
}

// checkSeatThreshold alerts all admins of the institution when seat usage is
// at or above the warning threshold. It runs after every successful seat
// consumption and intentionally re-fires per event; see DESIGN.md.
func (s *Service) checkSeatThreshold(institution *models.Institution) {
	license, err := s.Repos.License.GetCurrent(institution.ID)
	if err != nil {
		return
	}
	if !license.IsPerStudent() || license.LicensedSeats == nil {
		return
	}
	if license.UsagePercent() < SeatWarnThreshold {
		return
	}

	admins, err := s.Repos.User.ListAdmins(institution.ID)
	if err != nil {
		log.Printf("seat threshold: listing admins for institution %d failed: %v", institution.ID, err)
		return
	}

	content := fmt.Sprintf("%s is using %d of %d licensed seats",
		institution.Name, license.UsedSeats, *license.LicensedSeats)
	for _, admin := range admins {
		if err := s.Repos.Notification.Create(&models.Notification{
			UserID:      admin.ID,
			Type:        models.NOTIFICATION_SEAT_THRESHOLD,
			Content:     content,
			ReferenceID: license.ID,
		}); err != nil {
			log.Printf("seat threshold notification for user %d failed: %v", admin.ID, err)
		}
		if err := s.Mailer.Send(admin.Email, mail.SeatThresholdSubject(institution.Name),
			mail.SeatThresholdBody(institution.Name, license.UsedSeats, *license.LicensedSeats)); err != nil {
			log.Printf("seat threshold email to %s failed: %v", admin.Email, err)
		}
	}
}
