package repository

import (
	"time"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"gorm.io/gorm"
)

// invitationRepository implements the InvitationRepository interface
type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new invitation repository instance
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

// Create creates a new invitation in the database
func (r *invitationRepository) Create(invitation *models.Invitation) error {
	return r.db.Create(invitation).Error
}

// GetByID retrieves an invitation by its ID
func (r *invitationRepository) GetByID(id uint) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.First(&invitation, id).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// GetByUUID retrieves an invitation by its public UUID
func (r *invitationRepository) GetByUUID(uuid string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.Where("uuid = ?", uuid).First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// GetPendingByToken resolves a token to its invitation only while the
// invitation is still claimable. Claimed, cancelled and expired tokens look
// exactly like unknown tokens to callers.
func (r *invitationRepository) GetPendingByToken(token string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.Where("token = ? AND status = ? AND expires_at > ?",
		token, models.INVITATION_PENDING, time.Now()).
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Claim transitions a pending invitation to claimed. The status guard runs in
// the UPDATE itself so a token can be claimed at most once; the second caller
// gets ErrNotPending.
func (r *invitationRepository) Claim(id uint, userID uint, at time.Time) error {
	res := r.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.INVITATION_PENDING).
		Updates(map[string]interface{}{
			"status":     models.INVITATION_CLAIMED,
			"claimed_by": userID,
			"claimed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// Cancel transitions a pending invitation to expired, making the token
// permanently unusable. The row is kept for audit.
func (r *invitationRepository) Cancel(id uint) error {
	res := r.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.INVITATION_PENDING).
		Update("status", models.INVITATION_EXPIRED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// ListByInstitution retrieves a paginated list of invitations of an institution
func (r *invitationRepository) ListByInstitution(institutionID uint, offset, limit int) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := r.db.Where("institution_id = ?", institutionID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&invitations).Error
	return invitations, err
}

// CountPendingStudents counts unclaimed, unexpired student invitations of an
// institution. Invite-time seat checks include these so an admin cannot mail
// out more invitations than there are seats left.
func (r *invitationRepository) CountPendingStudents(institutionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Invitation{}).
		Where("institution_id = ? AND role = ? AND status = ? AND expires_at > ?",
			institutionID, models.ROLE_STUDENT, models.INVITATION_PENDING, time.Now()).
		Count(&count).Error
	return count, err
}

// HasPendingForEmail reports whether the email already has an open invitation
// at this institution.
func (r *invitationRepository) HasPendingForEmail(institutionID uint, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Invitation{}).
		Where("institution_id = ? AND email = ? AND status = ? AND expires_at > ?",
			institutionID, email, models.INVITATION_PENDING, time.Now()).
		Count(&count).Error
	return count > 0, err
}
