package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	INVITATION_PENDING = "pending"
	INVITATION_CLAIMED = "claimed"
	INVITATION_EXPIRED = "expired"

	// InvitationTTL is the window in which a freshly minted invitation can be
	// claimed.
	InvitationTTL = 7 * 24 * time.Hour
)

// Invitation binds an email address to an institution and role via a
// single-use token. State machine: pending -> claimed (registration) or
// pending -> expired (cancel or timeout); both end states are terminal and
// rows are kept for audit.
type Invitation struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UUID          string       `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	InstitutionID uint         `gorm:"not null;index" json:"institution_id"`
	Institution   *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	Email         string       `gorm:"type:varchar(200);not null;index" json:"email" validate:"required,email,max=200"`
	Role          string       `gorm:"type:varchar(50);not null;default:'student'" json:"role" validate:"oneof=student admin"`
	Token         string       `gorm:"type:varchar(100);uniqueIndex" json:"-"`
	Status        string       `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"oneof=pending claimed expired"`
	ExpiresAt     time.Time    `gorm:"type:timestamp;not null" json:"expires_at"`
	InvitedBy     uint         `gorm:"not null" json:"invited_by"`
	ClaimedBy     *uint        `gorm:"default:null" json:"claimed_by"`
	ClaimedAt     *time.Time   `gorm:"type:timestamp;default:null" json:"claimed_at"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Invitation) Validate() error {
	v := validator.New()

	return v.Struct(i)
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == "" {
		i.UUID = uuid.New().String()
	}
	return nil
}

// NewInvitation mints a pending invitation with a fresh random token and the
// standard 7 day expiry.
func NewInvitation(institutionID uint, email string, role string, invitedBy uint) (*Invitation, error) {
	token, err := GenerateInvitationToken()
	if err != nil {
		return nil, err
	}

	inv := &Invitation{
		InstitutionID: institutionID,
		Email:         email,
		Role:          role,
		Token:         token,
		Status:        INVITATION_PENDING,
		ExpiresAt:     time.Now().Add(InvitationTTL),
		InvitedBy:     invitedBy,
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	return inv, nil
}

// GenerateInvitationToken returns a 64 character hex token from crypto/rand.
func GenerateInvitationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsClaimable reports whether the invitation can still be redeemed at the
// given time.
func (i *Invitation) IsClaimable(now time.Time) bool {
	return i.Status == INVITATION_PENDING && i.ExpiresAt.After(now)
}
