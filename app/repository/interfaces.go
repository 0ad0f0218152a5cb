package repository

import (
	"errors"
	"time"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"gorm.io/gorm"
)

// ErrSeatUnavailable is returned by ConsumeSeat when the conditional update
// matched no row, i.e. the license is full, expired or superseded.
var ErrSeatUnavailable = errors.New("no seat available on current license")

// ErrNotPending is returned by invitation Claim/Cancel when the row already
// left the pending state.
var ErrNotPending = errors.New("invitation is not pending")

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	TransitionStatus(id uint, from, to string) (bool, error)
	UpdateLastActive(id uint, at time.Time) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	ListByInstitution(institutionID uint, offset, limit int) ([]models.User, error)
	ListAdmins(institutionID uint) ([]models.User, error)
	Count() (int64, error)
	CountActiveStudents(institutionID uint) (int64, error)
	Search(query string) ([]models.User, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// InstitutionRepository defines the interface for institution operations
type InstitutionRepository interface {
	Create(institution *models.Institution) error
	GetByID(id uint) (*models.Institution, error)
	GetByUUID(uuid string) (*models.Institution, error)
	GetByDomain(domain string) (*models.Institution, error)
	Update(institution *models.Institution) error
	List(offset, limit int) ([]models.Institution, error)
	Count() (int64, error)
}

// LicenseRepository defines the interface for license ledger operations.
// ConsumeSeat and ReleaseSeat are the only writers of used_seats and both are
// single conditional UPDATE statements, so the seat counter can never be
// oversold by concurrent registrations.
type LicenseRepository interface {
	Create(license *models.License) error
	GetByID(id uint) (*models.License, error)
	GetCurrent(institutionID uint) (*models.License, error)
	SeatAvailability(institutionID uint) (*models.SeatAvailability, error)
	ConsumeSeat(licenseID uint) error
	ReleaseSeat(licenseID uint) error
	ListByInstitution(institutionID uint) ([]models.License, error)
	SumUsedSeats() (int64, error)
}

// InvitationRepository defines the interface for invitation operations
type InvitationRepository interface {
	Create(invitation *models.Invitation) error
	GetByID(id uint) (*models.Invitation, error)
	GetByUUID(uuid string) (*models.Invitation, error)
	GetPendingByToken(token string) (*models.Invitation, error)
	Claim(id uint, userID uint, at time.Time) error
	Cancel(id uint) error
	ListByInstitution(institutionID uint, offset, limit int) ([]models.Invitation, error)
	CountPendingStudents(institutionID uint) (int64, error)
	HasPendingForEmail(institutionID uint, email string) (bool, error)
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListByUser(userID uint, offset, limit int) ([]models.Notification, error)
	MarkRead(id uint, userID uint) error
}

// TxManager runs a function with repositories bound to a single database
// transaction. Enrollment uses this so user creation and seat consumption
// commit or roll back together.
type TxManager interface {
	WithTx(fn func(r *Repositories) error) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Institution  InstitutionRepository
	License      LicenseRepository
	Invitation   InvitationRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Institution:  NewInstitutionRepository(db),
		License:      NewLicenseRepository(db),
		Invitation:   NewInvitationRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
