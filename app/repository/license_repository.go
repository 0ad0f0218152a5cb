package repository

import (
	"time"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"gorm.io/gorm"
)

// licenseRepository implements the LicenseRepository interface
type licenseRepository struct {
	db *gorm.DB
}

// NewLicenseRepository creates a new license repository instance
func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &licenseRepository{db: db}
}

// Create inserts a new license and supersedes all prior licenses of the same
// institution in the same transaction, which keeps the "at most one current
// license" invariant without a uniqueness constraint.
func (r *licenseRepository) Create(license *models.License) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.License{}).
			Where("institution_id = ? AND is_active = ?", license.InstitutionID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		license.IsActive = true
		return tx.Create(license).Error
	})
}

// GetByID retrieves a license by its ID
func (r *licenseRepository) GetByID(id uint) (*models.License, error) {
	var license models.License
	err := r.db.First(&license, id).Error
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// GetCurrent returns the single license that grants access right now:
// active, not past its end date, newest created_at as tie-break. A
// gorm.ErrRecordNotFound result means the institution has no access.
func (r *licenseRepository) GetCurrent(institutionID uint) (*models.License, error) {
	var license models.License
	err := r.db.Where("institution_id = ? AND is_active = ? AND end_date > ?",
		institutionID, true, time.Now()).
		Order("created_at DESC").
		First(&license).Error
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// SeatAvailability summarizes the seat headroom of the current license. No
// current license means no availability.
func (r *licenseRepository) SeatAvailability(institutionID uint) (*models.SeatAvailability, error) {
	license, err := r.GetCurrent(institutionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.SeatAvailability{Available: false}, nil
		}
		return nil, err
	}

	return &models.SeatAvailability{
		Available:  license.HasSeatAvailable(),
		UsedSeats:  license.UsedSeats,
		TotalSeats: license.LicensedSeats,
	}, nil
}

// ConsumeSeat atomically takes one seat on the license. The guard condition
// runs inside the UPDATE itself, so two concurrent registrations racing for
// the last seat cannot both succeed. Site licenses (licensed_seats IS NULL)
// always have room.
func (r *licenseRepository) ConsumeSeat(licenseID uint) error {
	res := r.db.Model(&models.License{}).
		Where("id = ? AND is_active = ? AND end_date > ?", licenseID, true, time.Now()).
		Where("licensed_seats IS NULL OR used_seats < licensed_seats").
		Update("used_seats", gorm.Expr("used_seats + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSeatUnavailable
	}
	return nil
}

// ReleaseSeat atomically frees one seat, clamped at zero so double
// terminations can never drive the counter negative.
func (r *licenseRepository) ReleaseSeat(licenseID uint) error {
	return r.db.Model(&models.License{}).
		Where("id = ?", licenseID).
		Update("used_seats", gorm.Expr("GREATEST(used_seats - 1, 0)")).Error
}

// ListByInstitution returns the full license history of an institution, newest
// first.
func (r *licenseRepository) ListByInstitution(institutionID uint) ([]models.License, error) {
	var licenses []models.License
	err := r.db.Where("institution_id = ?", institutionID).
		Order("created_at DESC").Find(&licenses).Error
	return licenses, err
}

// SumUsedSeats totals consumed seats across all active licenses
func (r *licenseRepository) SumUsedSeats() (int64, error) {
	var total int64
	err := r.db.Model(&models.License{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(used_seats), 0)").Row().Scan(&total)
	return total, err
}
