package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	LICENSE_TYPE_PER_STUDENT = "per_student"
	LICENSE_TYPE_SITE        = "site"
)

// License is one validity window of institutional access. An institution
// accumulates license rows over time; at most one is current (is_active and
// end_date in the future, newest created_at wins). Old rows are superseded,
// never deleted.
type License struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	InstitutionID uint         `gorm:"not null;index" json:"institution_id"`
	Institution   *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	LicenseType   string       `gorm:"type:varchar(20);not null;default:'per_student'" json:"license_type" validate:"oneof=per_student site"`
	LicensedSeats *int         `gorm:"default:null" json:"licensed_seats"` // nil = unlimited (site license)
	UsedSeats     int          `gorm:"not null;default:0" json:"used_seats"`
	StartDate     time.Time    `gorm:"type:timestamp;not null" json:"start_date"`
	EndDate       time.Time    `gorm:"type:timestamp;not null;index" json:"end_date"`
	IsActive      bool         `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *License) Validate() error {
	v := validator.New()

	return v.Struct(l)
}

// IsCurrent reports whether this license grants access at the given time.
func (l *License) IsCurrent(now time.Time) bool {
	return l.IsActive && l.EndDate.After(now)
}

// IsPerStudent reports whether seat accounting applies to this license.
func (l *License) IsPerStudent() bool {
	return l.LicenseType == LICENSE_TYPE_PER_STUDENT
}

// HasSeatAvailable reports whether one more student can be enrolled. Site
// licenses are unlimited.
func (l *License) HasSeatAvailable() bool {
	if !l.IsPerStudent() || l.LicensedSeats == nil {
		return true
	}
	return l.UsedSeats < *l.LicensedSeats
}

// UsagePercent returns used seats as a fraction of licensed seats, or 0 for
// site licenses.
func (l *License) UsagePercent() float64 {
	if !l.IsPerStudent() || l.LicensedSeats == nil || *l.LicensedSeats == 0 {
		return 0
	}
	return float64(l.UsedSeats) / float64(*l.LicensedSeats)
}

// SeatAvailability is the seat headroom summary exposed on the license API and
// checked before invitations are issued.
type SeatAvailability struct {
	Available  bool `json:"available"`
	UsedSeats  int  `json:"used_seats"`
	TotalSeats *int `json:"total_seats"` // nil = unlimited
}
