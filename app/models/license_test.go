package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestLicenseIsCurrent(t *testing.T) {
	now := time.Now()

	active := &License{IsActive: true, EndDate: now.Add(24 * time.Hour)}
	assert.True(t, active.IsCurrent(now))

	expired := &License{IsActive: true, EndDate: now.Add(-time.Minute)}
	assert.False(t, expired.IsCurrent(now))

	superseded := &License{IsActive: false, EndDate: now.Add(24 * time.Hour)}
	assert.False(t, superseded.IsCurrent(now))
}

func TestLicenseHasSeatAvailable(t *testing.T) {
	l := &License{LicenseType: LICENSE_TYPE_PER_STUDENT, LicensedSeats: intPtr(2), UsedSeats: 0}
	assert.True(t, l.HasSeatAvailable())

	l.UsedSeats = 2
	assert.False(t, l.HasSeatAvailable())

	site := &License{LicenseType: LICENSE_TYPE_SITE, UsedSeats: 1000}
	assert.True(t, site.HasSeatAvailable())

	unlimited := &License{LicenseType: LICENSE_TYPE_PER_STUDENT, LicensedSeats: nil, UsedSeats: 1000}
	assert.True(t, unlimited.HasSeatAvailable())
}

func TestLicenseUsagePercent(t *testing.T) {
	l := &License{LicenseType: LICENSE_TYPE_PER_STUDENT, LicensedSeats: intPtr(10), UsedSeats: 8}
	assert.InDelta(t, 0.8, l.UsagePercent(), 0.0001)

	l.UsedSeats = 0
	assert.Zero(t, l.UsagePercent())

	site := &License{LicenseType: LICENSE_TYPE_SITE, UsedSeats: 50}
	assert.Zero(t, site.UsagePercent())

	zeroCap := &License{LicenseType: LICENSE_TYPE_PER_STUDENT, LicensedSeats: intPtr(0)}
	assert.Zero(t, zeroCap.UsagePercent())
}

func TestLicenseValidateRejectsUnknownType(t *testing.T) {
	l := &License{
		InstitutionID: 1,
		LicenseType:   "perpetual",
		StartDate:     time.Now(),
		EndDate:       time.Now().Add(time.Hour),
	}
	assert.Error(t, l.Validate())
}
