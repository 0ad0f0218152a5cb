package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Institution is a partner school or company whose members get institutional
// access. Deactivation is a soft flag; rows are never hard-deleted so that
// licenses and invitations stay auditable.
type Institution struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Name           string         `gorm:"type:varchar(200)" json:"name" validate:"required,min=2,max=200"`
	ContactEmail   string         `gorm:"type:varchar(200)" json:"contact_email" validate:"omitempty,email,max=200"`
	Domain         string         `gorm:"type:varchar(200);index" json:"domain" validate:"required,fqdn,max=200"`
	AllowedDomains string         `gorm:"type:text" json:"allowed_domains"` // comma separated, see DomainList
	LogoURL        string         `gorm:"type:varchar(255);default:null" json:"logo_url" validate:"max=255"`
	PrimaryColor   string         `gorm:"type:varchar(20);default:null" json:"primary_color" validate:"max=20"`
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Licenses []License `gorm:"foreignKey:InstitutionID" json:"licenses,omitempty"`
}

func (i *Institution) Validate() error {
	v := validator.New()

	return v.Struct(i)
}

func (i *Institution) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == "" {
		i.UUID = uuid.New().String()
	}
	return nil
}

// DomainList returns the primary domain plus all additional allowed domains,
// lowercased and with empty entries removed.
func (i *Institution) DomainList() []string {
	domains := []string{strings.ToLower(i.Domain)}
	for _, d := range strings.Split(i.AllowedDomains, ",") {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" && d != domains[0] {
			domains = append(domains, d)
		}
	}
	return domains
}

// MatchesDomain reports whether the given email domain auto-enrolls into this
// institution.
func (i *Institution) MatchesDomain(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, d := range i.DomainList() {
		if d == domain {
			return true
		}
	}
	return false
}

// SetAllowedDomains stores the additional allowlist entries.
func (i *Institution) SetAllowedDomains(domains []string) {
	cleaned := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			cleaned = append(cleaned, d)
		}
	}
	i.AllowedDomains = strings.Join(cleaned, ",")
}

// EmailDomain extracts the domain part of an email address.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
