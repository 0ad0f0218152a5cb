package repository

import (
	"strings"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"gorm.io/gorm"
)

// institutionRepository implements the InstitutionRepository interface
type institutionRepository struct {
	db *gorm.DB
}

// NewInstitutionRepository creates a new institution repository instance
func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &institutionRepository{db: db}
}

// Create creates a new institution in the database
func (r *institutionRepository) Create(institution *models.Institution) error {
	return r.db.Create(institution).Error
}

// GetByID retrieves an institution by its ID
func (r *institutionRepository) GetByID(id uint) (*models.Institution, error) {
	var institution models.Institution
	err := r.db.First(&institution, id).Error
	if err != nil {
		return nil, err
	}
	return &institution, nil
}

// GetByUUID retrieves an institution by its public UUID
func (r *institutionRepository) GetByUUID(uuid string) (*models.Institution, error) {
	var institution models.Institution
	err := r.db.Where("uuid = ?", uuid).First(&institution).Error
	if err != nil {
		return nil, err
	}
	return &institution, nil
}

// GetByDomain resolves an email domain to an active institution, matching the
// primary domain or any entry of the allowlist. Inactive institutions never
// match, so their members cannot auto-enroll.
func (r *institutionRepository) GetByDomain(domain string) (*models.Institution, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var institution models.Institution
	err := r.db.Where("is_active = ?", true).
		Where("domain = ? OR FIND_IN_SET(?, allowed_domains) > 0", domain, domain).
		First(&institution).Error
	if err != nil {
		return nil, err
	}
	return &institution, nil
}

// Update updates an existing institution in the database
func (r *institutionRepository) Update(institution *models.Institution) error {
	return r.db.Save(institution).Error
}

// List retrieves a paginated list of institutions
func (r *institutionRepository) List(offset, limit int) ([]models.Institution, error) {
	var institutions []models.Institution
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&institutions).Error
	return institutions, err
}

// Count returns the total number of institutions
func (r *institutionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Institution{}).Count(&count).Error
	return count, err
}
