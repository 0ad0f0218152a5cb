package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByActivationToken retrieves a user by their activation token
func (r *userRepository) GetByActivationToken(token string) (*models.User, error) {
	var user models.User
	err := r.db.Where("activation_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// TransitionStatus flips the user's status only when it currently has the
// expected value, reporting whether a row changed. The guard runs in the
// UPDATE itself, so two concurrent terminations cannot both observe the old
// status and both release a seat.
func (r *userRepository) TransitionStatus(id uint, from, to string) (bool, error) {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateLastActive stamps the last activity timestamp of a user
func (r *userRepository) UpdateLastActive(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_active_at", at).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// ListByInstitution retrieves a paginated list of users attached to an institution
func (r *userRepository) ListByInstitution(institutionID uint, offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("institution_id = ?", institutionID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// ListAdmins returns all active admin-role users of an institution. These are
// the recipients of seat threshold alerts.
func (r *userRepository) ListAdmins(institutionID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("institution_id = ? AND role = ? AND status = ?",
		institutionID, models.ROLE_ADMIN, models.STATUS_ACTIVE).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountActiveStudents counts the seat-consuming users of an institution. Used
// to reconcile the used_seats counter against reality.
func (r *userRepository) CountActiveStudents(institutionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("institution_id = ? AND role = ? AND status = ?",
			institutionID, models.ROLE_STUDENT, models.STATUS_ACTIVE).
		Count(&count).Error
	return count, err
}

// Search searches for users by name or email
func (r *userRepository) Search(query string) ([]models.User, error) {
	var users []models.User
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name LIKE ? OR email LIKE ?", searchPattern, searchPattern).Find(&users).Error
	return users, err
}

// GetDailyStats returns daily user registration statistics for a date range
func (r *userRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	// Use DATE_FORMAT for MySQL compatibility and proper date formatting
	err := r.db.Model(&models.User{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily user stats: %w", err)
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}

	return dailyStats, nil
}
