package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/cache"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/database"
)

const (
	CacheKeyUsersTotal        = "statistics:users:total"
	CacheKeyInstitutionsTotal = "statistics:institutions:total"
	CacheKeySeatsUsed         = "statistics:seats:used"
	CacheExpiration           = 30 * time.Minute
)

// StatisticsData holds the platform stats shown on the public stats endpoint
type StatisticsData struct {
	TotalUsers        int `json:"total_users"`
	TotalInstitutions int `json:"total_institutions"`
	SeatsUsed         int `json:"seats_used"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache checks whether the cache is due for a refresh
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cache when the interval has passed
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Failed to update statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// UpdateStatisticsCache recomputes all platform statistics and stores them in
// the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting users: %v", err)
		return err
	}

	var totalInstitutions int64
	if err := db.Model(&models.Institution{}).Where("is_active = ?", true).Count(&totalInstitutions).Error; err != nil {
		log.Printf("Error counting institutions: %v", err)
		return err
	}

	var seatsUsed int64
	if err := db.Model(&models.License{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(used_seats), 0)").Row().Scan(&seatsUsed); err != nil {
		log.Printf("Error summing used seats: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsersTotal, totalUsers, CacheExpiration); err != nil {
		return fmt.Errorf("failed to cache user total: %w", err)
	}
	if err := cache.Set(CacheKeyInstitutionsTotal, totalInstitutions, CacheExpiration); err != nil {
		return fmt.Errorf("failed to cache institution total: %w", err)
	}
	if err := cache.Set(CacheKeySeatsUsed, seatsUsed, CacheExpiration); err != nil {
		return fmt.Errorf("failed to cache seat usage: %w", err)
	}

	return nil
}

// GetStatistics reads the cached platform stats, refreshing the cache when a
// key is missing
func GetStatistics() StatisticsData {
	data := StatisticsData{}

	users, err := cache.Get(CacheKeyUsersTotal)
	if err != nil {
		if err := UpdateStatisticsCache(); err != nil {
			return data
		}
		users, _ = cache.Get(CacheKeyUsersTotal)
	}
	data.TotalUsers = atoiOrZero(users)

	institutions, _ := cache.Get(CacheKeyInstitutionsTotal)
	data.TotalInstitutions = atoiOrZero(institutions)

	seats, _ := cache.Get(CacheKeySeatsUsed)
	data.SeatsUsed = atoiOrZero(seats)

	return data
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
