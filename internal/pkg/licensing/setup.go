package licensing

import (
	"sync"

	"github.com/CareerForgeHQ/CareerForge/app/repository"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/mail"
)

var (
	globalService *Service
	serviceOnce   sync.Once
)

// SetupService initializes the global licensing service
func SetupService(repos *repository.Repositories, tx repository.TxManager, mailer mail.Mailer) {
	serviceOnce.Do(func() {
		globalService = NewService(repos, tx, mailer)
	})
}

// GetService returns the global licensing service instance
func GetService() *Service {
	if globalService == nil {
		panic("Licensing service not initialized. Call SetupService first.")
	}
	return globalService
}
