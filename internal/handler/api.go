package handler

import (
	"github.com/carelog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	contacts     *service.ContactService
	medications  *service.MedicationService
	appointments *service.AppointmentService
	settings     *service.SettingService
	uploadDir    string
	uploadURL    string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, uploadDir, uploadURL string) *API {
	return &API{
		db:           db,
		contacts:     service.NewContactService(db),
		medications:  service.NewMedicationService(db),
		appointments: service.NewAppointmentService(db),
		settings:     service.NewSettingService(db),
		uploadDir:    uploadDir,
		uploadURL:    uploadURL,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
