package router

import (
	"github.com/carelog/internal/config"
	"github.com/carelog/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup configures the Gin engine and routes against the given database.
func Setup(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("carelog_session", store))

	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	a := handler.NewAPI(gdb, cfg.UploadDir, cfg.UploadURLPath)

	api := r.Group("/api")
	{
		api.GET("/contacts", a.ListContacts)
		api.POST("/contacts", a.CreateContact)
		api.DELETE("/contacts/:id", a.DeleteContact)
		api.PUT("/contacts/:id/admin", a.SetContactAdmin)
		api.POST("/contacts/:id/call", a.CallContact)
		api.POST("/contacts/photo", a.UploadContactPhoto)

		api.GET("/medications", a.ListMedications)
		api.POST("/medications", a.CreateMedication)
		api.PUT("/medications/:id", a.UpdateMedication)
		api.DELETE("/medications/:id", a.DeleteMedication)
		api.GET("/medications/:id/intakes", a.GetMedicationIntakes)
		api.PUT("/intakes/:id/taken", a.SetIntakeTaken)

		api.GET("/appointments", a.ListAppointments)
		api.POST("/appointments", a.CreateAppointment)
		api.PUT("/appointments/:id", a.UpdateAppointment)
		api.DELETE("/appointments/:id", a.DeleteAppointment)
		api.PUT("/appointments/:id/done", a.SetAppointmentDone)

		api.GET("/settings", a.GetSettings)
		api.PUT("/settings", a.UpdateSettings)
		api.POST("/preferences/font-scale", a.CycleFontScale)
		api.DELETE("/preferences/font-scale", a.ResetFontScale)
	}

	return r
}
