package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/carelog/internal/db"
	"github.com/carelog/internal/service"
	"github.com/gin-gonic/gin"
)

type appointmentPayload struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type donePayload struct {
	Done bool `json:"done"`
}

// ListAppointments returns the calendar grouped by date, upcoming groups
// before past ones, relative to the requested date (default today).
func (a *API) ListAppointments(c *gin.Context) {
	today := c.DefaultQuery("date", service.Today())

	grouped, err := a.appointments.Grouped(today)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     today,
		"upcoming": serializeGroups(grouped.Upcoming),
		"past":     serializeGroups(grouped.Past),
	})
}

// CreateAppointment stores a new appointment.
func (a *API) CreateAppointment(c *gin.Context) {
	input, ok := parseAppointmentInput(c)
	if !ok {
		return
	}

	appt, err := a.appointments.Create(input)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointment": appointmentToPayload(*appt)})
}

// UpdateAppointment saves edits to an appointment.
func (a *API) UpdateAppointment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid appointment id")
		return
	}

	input, ok := parseAppointmentInput(c)
	if !ok {
		return
	}

	appt, err := a.appointments.Update(id, input)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointment": appointmentToPayload(*appt)})
}

// DeleteAppointment removes an appointment.
func (a *API) DeleteAppointment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid appointment id")
		return
	}

	if err := a.appointments.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete appointment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetAppointmentDone marks an appointment as done or pending.
func (a *API) SetAppointmentDone(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var payload donePayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	appt, err := a.appointments.SetDone(id, payload.Done)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointment": appointmentToPayload(*appt)})
}

func parseAppointmentInput(c *gin.Context) (service.AppointmentInput, bool) {
	var payload appointmentPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return service.AppointmentInput{}, false
	}

	return service.AppointmentInput{
		Title:    payload.Title,
		Date:     payload.Date,
		Time:     payload.Time,
		Location: payload.Location,
		Notes:    payload.Notes,
	}, true
}

func serializeGroups(groups []service.AppointmentGroup) []gin.H {
	items := make([]gin.H, 0, len(groups))
	for _, group := range groups {
		appts := make([]gin.H, 0, len(group.Appointments))
		for _, appt := range group.Appointments {
			appts = append(appts, appointmentToPayload(appt))
		}
		items = append(items, gin.H{"date": group.Date, "appointments": appts})
	}
	return items
}

func appointmentToPayload(appt db.Appointment) gin.H {
	return gin.H{
		"id":         appt.ID,
		"title":      appt.Title,
		"date":       appt.Date,
		"time":       appt.Time,
		"location":   appt.Location,
		"notes":      appt.Notes,
		"notes_html": renderNotes(appt.Notes),
		"done":       appt.Done,
		"created_at": appt.CreatedAt.Format(time.RFC3339),
		"updated_at": appt.UpdatedAt.Format(time.RFC3339),
	}
}

func handleAppointmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAppointmentNotFound):
		respondError(c, http.StatusNotFound, "appointment not found")
	case errors.Is(err, service.ErrInvalidAppointment):
		respondError(c, http.StatusBadRequest, "title and a YYYY-MM-DD date are required")
	case errors.Is(err, service.ErrInvalidDate):
		respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
