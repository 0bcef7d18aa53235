package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carelog/internal/db"
	"github.com/carelog/internal/service"
	"github.com/gin-gonic/gin"
)

type medicationPayload struct {
	Name   string   `json:"name"`
	Dosage string   `json:"dosage"`
	Times  []string `json:"times"`
	// TimesInput accepts the form's comma-separated variant ("08:00, 20:00")
	// and is used when Times is absent.
	TimesInput string `json:"times_input"`
	Notes      string `json:"notes"`
}

type takenPayload struct {
	Taken bool `json:"taken"`
}

// ListMedications returns every medication with its checklist for the
// requested date (default today). Listing reconciles first, so the day's
// intakes exist by the time they are serialized — this is what rolls the
// checklist over to a new day.
func (a *API) ListMedications(c *gin.Context) {
	date := c.DefaultQuery("date", service.Today())

	if err := a.medications.ReconcileAll(date); err != nil {
		handleMedicationError(c, err)
		return
	}

	meds, err := a.medications.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not load medications")
		return
	}

	items := make([]gin.H, 0, len(meds))
	for _, med := range meds {
		intakes, err := a.medications.IntakesForDate(med.ID, date)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "could not load intakes")
			return
		}
		payload := medicationToPayload(med)
		payload["intakes"] = serializeIntakes(intakes)
		items = append(items, payload)
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "medications": items})
}

// CreateMedication stores a new medication and seeds today's checklist.
func (a *API) CreateMedication(c *gin.Context) {
	input, ok := parseMedicationInput(c)
	if !ok {
		return
	}

	med, err := a.medications.Create(input, c.DefaultQuery("date", service.Today()))
	if err != nil {
		handleMedicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"medication": medicationToPayload(*med)})
}

// UpdateMedication saves edits and regenerates today's checklist from the
// new schedule.
func (a *API) UpdateMedication(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid medication id")
		return
	}

	input, ok := parseMedicationInput(c)
	if !ok {
		return
	}

	med, err := a.medications.Update(id, input, c.DefaultQuery("date", service.Today()))
	if err != nil {
		handleMedicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"medication": medicationToPayload(*med)})
}

// DeleteMedication removes a medication and all of its intake history.
func (a *API) DeleteMedication(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid medication id")
		return
	}

	if err := a.medications.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete medication")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetMedicationIntakes returns one medication's intakes for a date, without
// reconciling, so past dates can be inspected as recorded.
func (a *API) GetMedicationIntakes(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid medication id")
		return
	}

	if _, err := a.medications.Get(id); err != nil {
		handleMedicationError(c, err)
		return
	}

	date := c.DefaultQuery("date", service.Today())
	intakes, err := a.medications.IntakesForDate(id, date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not load intakes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "intakes": serializeIntakes(intakes)})
}

// SetIntakeTaken marks or unmarks a single dose.
func (a *API) SetIntakeTaken(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid intake id")
		return
	}

	var payload takenPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	intake, err := a.medications.SetTaken(id, payload.Taken)
	if err != nil {
		handleMedicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"intake": serializeIntake(*intake)})
}

func parseMedicationInput(c *gin.Context) (service.MedicationInput, bool) {
	var payload medicationPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return service.MedicationInput{}, false
	}

	times := payload.Times
	if len(times) == 0 && strings.TrimSpace(payload.TimesInput) != "" {
		times = strings.Split(payload.TimesInput, ",")
	}

	return service.MedicationInput{
		Name:   payload.Name,
		Dosage: payload.Dosage,
		Times:  times,
		Notes:  payload.Notes,
	}, true
}

func medicationToPayload(med db.Medication) gin.H {
	return gin.H{
		"id":         med.ID,
		"name":       med.Name,
		"dosage":     med.Dosage,
		"times":      med.TimeList(),
		"notes":      med.Notes,
		"notes_html": renderNotes(med.Notes),
		"created_at": med.CreatedAt.Format(time.RFC3339),
		"updated_at": med.UpdatedAt.Format(time.RFC3339),
	}
}

func serializeIntakes(intakes []db.MedicationIntake) []gin.H {
	items := make([]gin.H, 0, len(intakes))
	for _, intake := range intakes {
		items = append(items, serializeIntake(intake))
	}
	return items
}

func serializeIntake(intake db.MedicationIntake) gin.H {
	item := gin.H{
		"id":            intake.ID,
		"medication_id": intake.MedicationID,
		"date":          intake.Date,
		"time":          intake.Time,
		"taken":         intake.Taken,
	}
	if intake.TakenAt != nil {
		item["taken_at"] = intake.TakenAt.Format(time.RFC3339)
	}
	return item
}

func handleMedicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMedicationNotFound):
		respondError(c, http.StatusNotFound, "medication not found")
	case errors.Is(err, service.ErrIntakeNotFound):
		respondError(c, http.StatusNotFound, "intake not found")
	case errors.Is(err, service.ErrInvalidSchedule):
		respondError(c, http.StatusBadRequest, "name, dosage and at least one dose time are required")
	case errors.Is(err, service.ErrInvalidDate):
		respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
