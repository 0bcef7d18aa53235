package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/carelog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrMedicationNotFound is returned when the referenced medication does not exist.
	ErrMedicationNotFound = errors.New("medication not found")
	// ErrIntakeNotFound is returned when the referenced intake record does not exist.
	ErrIntakeNotFound = errors.New("intake not found")
	// ErrInvalidSchedule is returned when a medication is missing its name,
	// dosage or at least one dose time.
	ErrInvalidSchedule = errors.New("invalid medication schedule")
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

var (
	timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// MedicationService owns medication CRUD and the daily intake checklist.
// Dates and times are fixed-width strings ("YYYY-MM-DD", "HH:mm") compared
// lexicographically, so the service never parses them into calendar types.
type MedicationService struct {
	db *gorm.DB
}

// MedicationInput carries the fields configurable on the medication form.
// Times holds the raw tokens as typed; they are normalized on save.
type MedicationInput struct {
	Name   string
	Dosage string
	Times  []string
	Notes  string
}

// NewMedicationService constructs a MedicationService.
func NewMedicationService(gdb *gorm.DB) *MedicationService {
	return &MedicationService{db: gdb}
}

// NormalizeTime zero-pads a token matching H:MM/HH:MM and clamps the hour
// to [0,23] and the minute to [0,59]. Anything else is returned unchanged
// and treated as an opaque string downstream, matching what users already
// have stored.
func NormalizeTime(token string) string {
	m := timePattern.FindStringSubmatch(token)
	if m == nil {
		return token
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 {
		hour = 23
	}
	if minute > 59 {
		minute = 59
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// NormalizeTimes trims, normalizes and de-duplicates dose time tokens while
// preserving first-seen order. Empty tokens are dropped.
func NormalizeTimes(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	times := make([]string, 0, len(tokens))

	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		normalized := NormalizeTime(token)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		times = append(times, normalized)
	}

	return times
}

// ParseTimesInput splits a comma-separated schedule string ("08:00, 20:00")
// into normalized dose times.
func ParseTimesInput(raw string) []string {
	return NormalizeTimes(strings.Split(raw, ","))
}

// Today returns the current calendar date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format("2006-01-02")
}

func validateDate(date string) error {
	if !datePattern.MatchString(date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

func validateMedicationInput(input MedicationInput, times []string) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSchedule)
	}
	if strings.TrimSpace(input.Dosage) == "" {
		return fmt.Errorf("%w: dosage is required", ErrInvalidSchedule)
	}
	if len(times) == 0 {
		return fmt.Errorf("%w: at least one dose time is required", ErrInvalidSchedule)
	}
	return nil
}

// List returns all medications, oldest first.
func (s *MedicationService) List() ([]db.Medication, error) {
	var meds []db.Medication
	if err := s.db.Order("created_at ASC").Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return meds, nil
}

// Get returns a medication by ID.
func (s *MedicationService) Get(id uint) (*db.Medication, error) {
	var med db.Medication
	if err := s.db.First(&med, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMedicationNotFound
		}
		return nil, fmt.Errorf("get medication: %w", err)
	}
	return &med, nil
}

// Create validates and stores a medication and seeds today's unmarked
// intakes for it in the same transaction.
func (s *MedicationService) Create(input MedicationInput, today string) (*db.Medication, error) {
	times := NormalizeTimes(input.Times)
	if err := validateMedicationInput(input, times); err != nil {
		return nil, err
	}
	if err := validateDate(today); err != nil {
		return nil, err
	}

	med := db.Medication{
		Name:   strings.TrimSpace(input.Name),
		Dosage: strings.TrimSpace(input.Dosage),
		Notes:  strings.TrimSpace(input.Notes),
	}
	med.SetTimeList(times)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&med).Error; err != nil {
			return err
		}
		return insertIntakes(tx, med.ID, today, times)
	})
	if err != nil {
		return nil, fmt.Errorf("create medication: %w", err)
	}

	return &med, nil
}

// Update saves the edited medication and applies the schedule change to
// today's checklist: today's intakes are dropped and regenerated unmarked
// from the new time list, in one transaction. Intakes of any other date are
// left alone, so history stays immutable once the date has rolled over.
func (s *MedicationService) Update(id uint, input MedicationInput, today string) (*db.Medication, error) {
	times := NormalizeTimes(input.Times)
	if err := validateMedicationInput(input, times); err != nil {
		return nil, err
	}
	if err := validateDate(today); err != nil {
		return nil, err
	}

	var med db.Medication
	if err := s.db.First(&med, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMedicationNotFound
		}
		return nil, fmt.Errorf("find medication: %w", err)
	}

	med.Name = strings.TrimSpace(input.Name)
	med.Dosage = strings.TrimSpace(input.Dosage)
	med.Notes = strings.TrimSpace(input.Notes)
	med.SetTimeList(times)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&med).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("medication_id = ? AND date = ?", med.ID, today).
			Delete(&db.MedicationIntake{}).Error; err != nil {
			return err
		}
		return insertIntakes(tx, med.ID, today, times)
	})
	if err != nil {
		return nil, fmt.Errorf("update medication: %w", err)
	}

	return &med, nil
}

// Delete removes a medication together with every intake record that
// references it, as one atomic unit.
func (s *MedicationService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("medication_id = ?", id).
			Delete(&db.MedicationIntake{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&db.Medication{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	return nil
}

// ReconcileToday makes sure one intake record exists for each of the
// medication's configured times on the given date, creating the missing
// ones unmarked. Existing records are never touched, so repeated calls are
// idempotent and a checked-off dose stays checked off.
func (s *MedicationService) ReconcileToday(medicationID uint, today string) error {
	if err := validateDate(today); err != nil {
		return err
	}

	med, err := s.Get(medicationID)
	if err != nil {
		return err
	}

	existing, err := s.IntakesForDate(med.ID, today)
	if err != nil {
		return err
	}

	present := make(map[string]struct{}, len(existing))
	for _, intake := range existing {
		present[intake.Date+"|"+intake.Time] = struct{}{}
	}

	var missing []string
	for _, t := range med.TimeList() {
		if _, ok := present[today+"|"+t]; !ok {
			missing = append(missing, t)
		}
	}

	if err := insertIntakes(s.db, med.ID, today, missing); err != nil {
		return fmt.Errorf("reconcile medication %d: %w", med.ID, err)
	}
	return nil
}

// ReconcileAll runs ReconcileToday for every medication. The list screen
// calls this on load so the day's checklist exists after a date rollover.
func (s *MedicationService) ReconcileAll(today string) error {
	meds, err := s.List()
	if err != nil {
		return err
	}
	for _, med := range meds {
		if err := s.ReconcileToday(med.ID, today); err != nil {
			return err
		}
	}
	return nil
}

// IntakesForDate returns the medication's intakes on a date, ordered by time.
func (s *MedicationService) IntakesForDate(medicationID uint, date string) ([]db.MedicationIntake, error) {
	var intakes []db.MedicationIntake
	if err := s.db.
		Where("medication_id = ? AND date = ?", medicationID, date).
		Order("time ASC").
		Find(&intakes).Error; err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}
	return intakes, nil
}

// IntakesOn returns every intake of the given date across medications.
func (s *MedicationService) IntakesOn(date string) ([]db.MedicationIntake, error) {
	var intakes []db.MedicationIntake
	if err := s.db.
		Where("date = ?", date).
		Order("medication_id ASC, time ASC").
		Find(&intakes).Error; err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}
	return intakes, nil
}

// SetTaken flips the taken flag on a single intake, stamping TakenAt when
// marked and clearing it when unmarked.
func (s *MedicationService) SetTaken(intakeID uint, taken bool) (*db.MedicationIntake, error) {
	var intake db.MedicationIntake
	if err := s.db.First(&intake, intakeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntakeNotFound
		}
		return nil, fmt.Errorf("find intake: %w", err)
	}

	intake.Taken = taken
	if taken {
		now := time.Now()
		intake.TakenAt = &now
	} else {
		intake.TakenAt = nil
	}

	if err := s.db.Save(&intake).Error; err != nil {
		return nil, fmt.Errorf("update intake: %w", err)
	}
	return &intake, nil
}

func insertIntakes(tx *gorm.DB, medicationID uint, date string, times []string) error {
	if len(times) == 0 {
		return nil
	}

	intakes := make([]db.MedicationIntake, 0, len(times))
	for _, t := range times {
		intakes = append(intakes, db.MedicationIntake{
			MedicationID: medicationID,
			Date:         date,
			Time:         t,
			Taken:        false,
		})
	}

	return tx.Create(&intakes).Error
}
