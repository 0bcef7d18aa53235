package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/carelog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrAppointmentNotFound is returned when the referenced appointment does not exist.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrInvalidAppointment is returned when the required title or date is missing.
	ErrInvalidAppointment = errors.New("invalid appointment")
)

// AppointmentService owns appointment CRUD and the grouped listing shown on
// the appointments screen.
type AppointmentService struct {
	db *gorm.DB
}

// AppointmentInput carries the fields configurable on the appointment form.
type AppointmentInput struct {
	Title    string
	Date     string
	Time     string
	Location string
	Notes    string
}

// AppointmentGroup is one date with its appointments ordered by time.
type AppointmentGroup struct {
	Date         string
	Appointments []db.Appointment
}

// GroupedAppointments partitions the calendar around a reference date:
// today-or-future groups first in ascending date order, then past groups,
// also ascending.
type GroupedAppointments struct {
	Upcoming []AppointmentGroup
	Past     []AppointmentGroup
}

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(gdb *gorm.DB) *AppointmentService {
	return &AppointmentService{db: gdb}
}

func validateAppointmentInput(input AppointmentInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidAppointment)
	}
	if err := validateDate(strings.TrimSpace(input.Date)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAppointment, err)
	}
	return nil
}

func applyAppointmentInput(appt *db.Appointment, input AppointmentInput) {
	appt.Title = strings.TrimSpace(input.Title)
	appt.Date = strings.TrimSpace(input.Date)
	appt.Time = NormalizeTime(strings.TrimSpace(input.Time))
	appt.Location = strings.TrimSpace(input.Location)
	appt.Notes = strings.TrimSpace(input.Notes)
}

// List returns all appointments ordered by date then time.
func (s *AppointmentService) List() ([]db.Appointment, error) {
	var appts []db.Appointment
	if err := s.db.Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	sort.SliceStable(appts, func(i, j int) bool {
		return sortKey(appts[i]) < sortKey(appts[j])
	})
	return appts, nil
}

// Get returns an appointment by ID.
func (s *AppointmentService) Get(id uint) (*db.Appointment, error) {
	var appt db.Appointment
	if err := s.db.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &appt, nil
}

// Create validates and stores a new appointment.
func (s *AppointmentService) Create(input AppointmentInput) (*db.Appointment, error) {
	if err := validateAppointmentInput(input); err != nil {
		return nil, err
	}

	var appt db.Appointment
	applyAppointmentInput(&appt, input)

	if err := s.db.Create(&appt).Error; err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return &appt, nil
}

// Update saves edits to an existing appointment.
func (s *AppointmentService) Update(id uint, input AppointmentInput) (*db.Appointment, error) {
	if err := validateAppointmentInput(input); err != nil {
		return nil, err
	}

	var appt db.Appointment
	if err := s.db.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}

	applyAppointmentInput(&appt, input)

	if err := s.db.Save(&appt).Error; err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return &appt, nil
}

// Delete removes an appointment by ID.
func (s *AppointmentService) Delete(id uint) error {
	if err := s.db.Delete(&db.Appointment{}, id).Error; err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// SetDone flips the done flag on a single appointment.
func (s *AppointmentService) SetDone(id uint, done bool) (*db.Appointment, error) {
	var appt db.Appointment
	if err := s.db.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}

	appt.Done = done
	if err := s.db.Save(&appt).Error; err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return &appt, nil
}

// Grouped partitions all appointments around today, groups them by date and
// orders each group by time of day. Fixed-width date and time strings make
// lexicographic order match chronological order; a missing time sorts as
// "00:00" without being stored.
func (s *AppointmentService) Grouped(today string) (*GroupedAppointments, error) {
	if err := validateDate(today); err != nil {
		return nil, err
	}

	appts, err := s.List()
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]db.Appointment)
	var dates []string
	for _, appt := range appts {
		if _, ok := byDate[appt.Date]; !ok {
			dates = append(dates, appt.Date)
		}
		byDate[appt.Date] = append(byDate[appt.Date], appt)
	}
	sort.Strings(dates)

	grouped := &GroupedAppointments{}
	for _, date := range dates {
		group := AppointmentGroup{Date: date, Appointments: byDate[date]}
		if date >= today {
			grouped.Upcoming = append(grouped.Upcoming, group)
		} else {
			grouped.Past = append(grouped.Past, group)
		}
	}

	return grouped, nil
}

func sortKey(appt db.Appointment) string {
	t := appt.Time
	if t == "" {
		t = "00:00"
	}
	return appt.Date + " " + t
}
