package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Medication holds a user's medication and its daily dose schedule.
// Times is the ordered comma-joined list of "HH:mm" strings as configured
// on the medication form; TimeList/SetTimeList convert at the boundary.
type Medication struct {
	gorm.Model
	Name   string `gorm:"size:120;not null"`
	Dosage string `gorm:"size:80;not null"`
	Times  string `gorm:"size:255;not null"`
	Notes  string `gorm:"size:500"`
}

// TimeList returns the configured dose times in order.
func (m *Medication) TimeList() []string {
	if strings.TrimSpace(m.Times) == "" {
		return nil
	}
	parts := strings.Split(m.Times, ",")
	times := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			times = append(times, t)
		}
	}
	return times
}

// SetTimeList stores the given dose times, preserving order.
func (m *Medication) SetTimeList(times []string) {
	m.Times = strings.Join(times, ",")
}

// MedicationIntake records one scheduled dose occurrence on a specific date
// and time. The medication/date/time triple is logically unique; the
// reconciler in the service layer maintains that invariant and the index
// backs it up. Date is "YYYY-MM-DD" and Time "HH:mm" so lexicographic order
// matches chronological order.
type MedicationIntake struct {
	gorm.Model
	MedicationID uint       `gorm:"index;index:idx_intake_unique,unique"`
	Medication   Medication `gorm:"constraint:OnDelete:CASCADE"`
	Date         string     `gorm:"size:10;index;index:idx_intake_unique,unique"`
	Time         string     `gorm:"size:20;index:idx_intake_unique,unique"`
	Taken        bool       `gorm:"default:false"`
	TakenAt      *time.Time
}

// TableName keeps the unique index scoped to the intended table name.
func (MedicationIntake) TableName() string {
	return "medication_intakes"
}
