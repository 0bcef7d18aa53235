package service

import (
	"errors"
	"testing"

	"github.com/carelog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) func() {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.Contact{},
		&db.Medication{},
		&db.MedicationIntake{},
		&db.Appointment{},
		&db.Setting{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"8:5", "08:05"},
		{"08:00", "08:00"},
		{"25:99", "23:59"},
		{"0:00", "00:00"},
		{"23:59", "23:59"},
		{"8h30", "8h30"},
		{"morning", "morning"},
	}

	for _, tc := range cases {
		if got := NormalizeTime(tc.in); got != tc.want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTimesDeduplicates(t *testing.T) {
	got := NormalizeTimes([]string{" 8:5 ", "08:05", "", "20:00", "8:05"})
	want := []string{"08:05", "20:00"}

	if len(got) != len(want) {
		t.Fatalf("expected %d times, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseTimesInput(t *testing.T) {
	got := ParseTimesInput("08:00, 20:00")
	if len(got) != 2 || got[0] != "08:00" || got[1] != "20:00" {
		t.Fatalf("unexpected parse result: %v", got)
	}
}

func TestCreateSeedsTodayIntakes(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)
	const today = "2025-01-01"

	med, err := svc.Create(MedicationInput{
		Name:   "Losartana",
		Dosage: "50mg",
		Times:  []string{"08:00", "20:00"},
	}, today)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	intakes, err := svc.IntakesForDate(med.ID, today)
	if err != nil {
		t.Fatalf("IntakesForDate returned error: %v", err)
	}

	if len(intakes) != 2 {
		t.Fatalf("expected 2 intakes, got %d", len(intakes))
	}
	for _, intake := range intakes {
		if intake.Taken {
			t.Fatalf("expected new intakes unmarked, got taken at %s", intake.Time)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)

	cases := []MedicationInput{
		{Dosage: "50mg", Times: []string{"08:00"}},
		{Name: "Losartana", Times: []string{"08:00"}},
		{Name: "Losartana", Dosage: "50mg"},
		{Name: "Losartana", Dosage: "50mg", Times: []string{"  ", ""}},
	}

	for i, input := range cases {
		if _, err := svc.Create(input, "2025-01-01"); !errors.Is(err, ErrInvalidSchedule) {
			t.Fatalf("case %d: expected ErrInvalidSchedule, got %v", i, err)
		}
	}

	if _, err := svc.Create(MedicationInput{
		Name: "Losartana", Dosage: "50mg", Times: []string{"08:00"},
	}, "01/01/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatal("expected ErrInvalidDate for malformed date")
	}
}

func TestReconcileTodayIsIdempotent(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)
	const today = "2025-01-01"

	med, err := svc.Create(MedicationInput{
		Name:   "Metformina",
		Dosage: "850mg",
		Times:  []string{"08:00", "12:00", "20:00"},
	}, today)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.ReconcileToday(med.ID, today); err != nil {
		t.Fatalf("first reconcile returned error: %v", err)
	}
	if err := svc.ReconcileToday(med.ID, today); err != nil {
		t.Fatalf("second reconcile returned error: %v", err)
	}

	intakes, err := svc.IntakesForDate(med.ID, today)
	if err != nil {
		t.Fatalf("IntakesForDate returned error: %v", err)
	}
	if len(intakes) != 3 {
		t.Fatalf("expected 3 intakes after repeated reconciles, got %d", len(intakes))
	}
}

func TestReconcileTodayPreservesTakenRecords(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)
	const today = "2025-01-01"

	med, err := svc.Create(MedicationInput{
		Name:   "Losartana",
		Dosage: "50mg",
		Times:  []string{"08:00", "20:00"},
	}, today)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	intakes, err := svc.IntakesForDate(med.ID, today)
	if err != nil {
		t.Fatalf("IntakesForDate returned error: %v", err)
	}

	marked, err := svc.SetTaken(intakes[0].ID, true)
	if err != nil {
		t.Fatalf("SetTaken returned error: %v", err)
	}
	if !marked.Taken || marked.TakenAt == nil {
		t.Fatal("expected intake to be marked with a timestamp")
	}

	if err := svc.ReconcileToday(med.ID, today); err != nil {
		t.Fatalf("reconcile returned error: %v", err)
	}

	after, err := svc.IntakesForDate(med.ID, today)
	if err != nil {
		t.Fatalf("IntakesForDate returned error: %v", err)
	}
	if len(after) != 2 {
		t.Fatalf("expected 2 intakes, got %d", len(after))
	}
	if !after[0].Taken {
		t.Fatal("expected the marked 08:00 intake to stay taken")
	}
	if after[1].Taken {
		t.Fatal("expected the 20:00 intake to stay unmarked")
	}
}

func TestSetTakenUnmarkClearsTimestamp(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)
	const today = "2025-01-01"

	med, err := svc.Create(MedicationInput{
		Name:   "Losartana",
		Dosage: "50mg",
		Times:  []string{"08:00"},
	}, today)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	intakes, _ := svc.IntakesForDate(med.ID, today)

	if _, err := svc.SetTaken(intakes[0].ID, true); err != nil {
		t.Fatalf("SetTaken returned error: %v", err)
	}

	unmarked, err := svc.SetTaken(intakes[0].ID, false)
	if err != nil {
		t.Fatalf("SetTaken returned error: %v", err)
	}
	if unmarked.Taken || unmarked.TakenAt != nil {
		t.Fatal("expected unmarking to clear the taken flag and timestamp")
	}

	if _, err := svc.SetTaken(9999, true); !errors.Is(err, ErrIntakeNotFound) {
		t.Fatal("expected ErrIntakeNotFound for unknown intake")
	}
}

func TestScheduleChangeRegeneratesOnlyToday(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)
	const (
		yesterday = "2024-12-31"
		today     = "2025-01-01"
	)

	med, err := svc.Create(MedicationInput{
		Name:   "Losartana",
		Dosage: "50mg",
		Times:  []string{"08:00", "20:00"},
	}, today)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// History from a previous day must survive the edit untouched.
	history := db.MedicationIntake{
		MedicationID: med.ID,
		Date:         yesterday,
		Time:         "08:00",
		Taken:        true,
	}
	if err := db.DB.Create(&history).Error; err != nil {
		t.Fatalf("failed to seed history intake: %v", err)
	}

	todayIntakes, _ := svc.IntakesForDate(med.ID, today)
	if _, err := svc.SetTaken(todayIntakes[0].ID, true); err != nil {
		t.Fatalf("SetTaken returned error: %v", err)
	}

	if _, err := svc.Update(med.ID, MedicationInput{
		Name:   "Losartana",
		Dosage: "50mg",
		Times:  []string{"09:00"},
	}, today); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	after, err := svc.IntakesForDate(med.ID, today)
	if err != nil {
		t.Fatalf("IntakesForDate returned error: %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("expected exactly 1 regenerated intake, got %d", len(after))
	}
	if after[0].Time != "09:00" || after[0].Taken {
		t.Fatalf("expected a fresh unmarked 09:00 intake, got %+v", after[0])
	}

	// A follow-up reconcile must change nothing.
	if err := svc.ReconcileToday(med.ID, today); err != nil {
		t.Fatalf("reconcile returned error: %v", err)
	}
	final, _ := svc.IntakesForDate(med.ID, today)
	if len(final) != 1 {
		t.Fatalf("expected reconcile to be a no-op, got %d intakes", len(final))
	}

	preserved, err := svc.IntakesForDate(med.ID, yesterday)
	if err != nil {
		t.Fatalf("IntakesForDate returned error: %v", err)
	}
	if len(preserved) != 1 || !preserved[0].Taken || preserved[0].Time != "08:00" {
		t.Fatalf("expected yesterday's history intact, got %+v", preserved)
	}
}

func TestDeleteCascadesToIntakes(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)
	const today = "2025-01-01"

	med, err := svc.Create(MedicationInput{
		Name:   "Losartana",
		Dosage: "50mg",
		Times:  []string{"08:00", "20:00"},
	}, today)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	other, err := svc.Create(MedicationInput{
		Name:   "Metformina",
		Dosage: "850mg",
		Times:  []string{"12:00"},
	}, today)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	history := db.MedicationIntake{MedicationID: med.ID, Date: "2024-12-31", Time: "08:00"}
	if err := db.DB.Create(&history).Error; err != nil {
		t.Fatalf("failed to seed history intake: %v", err)
	}

	if err := svc.Delete(med.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := svc.Get(med.ID); !errors.Is(err, ErrMedicationNotFound) {
		t.Fatal("expected medication to be gone")
	}

	var orphaned int64
	if err := db.DB.Model(&db.MedicationIntake{}).
		Where("medication_id = ?", med.ID).
		Count(&orphaned).Error; err != nil {
		t.Fatalf("count returned error: %v", err)
	}
	if orphaned != 0 {
		t.Fatalf("expected 0 intakes referencing the deleted medication, got %d", orphaned)
	}

	remaining, err := svc.IntakesForDate(other.ID, today)
	if err != nil {
		t.Fatalf("IntakesForDate returned error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected the other medication's intake to survive, got %d", len(remaining))
	}
}

func TestReconcileAllRollsOverToNewDay(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)

	med, err := svc.Create(MedicationInput{
		Name:   "Losartana",
		Dosage: "50mg",
		Times:  []string{"08:00"},
	}, "2025-01-01")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.ReconcileAll("2025-01-02"); err != nil {
		t.Fatalf("ReconcileAll returned error: %v", err)
	}

	day1, _ := svc.IntakesForDate(med.ID, "2025-01-01")
	day2, _ := svc.IntakesForDate(med.ID, "2025-01-02")
	if len(day1) != 1 || len(day2) != 1 {
		t.Fatalf("expected one intake per day, got %d and %d", len(day1), len(day2))
	}
}

func TestMalformedTimesPassThrough(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewMedicationService(db.DB)
	const today = "2025-01-01"

	med, err := svc.Create(MedicationInput{
		Name:   "Vitamina D",
		Dosage: "1000UI",
		Times:  []string{"8h30", "20:00"},
	}, today)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	intakes, _ := svc.IntakesForDate(med.ID, today)
	if len(intakes) != 2 {
		t.Fatalf("expected 2 intakes, got %d", len(intakes))
	}

	// Opaque tokens compare as plain strings, so reconciling stays idempotent.
	if err := svc.ReconcileToday(med.ID, today); err != nil {
		t.Fatalf("reconcile returned error: %v", err)
	}
	intakes, _ = svc.IntakesForDate(med.ID, today)
	if len(intakes) != 2 {
		t.Fatalf("expected reconcile to be a no-op for opaque times, got %d", len(intakes))
	}
}
