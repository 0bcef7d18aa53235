package db

import "gorm.io/gorm"

// migrationStep is one additive schema change. Steps are applied in order
// inside a transaction together with the schema version bump, so a failed
// step leaves the database at the previous version.
type migrationStep struct {
	Version int
	Name    string
	Apply   func(tx *gorm.DB) error
}

// The step history mirrors how the store grew: contacts first, then the
// medication tracker, a data cleanup, appointments, and finally settings.
// New steps are appended; existing steps are never edited.
var migrationSteps = []migrationStep{
	{
		Version: 1,
		Name:    "create contacts",
		Apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Contact{})
		},
	},
	{
		Version: 2,
		Name:    "create medications and intakes",
		Apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Medication{}, &MedicationIntake{})
		},
	},
	{
		Version: 3,
		Name:    "backfill contact photo placeholders",
		Apply: func(tx *gorm.DB) error {
			return tx.Model(&Contact{}).
				Where("photo = '' OR photo IS NULL").
				Update("photo", DefaultContactPhoto).Error
		},
	},
	{
		Version: 4,
		Name:    "create appointments",
		Apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Appointment{})
		},
	},
	{
		Version: 5,
		Name:    "create settings",
		Apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Setting{})
		},
	},
}
