package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB is the global database handle shared by services and handlers.
var DB *gorm.DB

// SchemaVersion tracks the highest migration step applied to this database.
// A single row is kept; the ordered step list in migrations.go is applied
// exactly once per step.
type SchemaVersion struct {
	ID      uint `gorm:"primaryKey"`
	Version int
}

// Init opens the SQLite database and brings the schema up to date.
// An empty databasePath falls back to carelog.db in the working directory.
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "carelog.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite only honors declared ON DELETE constraints with this pragma on.
	if err := DB.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return err
	}

	return Migrate(DB)
}

// Migrate applies every pending migration step in order and records the
// resulting schema version.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&SchemaVersion{}); err != nil {
		return err
	}

	var current SchemaVersion
	if err := gdb.First(&current).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		current = SchemaVersion{Version: 0}
		if err := gdb.Create(&current).Error; err != nil {
			return err
		}
	}

	for _, step := range migrationSteps {
		if step.Version <= current.Version {
			continue
		}

		err := gdb.Transaction(func(tx *gorm.DB) error {
			if err := step.Apply(tx); err != nil {
				return err
			}
			return tx.Model(&SchemaVersion{}).
				Where("id = ?", current.ID).
				Update("version", step.Version).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", step.Version, step.Name, err)
		}

		current.Version = step.Version
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
