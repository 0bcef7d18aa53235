package service

import (
	"fmt"
	"strings"

	"github.com/carelog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Font scale steps the accessibility toggle cycles through.
const (
	FontScaleNormal     = "normal"
	FontScaleLarge      = "large"
	FontScaleExtraLarge = "extra-large"
)

// UserSettings bundles the app-level preferences shown on the home screen.
type UserSettings struct {
	DisplayName      string
	DefaultFontScale string
}

// UserSettingsInput is used to update the stored preferences.
type UserSettingsInput struct {
	DisplayName      string
	DefaultFontScale string
}

// SettingService reads and writes the key/value preference rows.
type SettingService struct {
	db *gorm.DB
}

// NewSettingService constructs a SettingService.
func NewSettingService(gdb *gorm.DB) *SettingService {
	return &SettingService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeyDisplayName,
	db.SettingKeyDefaultFontScale,
}

// NormalizeFontScale maps any input to one of the supported scale steps,
// falling back to normal.
func NormalizeFontScale(scale string) string {
	switch strings.TrimSpace(strings.ToLower(scale)) {
	case FontScaleLarge:
		return FontScaleLarge
	case FontScaleExtraLarge:
		return FontScaleExtraLarge
	default:
		return FontScaleNormal
	}
}

// NextFontScale returns the step after the given one in the accessibility
// cycle normal -> large -> extra-large -> normal.
func NextFontScale(scale string) string {
	switch NormalizeFontScale(scale) {
	case FontScaleNormal:
		return FontScaleLarge
	case FontScaleLarge:
		return FontScaleExtraLarge
	default:
		return FontScaleNormal
	}
}

// GetSettings reads the stored preferences, applying defaults for anything
// not yet set.
func (s *SettingService) GetSettings() (UserSettings, error) {
	result := UserSettings{DefaultFontScale: FontScaleNormal}

	var records []db.Setting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeyDisplayName:
			result.DisplayName = record.Value
		case db.SettingKeyDefaultFontScale:
			result.DefaultFontScale = NormalizeFontScale(record.Value)
		}
	}

	return result, nil
}

// UpdateSettings upserts the preference rows in one transaction.
func (s *SettingService) UpdateSettings(input UserSettingsInput) (UserSettings, error) {
	sanitized := UserSettings{
		DisplayName:      strings.TrimSpace(input.DisplayName),
		DefaultFontScale: NormalizeFontScale(input.DefaultFontScale),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyDisplayName, sanitized.DisplayName); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeyDefaultFontScale, sanitized.DefaultFontScale)
	})
	if err != nil {
		return UserSettings{}, fmt.Errorf("update settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.Setting{Key: key, Value: value}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&setting).Error
}
