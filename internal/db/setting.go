package db

import "gorm.io/gorm"

// Setting stores app-level key/value preferences.
type Setting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName keeps the short table name.
func (Setting) TableName() string {
	return "settings"
}

const (
	// SettingKeyDisplayName is the name the home screen greets the user with.
	SettingKeyDisplayName = "display_name"
	// SettingKeyDefaultFontScale is the font scale applied before a browser
	// session has chosen its own.
	SettingKeyDefaultFontScale = "default_font_scale"
)
