package db

import "gorm.io/gorm"

// DefaultContactPhoto is the placeholder glyph used when no photo or emoji
// was chosen for a contact.
const DefaultContactPhoto = "👤"

// Contact is a family member or caregiver the user can call with one tap.
// Photo holds either an emoji or the URL of an uploaded picture. IsAdmin is
// a display-only flag: it marks contacts allowed to manage the app on the
// admin screen but grants nothing in this backend.
type Contact struct {
	gorm.Model
	Name     string `gorm:"size:120;not null"`
	Relation string `gorm:"size:80;not null"`
	Photo    string `gorm:"size:255"`
	Phone    string `gorm:"size:40;not null"`
	IsAdmin  bool   `gorm:"default:false"`
}
