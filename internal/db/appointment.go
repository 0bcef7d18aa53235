package db

import "gorm.io/gorm"

// Appointment is a calendar entry such as a doctor visit. Date is
// "YYYY-MM-DD"; Time is an optional "HH:mm" and stays empty when the user
// did not pick one (listing code orders empty times as "00:00" without
// storing that default).
type Appointment struct {
	gorm.Model
	Title    string `gorm:"size:200;not null"`
	Date     string `gorm:"size:10;not null;index"`
	Time     string `gorm:"size:20"`
	Location string `gorm:"size:200"`
	Notes    string `gorm:"size:500"`
	Done     bool   `gorm:"default:false"`
}
