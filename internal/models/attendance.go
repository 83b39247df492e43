package models

import "time"

// AttendanceType represents the kind of visit
type AttendanceType string

const (
	AttendanceTypeGym   AttendanceType = "gym"
	AttendanceTypeClass AttendanceType = "class"
)

// Attendance represents one gym or class visit. A row with IsActive=true is
// an open visit (checked in, not yet checked out).
type Attendance struct {
	Base
	UserID     string         `gorm:"type:uuid;not null" json:"user_id"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type       AttendanceType `gorm:"not null" json:"type"`
	EntranceAt time.Time      `gorm:"not null" json:"entrance_at"`
	ExitAt     *time.Time     `json:"exit_at,omitempty"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	DateKey    string         `gorm:"size:50;not null" json:"date_key"`
}
