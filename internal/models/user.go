package models

import (
	"strings"

	"gorm.io/gorm"
)

// User represents a gym member or staff account
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	FullName string `gorm:"not null" json:"full_name"`
	Age      int    `gorm:"not null" json:"age"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Roles         []Role         `gorm:"many2many:user_roles" json:"roles,omitempty"`
	Subscriptions []Subscription `gorm:"foreignKey:UserID" json:"subscriptions,omitempty"`
	Attendances   []Attendance   `gorm:"foreignKey:UserID" json:"attendances,omitempty"`
}

// BeforeSave hook normalizes the email on every write.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// HasRole reports whether the user holds any of the given roles.
// Roles must be loaded before calling.
func (u *User) HasRole(names ...RoleName) bool {
	for _, role := range u.Roles {
		for _, name := range names {
			if role.Name == name {
				return true
			}
		}
	}
	return false
}
