package models

// RoleName enumerates the valid role names in the system.
type RoleName string

const (
	RoleAdmin        RoleName = "admin"
	RoleClient       RoleName = "client"
	RoleReceptionist RoleName = "receptionist"
)

// ValidRoleName reports whether name is one of the fixed role names.
func ValidRoleName(name RoleName) bool {
	switch name {
	case RoleAdmin, RoleClient, RoleReceptionist:
		return true
	}
	return false
}

// Role represents a role shared by many users
type Role struct {
	Base
	Name  RoleName `gorm:"uniqueIndex;not null" json:"name"`
	Users []User   `gorm:"many2many:user_roles" json:"-"`
}
