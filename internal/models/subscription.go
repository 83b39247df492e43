package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription represents a user's purchased bundle of membership templates.
// Cost and visit allowances are running sums over the attached templates,
// duration is the running max, so later template edits do not retroactively
// change existing subscriptions. Amounts are in cents.
type Subscription struct {
	Base
	Name           string         `gorm:"not null" json:"name"`
	Cost           int64          `gorm:"not null;default:0" json:"cost"`
	MaxGymVisits   int            `gorm:"not null;default:0" json:"max_gym_visits"`
	MaxClassVisits int            `gorm:"not null;default:0" json:"max_class_visits"`
	DurationMonths int            `gorm:"not null;default:0" json:"duration_months"`
	PurchaseDate   time.Time      `gorm:"not null" json:"purchase_date"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID      string       `gorm:"type:uuid;not null" json:"user_id"`
	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Memberships []Membership `gorm:"many2many:subscription_memberships" json:"memberships,omitempty"`
}
