package models

// Membership durations in months. A template is either monthly or yearly.
const (
	DurationMonthly = 1
	DurationYearly  = 12
)

// Membership represents a reusable plan template that can be attached to
// subscriptions. Amounts are in cents.
type Membership struct {
	Base
	Name           string `gorm:"uniqueIndex;not null" json:"name"`
	Cost           int64  `gorm:"not null;default:0" json:"cost"`
	MaxGymVisits   int    `gorm:"not null" json:"max_gym_visits"`
	MaxClassVisits int    `gorm:"not null" json:"max_class_visits"`
	DurationMonths int    `gorm:"not null" json:"duration_months"`
	Status         bool   `gorm:"default:true" json:"status"`

	Subscriptions []Subscription `gorm:"many2many:subscription_memberships" json:"-"`
}
