package services

import (
	"time"

	"gorm.io/gorm"

	"fitdesk/internal/models"
	"fitdesk/internal/pagination"
)

// UserUpdateFields holds the optional fields of a user update. Nil fields
// are left untouched.
type UserUpdateFields struct {
	Email    *string
	FullName *string
	Age      *int
	Password *string
	IsActive *bool
}

// UserServicer defines the contract for user and role administration.
type UserServicer interface {
	Signup(email, password, fullName string, age int) (*models.User, error)
	Login(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateUser(actor *models.User, userID string, fields UserUpdateFields) (*models.User, error)
	RemoveUser(actor *models.User, userID string) error
	AddRole(actor *models.User, userID string, role models.RoleName) (*models.User, error)
	RemoveRole(actor *models.User, userID string, role models.RoleName) (*models.User, error)
}

// MembershipUpdateFields holds the optional fields of a membership template
// update. Nil fields are left untouched.
type MembershipUpdateFields struct {
	Name           *string
	Cost           *int64
	MaxGymVisits   *int
	MaxClassVisits *int
	DurationMonths *int
	Status         *bool
}

// MembershipServicer defines the contract for membership template management.
type MembershipServicer interface {
	CreateMembership(actor *models.User, name string, cost int64, maxGymVisits, maxClassVisits, durationMonths int, status *bool) (*models.Membership, error)
	ListMemberships(page pagination.PageRequest) (*pagination.PageResponse[models.Membership], error)
	GetMembershipByID(id string) (*models.Membership, error)
	UpdateMembership(actor *models.User, id string, fields MembershipUpdateFields) (*models.Membership, error)
	ToggleMembershipStatus(actor *models.User, id string) (*models.Membership, error)
	RemoveMembership(actor *models.User, id string) error
}

// SubscriptionUpdateFields holds the optional fields of a subscription
// update. Nil fields are left untouched. MembershipIDs, when set, replaces
// the attached template set and must resolve completely.
type SubscriptionUpdateFields struct {
	Name           *string
	Cost           *int64
	MaxGymVisits   *int
	MaxClassVisits *int
	DurationMonths *int
	PurchaseDate   *time.Time
	IsActive       *bool
	MembershipIDs  []string
}

// SubscriptionServicer defines the contract for subscription lifecycle
// management. ProvisionEmptySubscription runs inside the caller's
// transaction so user signup and subscription creation commit atomically.
type SubscriptionServicer interface {
	CreateSubscriptionForUser(userID string) (*models.Subscription, error)
	ProvisionEmptySubscription(tx *gorm.DB, user *models.User) (*models.Subscription, error)
	AddMembershipToSubscription(subscriptionID, membershipID string) (*models.Subscription, error)
	ListSubscriptions(page pagination.PageRequest) (*pagination.PageResponse[models.Subscription], error)
	GetSubscriptionByID(id string, actor *models.User) (*models.Subscription, error)
	GetSubscriptionByUserID(userID string, actor *models.User) (*models.Subscription, error)
	UpdateSubscription(actor *models.User, id string, fields SubscriptionUpdateFields) (*models.Subscription, error)
	ActivateSubscription(actor *models.User, id string) (*models.Subscription, error)
	DeactivateSubscription(actor *models.User, id string) (*models.Subscription, error)
	RemoveSubscription(actor *models.User, id string) error
}

// AvailableAttendances reports how many gym and class visits remain on the
// user's active subscription.
type AvailableAttendances struct {
	Gym     int `json:"gym"`
	Classes int `json:"classes"`
}

// AttendanceStatus describes whether a user is currently checked in and what
// allowance remains.
type AttendanceStatus struct {
	IsInside             bool                 `json:"is_inside"`
	CurrentAttendance    *models.Attendance   `json:"current_attendance,omitempty"`
	AvailableAttendances AvailableAttendances `json:"available_attendances"`
}

// AttendanceServicer defines the contract for attendance tracking.
type AttendanceServicer interface {
	CheckIn(actor *models.User, userID string, attendanceType models.AttendanceType, entranceAt time.Time, dateKey string) (*models.Attendance, error)
	CheckOut(actor *models.User, userID string) (*models.Attendance, error)
	Status(actor *models.User, userID string) (*AttendanceStatus, error)
}
