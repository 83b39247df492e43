package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fitdesk/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a client user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRoles(t, db, models.RoleClient)
}

// CreateTestAdmin creates a user holding the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRoles(t, db, models.RoleAdmin)
}

// CreateTestReceptionist creates a user holding the receptionist role.
func CreateTestReceptionist(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRoles(t, db, models.RoleReceptionist)
}

// CreateTestUserWithRoles creates a user with the given seeded roles attached.
func CreateTestUserWithRoles(t *testing.T, db *gorm.DB, roleNames ...models.RoleName) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		FullName: fmt.Sprintf("Test User %d", n),
		Age:      30,
		IsActive: true,
	}
	for _, name := range roleNames {
		var role models.Role
		if err := db.Where("name = ?", name).First(&role).Error; err != nil {
			t.Fatalf("failed to load seeded role %s: %v", name, err)
		}
		user.Roles = append(user.Roles, role)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestMembership creates a membership template with the given cost (in
// cents), allowances, and duration.
func CreateTestMembership(t *testing.T, db *gorm.DB, cost int64, maxGym, maxClass, durationMonths int) *models.Membership {
	t.Helper()

	membership := &models.Membership{
		Name:           fmt.Sprintf("Test Plan %d", nextID()),
		Cost:           cost,
		MaxGymVisits:   maxGym,
		MaxClassVisits: maxClass,
		DurationMonths: durationMonths,
		Status:         true,
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}
	return membership
}

// CreateTestSubscription creates an empty subscription for the user.
// active controls the is_active flag.
func CreateTestSubscription(t *testing.T, db *gorm.DB, userID string, active bool) *models.Subscription {
	t.Helper()

	subscription := &models.Subscription{
		Name:         fmt.Sprintf("Test Subscription %d", nextID()),
		PurchaseDate: time.Now().Add(-time.Hour),
		IsActive:     active,
		UserID:       userID,
	}
	if err := db.Create(subscription).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	// GORM ignores false for default:true on create
	if !active {
		if err := db.Model(subscription).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate test subscription: %v", err)
		}
	}
	return subscription
}

// CreateTestAttendance creates an attendance row. open controls whether the
// visit is still open (checked in) or already closed with an exit time.
func CreateTestAttendance(t *testing.T, db *gorm.DB, userID string, attendanceType models.AttendanceType, open bool) *models.Attendance {
	t.Helper()

	entrance := time.Now().Add(-30 * time.Minute)
	attendance := &models.Attendance{
		UserID:     userID,
		Type:       attendanceType,
		EntranceAt: entrance,
		IsActive:   true,
		DateKey:    entrance.Format("2006-01-02"),
	}
	if err := db.Create(attendance).Error; err != nil {
		t.Fatalf("failed to create test attendance: %v", err)
	}
	if !open {
		exit := entrance.Add(time.Hour)
		if err := db.Model(attendance).Updates(map[string]interface{}{"is_active": false, "exit_at": exit}).Error; err != nil {
			t.Fatalf("failed to close test attendance: %v", err)
		}
		attendance.IsActive = false
		attendance.ExitAt = &exit
	}
	return attendance
}
