package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fitdesk/internal/access"
	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
)

// attendanceService tracks gym and class visits. The state machine is
// strict: a user holds at most one open attendance, check-out closes it by
// stamping the exit time. Users act on themselves; admins and receptionists
// may act on anyone.
type attendanceService struct {
	db *gorm.DB
}

// NewAttendanceService creates a new AttendanceServicer.
func NewAttendanceService(db *gorm.DB) AttendanceServicer {
	return &attendanceService{db: db}
}

func (s *attendanceService) getUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// CheckIn opens a new attendance. Conflict if the user is already inside.
// Having a subscription is not required to enter; allowance is reported by
// Status, not enforced here.
func (s *attendanceService) CheckIn(actor *models.User, userID string, attendanceType models.AttendanceType, entranceAt time.Time, dateKey string) (*models.Attendance, error) {
	if err := access.RequireOwnerOrRoles(actor, userID,
		"check in yourself", access.ElevatedFrontDesk...); err != nil {
		return nil, err
	}

	if _, err := s.getUser(userID); err != nil {
		return nil, err
	}

	if entranceAt.IsZero() {
		entranceAt = time.Now()
	}
	if dateKey == "" {
		dateKey = entranceAt.Format("2006-01-02")
	}

	attendance := &models.Attendance{
		UserID:     userID,
		Type:       attendanceType,
		EntranceAt: entranceAt,
		IsActive:   true,
		DateKey:    dateKey,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.Attendance{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Count(&open).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if open > 0 {
			return apperrors.WithMessage(apperrors.ErrAlreadyCheckedIn,
				"User is already checked in and must check out first")
		}
		if err := tx.Create(attendance).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Wrap(apperrors.ErrAlreadyCheckedIn, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return attendance, nil
}

// CheckOut closes the user's open attendance, stamping the exit time.
func (s *attendanceService) CheckOut(actor *models.User, userID string) (*models.Attendance, error) {
	if err := access.RequireOwnerOrRoles(actor, userID,
		"check out yourself", access.ElevatedFrontDesk...); err != nil {
		return nil, err
	}

	var attendance models.Attendance
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&attendance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoOpenAttendance
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"exit_at":   now,
		"is_active": false,
	}
	if err := s.db.Model(&attendance).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	attendance.ExitAt = &now
	attendance.IsActive = false
	return &attendance, nil
}

// Status reports whether the user is inside and how many visits remain.
// Availability is the active subscription's allowances minus the closed
// visits recorded since its purchase date, floored at zero; without an
// active subscription both counters are zero.
func (s *attendanceService) Status(actor *models.User, userID string) (*AttendanceStatus, error) {
	if err := access.RequireOwnerOrRoles(actor, userID,
		"check your own attendance status", access.ElevatedFrontDesk...); err != nil {
		return nil, err
	}

	if _, err := s.getUser(userID); err != nil {
		return nil, err
	}

	status := &AttendanceStatus{}

	var current models.Attendance
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&current).Error
	switch {
	case err == nil:
		status.IsInside = true
		status.CurrentAttendance = &current
	case errors.Is(err, gorm.ErrRecordNotFound):
		// not inside
	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subscription models.Subscription
	err = s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	gymUsed, err := s.countClosedVisits(userID, models.AttendanceTypeGym, subscription.PurchaseDate)
	if err != nil {
		return nil, err
	}
	classUsed, err := s.countClosedVisits(userID, models.AttendanceTypeClass, subscription.PurchaseDate)
	if err != nil {
		return nil, err
	}

	status.AvailableAttendances.Gym = remaining(subscription.MaxGymVisits, gymUsed)
	status.AvailableAttendances.Classes = remaining(subscription.MaxClassVisits, classUsed)
	return status, nil
}

func (s *attendanceService) countClosedVisits(userID string, attendanceType models.AttendanceType, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.Attendance{}).
		Where("user_id = ? AND type = ? AND is_active = ? AND entrance_at >= ?",
			userID, attendanceType, false, since).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

func remaining(max int, used int64) int {
	left := max - int(used)
	if left < 0 {
		return 0
	}
	return left
}
