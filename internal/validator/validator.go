// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"fitdesk/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("attendance_type", validateAttendanceType)
		_ = v.RegisterValidation("role_name", validateRoleName)
		_ = v.RegisterValidation("membership_duration", validateMembershipDuration)
	}
}

func validateAttendanceType(fl validator.FieldLevel) bool {
	switch models.AttendanceType(fl.Field().String()) {
	case models.AttendanceTypeGym, models.AttendanceTypeClass:
		return true
	}
	return false
}

func validateRoleName(fl validator.FieldLevel) bool {
	return models.ValidRoleName(models.RoleName(fl.Field().String()))
}

// A membership template is either monthly (1) or yearly (12).
func validateMembershipDuration(fl validator.FieldLevel) bool {
	switch int(fl.Field().Int()) {
	case models.DurationMonthly, models.DurationYearly:
		return true
	}
	return false
}
