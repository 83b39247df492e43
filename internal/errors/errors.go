// Package errors provides custom error types for the FitDesk API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrRolesNotLoaded     = &AppError{Code: "ROLES_NOT_LOADED", Message: "User roles were not loaded before evaluation", StatusCode: http.StatusBadRequest}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Unexpected error, check server logs", StatusCode: http.StatusInternalServerError}
)

// User and role errors.
var (
	ErrUserNotFound        = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail      = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrEmailTaken          = &AppError{Code: "EMAIL_TAKEN", Message: "Email already in use", StatusCode: http.StatusBadRequest}
	ErrRoleNotFound        = &AppError{Code: "ROLE_NOT_FOUND", Message: "Role not found", StatusCode: http.StatusNotFound}
	ErrDefaultRoleMissing  = &AppError{Code: "DEFAULT_ROLE_MISSING", Message: "Default role \"client\" not found", StatusCode: http.StatusInternalServerError}
	ErrRoleAlreadyAssigned = &AppError{Code: "ROLE_ALREADY_ASSIGNED", Message: "User already has this role", StatusCode: http.StatusBadRequest}
	ErrRoleNotAssigned     = &AppError{Code: "ROLE_NOT_ASSIGNED", Message: "User does not have this role", StatusCode: http.StatusBadRequest}
	ErrLastRole            = &AppError{Code: "LAST_ROLE", Message: "Cannot remove the last role from a user. Users must have at least one role", StatusCode: http.StatusBadRequest}
	ErrLastAdmin           = &AppError{Code: "LAST_ADMIN", Message: "Cannot remove the last admin user", StatusCode: http.StatusBadRequest}
)

// Membership errors.
var (
	ErrMembershipNotFound      = &AppError{Code: "MEMBERSHIP_NOT_FOUND", Message: "Membership not found", StatusCode: http.StatusNotFound}
	ErrDuplicateMembershipName = &AppError{Code: "DUPLICATE_MEMBERSHIP_NAME", Message: "A membership with this name already exists", StatusCode: http.StatusConflict}
)

// Subscription errors.
var (
	ErrSubscriptionNotFound      = &AppError{Code: "SUBSCRIPTION_NOT_FOUND", Message: "Subscription not found", StatusCode: http.StatusNotFound}
	ErrActiveSubscriptionExists  = &AppError{Code: "ACTIVE_SUBSCRIPTION_EXISTS", Message: "User already has an active subscription", StatusCode: http.StatusConflict}
	ErrMembershipAlreadyAttached = &AppError{Code: "MEMBERSHIP_ALREADY_ATTACHED", Message: "Membership is already attached to this subscription", StatusCode: http.StatusConflict}
	ErrMembershipsNotAllResolved = &AppError{Code: "MEMBERSHIPS_NOT_FOUND", Message: "One or more memberships not found", StatusCode: http.StatusNotFound}
)

// Attendance errors.
var (
	ErrAlreadyCheckedIn = &AppError{Code: "ALREADY_CHECKED_IN", Message: "User already has an open attendance", StatusCode: http.StatusConflict}
	ErrNoOpenAttendance = &AppError{Code: "NO_OPEN_ATTENDANCE", Message: "User has no open attendance to check out from", StatusCode: http.StatusNotFound}
)
