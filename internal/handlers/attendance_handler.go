package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
	"fitdesk/internal/services"
)

// AttendanceHandler handles gym check-in and check-out requests
type AttendanceHandler struct {
	attendanceService services.AttendanceServicer
	userService       services.UserServicer
}

// NewAttendanceHandler creates a new AttendanceHandler
func NewAttendanceHandler(attendanceService services.AttendanceServicer, userService services.UserServicer) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService, userService: userService}
}

// CreateAttendanceRequest represents the check-in payload. EntranceAt and
// DateKey default to the current time when omitted.
type CreateAttendanceRequest struct {
	UserID     string     `json:"user_id" binding:"required,uuid"`
	Type       string     `json:"type" binding:"required,attendance_type"`
	EntranceAt *time.Time `json:"entrance_at"`
	DateKey    string     `json:"date_key" binding:"omitempty,max=50"`
}

// CheckIn records a visit start
// @Summary     Check in a user
// @Tags        attendances
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAttendanceRequest true "Check-in data"
// @Success     201 {object} models.Attendance
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     409 {object} ErrorResponse "Already checked in"
// @Router      /attendances/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var entranceAt time.Time
	if req.EntranceAt != nil {
		entranceAt = *req.EntranceAt
	}

	attendance, err := h.attendanceService.CheckIn(actor, req.UserID,
		models.AttendanceType(req.Type), entranceAt, req.DateKey)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"attendance": attendance})
}

// CheckOut records a visit end
// @Summary     Check out a user
// @Tags        attendances
// @Produce     json
// @Security    BearerAuth
// @Param       userId path string true "User ID"
// @Success     200 {object} models.Attendance
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "No open attendance"
// @Router      /attendances/check-out/{userId} [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	attendance, err := h.attendanceService.CheckOut(actor, c.Param("userId"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attendance": attendance})
}

// Status reports whether a user is inside and their remaining allowance
// @Summary     Get attendance status
// @Tags        attendances
// @Produce     json
// @Security    BearerAuth
// @Param       userId path string true "User ID"
// @Success     200 {object} services.AttendanceStatus
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /attendances/status/{userId} [get]
func (h *AttendanceHandler) Status(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.attendanceService.Status(actor, c.Param("userId"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
