package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/pagination"
	"fitdesk/internal/services"
)

// MembershipHandler handles membership template requests
type MembershipHandler struct {
	membershipService services.MembershipServicer
	userService       services.UserServicer
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(membershipService services.MembershipServicer, userService services.UserServicer) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService, userService: userService}
}

// CreateMembershipRequest represents the membership creation payload.
// Cost is in cents.
type CreateMembershipRequest struct {
	Name           string `json:"name" binding:"required,max=255"`
	Cost           int64  `json:"cost" binding:"min=0"`
	MaxGymVisits   int    `json:"max_gym_visits" binding:"min=0"`
	MaxClassVisits int    `json:"max_class_visits" binding:"min=0"`
	DurationMonths int    `json:"duration_months" binding:"required,membership_duration"`
	Status         *bool  `json:"status"`
}

// UpdateMembershipRequest represents the membership update payload. All
// fields optional.
type UpdateMembershipRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=255"`
	Cost           *int64  `json:"cost" binding:"omitempty,min=0"`
	MaxGymVisits   *int    `json:"max_gym_visits" binding:"omitempty,min=0"`
	MaxClassVisits *int    `json:"max_class_visits" binding:"omitempty,min=0"`
	DurationMonths *int    `json:"duration_months" binding:"omitempty,membership_duration"`
	Status         *bool   `json:"status"`
}

// ListMemberships returns a paginated list of membership templates
// @Summary     List memberships
// @Tags        memberships
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Membership]
// @Router      /memberships [get]
func (h *MembershipHandler) ListMemberships(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.membershipService.ListMemberships(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMembership returns a single membership template
// @Summary     Get membership
// @Tags        memberships
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Membership ID"
// @Success     200 {object} models.Membership
// @Failure     404 {object} ErrorResponse "Membership not found"
// @Router      /memberships/{id} [get]
func (h *MembershipHandler) GetMembership(c *gin.Context) {
	membership, err := h.membershipService.GetMembershipByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"membership": membership})
}

// CreateMembership creates a membership template (admin only)
// @Summary     Create membership
// @Tags        memberships
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateMembershipRequest true "Membership data"
// @Success     201 {object} models.Membership
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /memberships [post]
func (h *MembershipHandler) CreateMembership(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	membership, err := h.membershipService.CreateMembership(actor, req.Name, req.Cost,
		req.MaxGymVisits, req.MaxClassVisits, req.DurationMonths, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"membership": membership})
}

// UpdateMembership updates a membership template (admin only)
// @Summary     Update membership
// @Tags        memberships
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Membership ID"
// @Param       request body UpdateMembershipRequest true "Fields to update"
// @Success     200 {object} models.Membership
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Membership not found"
// @Router      /memberships/{id} [put]
func (h *MembershipHandler) UpdateMembership(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	membership, err := h.membershipService.UpdateMembership(actor, c.Param("id"), services.MembershipUpdateFields{
		Name:           req.Name,
		Cost:           req.Cost,
		MaxGymVisits:   req.MaxGymVisits,
		MaxClassVisits: req.MaxClassVisits,
		DurationMonths: req.DurationMonths,
		Status:         req.Status,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"membership": membership})
}

// ToggleMembershipStatus flips a template's active flag (admin only)
// @Summary     Toggle membership status
// @Tags        memberships
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Membership ID"
// @Success     200 {object} models.Membership
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Membership not found"
// @Router      /memberships/{id}/status [patch]
func (h *MembershipHandler) ToggleMembershipStatus(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	membership, err := h.membershipService.ToggleMembershipStatus(actor, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"membership": membership})
}

// RemoveMembership deletes a membership template (admin only)
// @Summary     Remove membership
// @Tags        memberships
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Membership ID"
// @Success     200 {object} map[string]bool
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Membership not found"
// @Router      /memberships/{id} [delete]
func (h *MembershipHandler) RemoveMembership(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.membershipService.RemoveMembership(actor, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
