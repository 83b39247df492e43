package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitdesk/internal/access"
	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/pagination"
	"fitdesk/internal/services"
)

// SubscriptionHandler handles subscription lifecycle requests
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionServicer
	userService         services.UserServicer
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService services.SubscriptionServicer, userService services.UserServicer) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, userService: userService}
}

// UpdateSubscriptionRequest represents the subscription update payload.
// All fields optional; membership_ids, when present, replaces the attached
// template set all-or-nothing.
type UpdateSubscriptionRequest struct {
	Name           *string    `json:"name" binding:"omitempty,max=255"`
	Cost           *int64     `json:"cost" binding:"omitempty,min=0"`
	MaxGymVisits   *int       `json:"max_gym_visits" binding:"omitempty,min=0"`
	MaxClassVisits *int       `json:"max_class_visits" binding:"omitempty,min=0"`
	DurationMonths *int       `json:"duration_months" binding:"omitempty,min=1"`
	PurchaseDate   *time.Time `json:"purchase_date"`
	IsActive       *bool      `json:"is_active"`
	MembershipIDs  []string   `json:"membership_ids" binding:"omitempty,dive,uuid"`
}

// AddMembershipRequest represents the payload attaching a template to a
// subscription
type AddMembershipRequest struct {
	MembershipID string `json:"membership_id" binding:"required,uuid"`
}

// ListSubscriptions returns a paginated list of subscriptions
// @Summary     List subscriptions
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Subscription]
// @Router      /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.subscriptionService.ListSubscriptions(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSubscription returns a subscription (owner, admin, or receptionist)
// @Summary     Get subscription
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Success     200 {object} models.Subscription
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscription, err := h.subscriptionService.GetSubscriptionByID(c.Param("id"), actor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// GetSubscriptionByUser returns a user's subscription
// @Summary     Get subscription by user
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       userId path string true "User ID"
// @Success     200 {object} models.Subscription
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User or subscription not found"
// @Router      /subscriptions/user/{userId} [get]
func (h *SubscriptionHandler) GetSubscriptionByUser(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscription, err := h.subscriptionService.GetSubscriptionByUserID(c.Param("userId"), actor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// CreateSubscriptionForUser creates an empty subscription for a user
// @Summary     Create subscription for user
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       userId path string true "User ID"
// @Success     201 {object} models.Subscription
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     409 {object} ErrorResponse "Active subscription exists"
// @Router      /subscriptions/user/{userId} [post]
func (h *SubscriptionHandler) CreateSubscriptionForUser(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	userID := c.Param("userId")
	if err := access.RequireOwnerOrRoles(actor, userID,
		"create your own subscriptions", access.ElevatedFrontDesk...); err != nil {
		respondWithError(c, err)
		return
	}

	subscription, err := h.subscriptionService.CreateSubscriptionForUser(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscription": subscription})
}

// UpdateSubscription updates a subscription (owner, admin, or receptionist)
// @Summary     Update subscription
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Param       request body UpdateSubscriptionRequest true "Fields to update"
// @Success     200 {object} models.Subscription
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Subscription or memberships not found"
// @Router      /subscriptions/{id} [put]
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subscription, err := h.subscriptionService.UpdateSubscription(actor, c.Param("id"), services.SubscriptionUpdateFields{
		Name:           req.Name,
		Cost:           req.Cost,
		MaxGymVisits:   req.MaxGymVisits,
		MaxClassVisits: req.MaxClassVisits,
		DurationMonths: req.DurationMonths,
		PurchaseDate:   req.PurchaseDate,
		IsActive:       req.IsActive,
		MembershipIDs:  req.MembershipIDs,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// ActivateSubscription sets a subscription active
// @Summary     Activate subscription
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Success     200 {object} models.Subscription
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Active subscription exists"
// @Router      /subscriptions/{id}/activate [post]
func (h *SubscriptionHandler) ActivateSubscription(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscription, err := h.subscriptionService.ActivateSubscription(actor, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// DeactivateSubscription sets a subscription inactive
// @Summary     Deactivate subscription
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Success     200 {object} models.Subscription
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id}/deactivate [post]
func (h *SubscriptionHandler) DeactivateSubscription(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscription, err := h.subscriptionService.DeactivateSubscription(actor, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// RemoveSubscription soft-deletes a subscription
// @Summary     Remove subscription
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Success     200 {object} map[string]bool
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id} [delete]
func (h *SubscriptionHandler) RemoveSubscription(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.subscriptionService.RemoveSubscription(actor, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// AddMembershipToSubscription attaches a membership template
// @Summary     Add membership to subscription
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Param       request body AddMembershipRequest true "Membership to attach"
// @Success     200 {object} models.Subscription
// @Failure     404 {object} ErrorResponse "Subscription or membership not found"
// @Failure     409 {object} ErrorResponse "Membership already attached"
// @Router      /subscriptions/{id}/memberships [post]
func (h *SubscriptionHandler) AddMembershipToSubscription(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	// Permission rides on reading the subscription first.
	if _, err := h.subscriptionService.GetSubscriptionByID(c.Param("id"), actor); err != nil {
		respondWithError(c, err)
		return
	}

	subscription, err := h.subscriptionService.AddMembershipToSubscription(c.Param("id"), req.MembershipID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}
