package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
	"fitdesk/internal/pagination"
	"fitdesk/internal/services"
)

// UserHandler handles user administration requests
type UserHandler struct {
	userService services.UserServicer
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserServicer) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateUserRequest represents the user update payload. All fields optional.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	FullName *string `json:"full_name" binding:"omitempty,max=255"`
	Age      *int    `json:"age" binding:"omitempty,min=1,max=120"`
	Password *string `json:"password" binding:"omitempty,min=6,max=50"`
	IsActive *bool   `json:"is_active"`
}

// ManageRoleRequest represents the add-role payload
type ManageRoleRequest struct {
	Role string `json:"role" binding:"required,role_name"`
}

// ListUsers returns a paginated list of users
// @Summary     List users
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.User]
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.userService.ListUsers(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUser returns a single user by ID
// @Summary     Get user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} models.User
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser updates a user's profile (self or admin)
// @Summary     Update user
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Param       request body UpdateUserRequest true "Fields to update"
// @Success     200 {object} models.User
// @Failure     400 {object} ErrorResponse "Invalid input or email taken"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateUser(actor, c.Param("id"), services.UserUpdateFields{
		Email:    req.Email,
		FullName: req.FullName,
		Age:      req.Age,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RemoveUser deletes a user (admin only)
// @Summary     Remove user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} map[string]string
// @Failure     400 {object} ErrorResponse "Last admin"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [delete]
func (h *UserHandler) RemoveUser(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.userService.RemoveUser(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User with ID " + id + " deleted successfully"})
}

// AddRole grants a role to a user (admin only)
// @Summary     Add role to user
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Param       request body ManageRoleRequest true "Role to add"
// @Success     200 {object} models.User
// @Failure     400 {object} ErrorResponse "Role already assigned"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User or role not found"
// @Router      /users/{id}/roles [post]
func (h *UserHandler) AddRole(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ManageRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AddRole(actor, c.Param("id"), models.RoleName(req.Role))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RemoveRole revokes a role from a user (admin only)
// @Summary     Remove role from user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Param       role path string true "Role name"
// @Success     200 {object} models.User
// @Failure     400 {object} ErrorResponse "Last role or last admin"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User or role not found"
// @Router      /users/{id}/roles/{role} [delete]
func (h *UserHandler) RemoveRole(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roleName := models.RoleName(c.Param("role"))
	if !models.ValidRoleName(roleName) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid role name"))
		return
	}

	user, err := h.userService.RemoveRole(actor, c.Param("id"), roleName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
