package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fitdesk/internal/access"
	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
	"fitdesk/internal/pagination"
)

// userService handles user and role administration.
type userService struct {
	db            *gorm.DB
	subscriptions SubscriptionServicer
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, subscriptions SubscriptionServicer) UserServicer {
	return &userService{db: db, subscriptions: subscriptions}
}

// Signup registers a new user with the default client role and an empty
// subscription, atomically. If provisioning the subscription fails the user
// row is rolled back too.
func (s *userService) Signup(email, password, fullName string, age int) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var defaultRole models.Role
	if err := s.db.Where("name = ?", models.RoleClient).First(&defaultRole).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDefaultRoleMissing
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hashedPassword),
		FullName: fullName,
		Age:      age,
		IsActive: true,
		Roles:    []models.Role{defaultRole},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Wrap(apperrors.ErrDuplicateEmail, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if _, err := s.subscriptions.ProvisionEmptySubscription(tx, user); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(user.ID)
}

// Login verifies credentials and returns the user with roles loaded.
// Unknown email, deactivated account, and wrong password are
// indistinguishable to the caller.
func (s *userService) Login(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID retrieves a user by ID with roles loaded.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email with roles loaded.
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Roles").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// ListUsers retrieves a paginated list of users with roles loaded.
func (s *userService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.User{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var users []models.User
	if err := s.db.Preload("Roles").Scopes(pagination.Paginate(page)).Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(users, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateUser applies the defined fields to a user. Users may update their
// own profile; admins may update anyone.
func (s *userService) UpdateUser(actor *models.User, userID string, fields UserUpdateFields) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnerOrRoles(actor, user.ID, "update your own profile", models.RoleAdmin); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if fields.Email != nil {
		newEmail := strings.ToLower(strings.TrimSpace(*fields.Email))
		if newEmail != user.Email {
			var count int64
			s.db.Model(&models.User{}).Where("email = ? AND id <> ?", newEmail, user.ID).Count(&count)
			if count > 0 {
				return nil, apperrors.ErrEmailTaken
			}
			updates["email"] = newEmail
		}
	}
	if fields.FullName != nil {
		updates["full_name"] = *fields.FullName
	}
	if fields.Age != nil {
		updates["age"] = *fields.Age
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}
	if fields.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*fields.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["password"] = string(hashed)
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.Wrap(apperrors.ErrEmailTaken, err)
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetUserByID(userID)
}

// RemoveUser deletes a user. Admin only. The last admin cannot be removed,
// and role associations are detached first to keep the join table clean.
func (s *userService) RemoveUser(actor *models.User, userID string) error {
	if err := access.RequireRoles(actor, models.RoleAdmin); err != nil {
		return err
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.HasRole(models.RoleAdmin) {
		count, err := s.countUsersWithRole(models.RoleAdmin)
		if err != nil {
			return err
		}
		if count <= 1 {
			return apperrors.WithMessage(apperrors.ErrLastAdmin, "Cannot delete the last admin user")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// AddRole grants a role to a user. Admin only.
func (s *userService) AddRole(actor *models.User, userID string, roleName models.RoleName) (*models.User, error) {
	if err := access.RequireRoles(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	role, err := s.getRoleByName(roleName)
	if err != nil {
		return nil, err
	}

	if user.HasRole(roleName) {
		return nil, apperrors.WithMessage(apperrors.ErrRoleAlreadyAssigned,
			"User already has the role "+string(roleName))
	}

	if err := s.db.Model(user).Association("Roles").Append(role); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetUserByID(userID)
}

// RemoveRole revokes a role from a user. Admin only. A user always keeps at
// least one role, and the admin role cannot be removed from the last admin.
func (s *userService) RemoveRole(actor *models.User, userID string, roleName models.RoleName) (*models.User, error) {
	if err := access.RequireRoles(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	role, err := s.getRoleByName(roleName)
	if err != nil {
		return nil, err
	}

	if !user.HasRole(roleName) {
		return nil, apperrors.WithMessage(apperrors.ErrRoleNotAssigned,
			"User does not have the role "+string(roleName))
	}

	if len(user.Roles) == 1 {
		return nil, apperrors.ErrLastRole
	}

	if roleName == models.RoleAdmin {
		count, err := s.countUsersWithRole(models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if count <= 1 {
			return nil, apperrors.WithMessage(apperrors.ErrLastAdmin,
				"Cannot remove admin role from the last admin user")
		}
	}

	if err := s.db.Model(user).Association("Roles").Delete(role); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetUserByID(userID)
}

// countUsersWithRole counts users holding a role via the join table, never
// from a cached value.
func (s *userService) countUsersWithRole(roleName models.RoleName) (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", roleName).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

func (s *userService) getRoleByName(roleName models.RoleName) (*models.Role, error) {
	var role models.Role
	if err := s.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrRoleNotFound, "Role "+string(roleName)+" not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &role, nil
}
