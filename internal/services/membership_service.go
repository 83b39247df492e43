package services

import (
	"errors"

	"gorm.io/gorm"

	"fitdesk/internal/access"
	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
	"fitdesk/internal/pagination"
)

// membershipService handles membership template management. Templates are
// only ever modified through these admin operations; subscriptions copy
// their values at attach time.
type membershipService struct {
	db *gorm.DB
}

// NewMembershipService creates a new MembershipServicer.
func NewMembershipService(db *gorm.DB) MembershipServicer {
	return &membershipService{db: db}
}

// CreateMembership creates a new membership template. Admin only.
func (s *membershipService) CreateMembership(actor *models.User, name string, cost int64, maxGymVisits, maxClassVisits, durationMonths int, status *bool) (*models.Membership, error) {
	if err := access.RequireRoles(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "membership name is required")
	}
	if cost < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cost must not be negative")
	}
	if durationMonths != models.DurationMonthly && durationMonths != models.DurationYearly {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duration must be 1 month (monthly) or 12 months (yearly)")
	}

	membership := &models.Membership{
		Name:           name,
		Cost:           cost,
		MaxGymVisits:   maxGymVisits,
		MaxClassVisits: maxClassVisits,
		DurationMonths: durationMonths,
		Status:         true,
	}
	if status != nil {
		membership.Status = *status
	}

	if err := s.db.Create(membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrDuplicateMembershipName, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return membership, nil
}

// ListMemberships retrieves a paginated list of membership templates.
func (s *membershipService) ListMemberships(page pagination.PageRequest) (*pagination.PageResponse[models.Membership], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Membership{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var memberships []models.Membership
	if err := s.db.Scopes(pagination.Paginate(page)).Find(&memberships).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(memberships, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetMembershipByID retrieves a membership template by ID.
func (s *membershipService) GetMembershipByID(id string) (*models.Membership, error) {
	var membership models.Membership
	if err := s.db.Where("id = ?", id).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMembershipNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &membership, nil
}

// UpdateMembership applies the defined fields to a membership template.
// Admin only. Existing subscriptions keep their aggregated values.
func (s *membershipService) UpdateMembership(actor *models.User, id string, fields MembershipUpdateFields) (*models.Membership, error) {
	if err := access.RequireRoles(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	membership, err := s.GetMembershipByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Cost != nil {
		if *fields.Cost < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cost must not be negative")
		}
		updates["cost"] = *fields.Cost
	}
	if fields.MaxGymVisits != nil {
		updates["max_gym_visits"] = *fields.MaxGymVisits
	}
	if fields.MaxClassVisits != nil {
		updates["max_class_visits"] = *fields.MaxClassVisits
	}
	if fields.DurationMonths != nil {
		if *fields.DurationMonths != models.DurationMonthly && *fields.DurationMonths != models.DurationYearly {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duration must be 1 month (monthly) or 12 months (yearly)")
		}
		updates["duration_months"] = *fields.DurationMonths
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(membership).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.Wrap(apperrors.ErrDuplicateMembershipName, err)
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", membership.ID).First(membership).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return membership, nil
}

// ToggleMembershipStatus flips the template's active flag. Admin only.
func (s *membershipService) ToggleMembershipStatus(actor *models.User, id string) (*models.Membership, error) {
	if err := access.RequireRoles(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	membership, err := s.GetMembershipByID(id)
	if err != nil {
		return nil, err
	}

	membership.Status = !membership.Status
	if err := s.db.Model(membership).Update("status", membership.Status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return membership, nil
}

// RemoveMembership deletes a membership template. Admin only.
func (s *membershipService) RemoveMembership(actor *models.User, id string) error {
	if err := access.RequireRoles(actor, models.RoleAdmin); err != nil {
		return err
	}

	membership, err := s.GetMembershipByID(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(membership).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
