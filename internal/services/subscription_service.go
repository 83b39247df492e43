package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fitdesk/internal/access"
	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
	"fitdesk/internal/pagination"
)

// subscriptionService enforces the subscription lifecycle rules, most
// importantly: at most one active subscription per user. The check runs
// inside a transaction and the schema backs it with a partial unique index,
// so a lost race surfaces as a duplicate-key error.
type subscriptionService struct {
	db *gorm.DB
}

// NewSubscriptionService creates a new SubscriptionServicer.
func NewSubscriptionService(db *gorm.DB) SubscriptionServicer {
	return &subscriptionService{db: db}
}

// hasOtherActiveSubscription reports whether the user has an active,
// non-deleted subscription other than excludeID (pass "" to count all).
func hasOtherActiveSubscription(tx *gorm.DB, userID, excludeID string) (bool, error) {
	var count int64
	q := tx.Model(&models.Subscription{}).Where("user_id = ? AND is_active = ?", userID, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// ProvisionEmptySubscription creates a zero-valued active subscription for
// the user inside the caller's transaction. Used by signup so that user and
// subscription creation succeed or fail together.
func (s *subscriptionService) ProvisionEmptySubscription(tx *gorm.DB, user *models.User) (*models.Subscription, error) {
	hasActive, err := hasOtherActiveSubscription(tx, user.ID, "")
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, apperrors.ErrActiveSubscriptionExists
	}

	subscription := &models.Subscription{
		Name:           "Subscription for " + user.FullName,
		Cost:           0,
		MaxGymVisits:   0,
		MaxClassVisits: 0,
		DurationMonths: 0,
		PurchaseDate:   time.Now(),
		IsActive:       true,
		UserID:         user.ID,
		Memberships:    []models.Membership{},
	}

	if err := tx.Create(subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrActiveSubscriptionExists, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return subscription, nil
}

// CreateSubscriptionForUser creates an empty subscription for an existing
// user. Conflict if the user already has an active one.
func (s *subscriptionService) CreateSubscriptionForUser(userID string) (*models.Subscription, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subscription *models.Subscription
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		subscription, err = s.ProvisionEmptySubscription(tx, &user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// AddMembershipToSubscription attaches a template and folds its values into
// the subscription's aggregates: cost and visit allowances accumulate,
// duration takes the maximum because it represents how long the bundle
// stays valid, not additive time. Each template can be attached at most
// once, so the aggregates always equal the sums over the attached set.
func (s *subscriptionService) AddMembershipToSubscription(subscriptionID, membershipID string) (*models.Subscription, error) {
	var template models.Membership
	if err := s.db.Where("id = ?", membershipID).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMembershipNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	subscription, err := s.getByID(subscriptionID)
	if err != nil {
		return nil, err
	}

	// A second attach of the same template would dedupe the join row but
	// double-count the aggregates below.
	for _, attached := range subscription.Memberships {
		if attached.ID == template.ID {
			return nil, apperrors.ErrMembershipAlreadyAttached
		}
	}

	subscription.Cost += template.Cost
	subscription.MaxGymVisits += template.MaxGymVisits
	subscription.MaxClassVisits += template.MaxClassVisits
	if template.DurationMonths > subscription.DurationMonths {
		subscription.DurationMonths = template.DurationMonths
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(subscription).Association("Memberships").Append(&template); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates := map[string]interface{}{
			"cost":             subscription.Cost,
			"max_gym_visits":   subscription.MaxGymVisits,
			"max_class_visits": subscription.MaxClassVisits,
			"duration_months":  subscription.DurationMonths,
		}
		if err := tx.Model(subscription).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getByID(subscriptionID)
}

// ListSubscriptions retrieves a paginated list of subscriptions.
func (s *subscriptionService) ListSubscriptions(page pagination.PageRequest) (*pagination.PageResponse[models.Subscription], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Subscription{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subscriptions []models.Subscription
	err := s.db.Preload("User").Preload("Memberships").
		Scopes(pagination.Paginate(page)).
		Find(&subscriptions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(subscriptions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getByID loads a subscription with its user and memberships, without any
// permission check.
func (s *subscriptionService) getByID(id string) (*models.Subscription, error) {
	var subscription models.Subscription
	err := s.db.Preload("User").Preload("Memberships").Where("id = ?", id).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &subscription, nil
}

// GetSubscriptionByID retrieves a subscription. When an actor is given,
// only the owner, an admin, or a receptionist may read it.
func (s *subscriptionService) GetSubscriptionByID(id string, actor *models.User) (*models.Subscription, error) {
	subscription, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if actor != nil {
		if err := access.RequireOwnerOrRoles(actor, subscription.UserID,
			"access your own subscriptions", access.ElevatedFrontDesk...); err != nil {
			return nil, err
		}
	}
	return subscription, nil
}

// GetSubscriptionByUserID retrieves a user's subscription.
func (s *subscriptionService) GetSubscriptionByUserID(userID string, actor *models.User) (*models.Subscription, error) {
	if actor != nil {
		if err := access.RequireOwnerOrRoles(actor, userID,
			"access your own subscriptions", access.ElevatedFrontDesk...); err != nil {
			return nil, err
		}
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subscription models.Subscription
	err := s.db.Preload("User").Preload("Memberships").
		Where("user_id = ?", userID).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrSubscriptionNotFound, "Subscription not found for this user")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &subscription, nil
}

// UpdateSubscription applies the defined fields. When MembershipIDs is set,
// every id must resolve; the attached set is replaced all-or-nothing.
// Aggregates are not recomputed here, that is AddMembershipToSubscription's
// job; explicit field values win.
func (s *subscriptionService) UpdateSubscription(actor *models.User, id string, fields SubscriptionUpdateFields) (*models.Subscription, error) {
	subscription, err := s.getByID(id)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnerOrRoles(actor, subscription.UserID,
		"update your own subscriptions", access.ElevatedFrontDesk...); err != nil {
		return nil, err
	}

	var memberships []models.Membership
	if fields.MembershipIDs != nil {
		if err := s.db.Where("id IN ?", fields.MembershipIDs).Find(&memberships).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(memberships) != len(fields.MembershipIDs) {
			return nil, apperrors.ErrMembershipsNotAllResolved
		}
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Cost != nil {
		updates["cost"] = *fields.Cost
	}
	if fields.MaxGymVisits != nil {
		updates["max_gym_visits"] = *fields.MaxGymVisits
	}
	if fields.MaxClassVisits != nil {
		updates["max_class_visits"] = *fields.MaxClassVisits
	}
	if fields.DurationMonths != nil {
		updates["duration_months"] = *fields.DurationMonths
	}
	if fields.PurchaseDate != nil {
		updates["purchase_date"] = *fields.PurchaseDate
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if fields.MembershipIDs != nil {
			if err := tx.Model(subscription).Association("Memberships").Replace(memberships); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(subscription).Updates(updates).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperrors.Wrap(apperrors.ErrActiveSubscriptionExists, err)
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getByID(id)
}

// ActivateSubscription sets a subscription active. Conflict if the user
// already has a different active subscription.
func (s *subscriptionService) ActivateSubscription(actor *models.User, id string) (*models.Subscription, error) {
	subscription, err := s.getByID(id)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnerOrRoles(actor, subscription.UserID,
		"activate your own subscriptions", access.ElevatedFrontDesk...); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		hasActive, err := hasOtherActiveSubscription(tx, subscription.UserID, subscription.ID)
		if err != nil {
			return err
		}
		if hasActive {
			return apperrors.ErrActiveSubscriptionExists
		}
		if err := tx.Model(subscription).Update("is_active", true).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Wrap(apperrors.ErrActiveSubscriptionExists, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	subscription.IsActive = true
	return subscription, nil
}

// DeactivateSubscription sets a subscription inactive, unconditionally.
func (s *subscriptionService) DeactivateSubscription(actor *models.User, id string) (*models.Subscription, error) {
	subscription, err := s.getByID(id)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnerOrRoles(actor, subscription.UserID,
		"deactivate your own subscriptions", access.ElevatedFrontDesk...); err != nil {
		return nil, err
	}

	if err := s.db.Model(subscription).Update("is_active", false).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	subscription.IsActive = false
	return subscription, nil
}

// RemoveSubscription soft-deletes a subscription. The row keeps its deletion
// timestamp and no longer counts toward the active-subscription check.
func (s *subscriptionService) RemoveSubscription(actor *models.User, id string) error {
	subscription, err := s.getByID(id)
	if err != nil {
		return err
	}

	if err := access.RequireOwnerOrRoles(actor, subscription.UserID,
		"delete your own subscriptions", access.ElevatedFrontDesk...); err != nil {
		return err
	}

	if err := s.db.Delete(subscription).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
