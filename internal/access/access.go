// Package access centralizes permission decisions. Every service consults
// these functions instead of scanning role sets inline, so the rules live in
// one place. Callers must load the acting user's roles before evaluation;
// an empty role set is a data-integrity error, not a denial.
package access

import (
	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
)

// ElevatedFrontDesk is the elevated role set for attendance and subscription
// operations: receptionists may act on behalf of any user at the front desk.
var ElevatedFrontDesk = []models.RoleName{models.RoleAdmin, models.RoleReceptionist}

// rolesLoaded guards against evaluating an actor whose role associations
// were never fetched. Users always have at least one role, so an empty set
// means the caller skipped the preload.
func rolesLoaded(actor *models.User) error {
	if actor == nil || len(actor.Roles) == 0 {
		return apperrors.ErrRolesNotLoaded
	}
	return nil
}

// RequireRoles permits the operation only if the actor holds at least one of
// the required roles. With no required roles it only checks that the actor's
// roles are loaded.
func RequireRoles(actor *models.User, required ...models.RoleName) error {
	if err := rolesLoaded(actor); err != nil {
		return err
	}
	if len(required) == 0 {
		return nil
	}
	if actor.HasRole(required...) {
		return nil
	}
	return apperrors.WithMessage(apperrors.ErrForbidden,
		"User "+actor.Email+" needs a valid role for this action")
}

// RequireOwnerOrRoles permits a self-service operation: the actor must own
// the target resource or hold one of the elevated roles.
func RequireOwnerOrRoles(actor *models.User, ownerID string, action string, elevated ...models.RoleName) error {
	if err := rolesLoaded(actor); err != nil {
		return err
	}
	if actor.ID == ownerID {
		return nil
	}
	if actor.HasRole(elevated...) {
		return nil
	}
	return apperrors.WithMessage(apperrors.ErrForbidden, "You can only "+action)
}
