package services

import (
	"strings"
	"testing"

	"gorm.io/gorm"

	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
	"fitdesk/internal/pagination"
	"fitdesk/internal/testutil"
)

// failingProvisioner fails every subscription provisioning attempt; the
// embedded interface covers the methods signup never reaches.
type failingProvisioner struct {
	SubscriptionServicer
}

func (f *failingProvisioner) ProvisionEmptySubscription(tx *gorm.DB, user *models.User) (*models.Subscription, error) {
	return nil, apperrors.Wrap(apperrors.ErrInternalServer, gorm.ErrInvalidTransaction)
}

func newUserService(t *testing.T) (UserServicer, SubscriptionServicer, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	subscriptions := NewSubscriptionService(db)
	users := NewUserService(db, subscriptions)
	return users, subscriptions, func() { testutil.TeardownTestDB(t, db) }
}

func TestSignup(t *testing.T) {
	users, subscriptions, cleanup := newUserService(t)
	defer cleanup()

	t.Run("creates user with client role and empty active subscription", func(t *testing.T) {
		user, err := users.Signup("New.User@Example.COM", "password123", "New User", 25)
		testutil.AssertNoError(t, err)

		if user.Email != "new.user@example.com" {
			t.Errorf("expected normalized email, got %q", user.Email)
		}
		if user.Password == "password123" {
			t.Error("password was stored in plain text")
		}
		if !user.HasRole(models.RoleClient) {
			t.Error("expected new user to hold the client role")
		}
		if len(user.Roles) != 1 {
			t.Errorf("expected exactly one role, got %d", len(user.Roles))
		}

		subscription, err := subscriptions.GetSubscriptionByUserID(user.ID, nil)
		testutil.AssertNoError(t, err)
		if !subscription.IsActive {
			t.Error("expected provisioned subscription to be active")
		}
		if subscription.Cost != 0 || subscription.MaxGymVisits != 0 || subscription.MaxClassVisits != 0 {
			t.Error("expected provisioned subscription to be zero-valued")
		}
		if !strings.Contains(subscription.Name, "New User") {
			t.Errorf("expected subscription name derived from the user, got %q", subscription.Name)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := users.Signup("dup@example.com", "password123", "First", 30)
		testutil.AssertNoError(t, err)

		_, err = users.Signup("DUP@example.com", "password123", "Second", 30)
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("rejects empty credentials", func(t *testing.T) {
		_, err := users.Signup("", "password123", "No Email", 30)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = users.Signup("nopass@example.com", "", "No Password", 30)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestSignupRollback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	users := NewUserService(db, &failingProvisioner{})

	_, err := users.Signup("orphan@example.com", "password123", "Orphan", 30)
	if err == nil {
		t.Fatal("expected signup to fail when provisioning fails")
	}

	// User and subscription commit together; no user row may survive.
	var count int64
	db.Model(&models.User{}).Where("email = ?", "orphan@example.com").Count(&count)
	if count != 0 {
		t.Errorf("expected no user row after rollback, found %d", count)
	}
}

func TestLogin(t *testing.T) {
	users, _, cleanup := newUserService(t)
	defer cleanup()

	user, err := users.Signup("login@example.com", "password123", "Login User", 30)
	testutil.AssertNoError(t, err)

	t.Run("succeeds with correct credentials", func(t *testing.T) {
		got, err := users.Login("login@example.com", "password123")
		testutil.AssertNoError(t, err)
		if got.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, got.ID)
		}
		if len(got.Roles) == 0 {
			t.Error("expected roles to be loaded on login")
		}
	})

	t.Run("normalizes the email", func(t *testing.T) {
		_, err := users.Login("  LOGIN@example.com ", "password123")
		testutil.AssertNoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := users.Login("login@example.com", "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		_, err := users.Login("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		inactive, err := users.Signup("inactive@example.com", "password123", "Inactive User", 30)
		testutil.AssertNoError(t, err)

		off := false
		_, err = users.UpdateUser(inactive, inactive.ID, UserUpdateFields{IsActive: &off})
		testutil.AssertNoError(t, err)

		_, err = users.Login("inactive@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestUpdateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	users := NewUserService(db, NewSubscriptionService(db))

	admin := testutil.CreateTestAdmin(t, db)
	client := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	t.Run("user updates own profile", func(t *testing.T) {
		name := "Renamed Client"
		updated, err := users.UpdateUser(client, client.ID, UserUpdateFields{FullName: &name})
		testutil.AssertNoError(t, err)
		if updated.FullName != name {
			t.Errorf("expected full name %q, got %q", name, updated.FullName)
		}
	})

	t.Run("client cannot update another user", func(t *testing.T) {
		name := "Hijacked"
		_, err := users.UpdateUser(client, other.ID, UserUpdateFields{FullName: &name})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("admin updates anyone", func(t *testing.T) {
		age := 44
		updated, err := users.UpdateUser(admin, other.ID, UserUpdateFields{Age: &age})
		testutil.AssertNoError(t, err)
		if updated.Age != 44 {
			t.Errorf("expected age 44, got %d", updated.Age)
		}
	})

	t.Run("rejects taken email", func(t *testing.T) {
		email := other.Email
		_, err := users.UpdateUser(client, client.ID, UserUpdateFields{Email: &email})
		testutil.AssertAppError(t, err, "EMAIL_TAKEN")
	})

	t.Run("password change rehashes", func(t *testing.T) {
		password := "newpassword"
		_, err := users.UpdateUser(client, client.ID, UserUpdateFields{Password: &password})
		testutil.AssertNoError(t, err)

		_, err = users.Login(client.Email, "newpassword")
		testutil.AssertNoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		name := "Ghost"
		_, err := users.UpdateUser(admin, "00000000-0000-0000-0000-000000000000", UserUpdateFields{FullName: &name})
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestRemoveUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	users := NewUserService(db, NewSubscriptionService(db))

	admin := testutil.CreateTestAdmin(t, db)
	client := testutil.CreateTestUser(t, db)

	t.Run("non-admin cannot remove users", func(t *testing.T) {
		err := users.RemoveUser(client, admin.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("cannot remove the last admin", func(t *testing.T) {
		err := users.RemoveUser(admin, admin.ID)
		testutil.AssertAppError(t, err, "LAST_ADMIN")
	})

	t.Run("admin removes a client", func(t *testing.T) {
		err := users.RemoveUser(admin, client.ID)
		testutil.AssertNoError(t, err)

		_, err = users.GetUserByID(client.ID)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("second admin can be removed", func(t *testing.T) {
		secondAdmin := testutil.CreateTestAdmin(t, db)
		err := users.RemoveUser(admin, secondAdmin.ID)
		testutil.AssertNoError(t, err)
	})
}

func TestRoleManagement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	users := NewUserService(db, NewSubscriptionService(db))

	admin := testutil.CreateTestAdmin(t, db)
	client := testutil.CreateTestUser(t, db)

	t.Run("non-admin cannot manage roles", func(t *testing.T) {
		_, err := users.AddRole(client, client.ID, models.RoleReceptionist)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("admin grants a role", func(t *testing.T) {
		updated, err := users.AddRole(admin, client.ID, models.RoleReceptionist)
		testutil.AssertNoError(t, err)
		if !updated.HasRole(models.RoleReceptionist) {
			t.Error("expected receptionist role after grant")
		}
	})

	t.Run("granting an assigned role fails", func(t *testing.T) {
		_, err := users.AddRole(admin, client.ID, models.RoleReceptionist)
		testutil.AssertAppError(t, err, "ROLE_ALREADY_ASSIGNED")
	})

	t.Run("revoking an unassigned role fails", func(t *testing.T) {
		_, err := users.RemoveRole(admin, client.ID, models.RoleAdmin)
		testutil.AssertAppError(t, err, "ROLE_NOT_ASSIGNED")
	})

	t.Run("admin revokes a role", func(t *testing.T) {
		updated, err := users.RemoveRole(admin, client.ID, models.RoleReceptionist)
		testutil.AssertNoError(t, err)
		if updated.HasRole(models.RoleReceptionist) {
			t.Error("expected receptionist role to be gone")
		}
	})

	t.Run("cannot remove the last role", func(t *testing.T) {
		_, err := users.RemoveRole(admin, client.ID, models.RoleClient)
		testutil.AssertAppError(t, err, "LAST_ROLE")
	})

	t.Run("cannot strip admin from the last admin", func(t *testing.T) {
		_, err := users.AddRole(admin, admin.ID, models.RoleClient)
		testutil.AssertNoError(t, err)

		_, err = users.RemoveRole(admin, admin.ID, models.RoleAdmin)
		testutil.AssertAppError(t, err, "LAST_ADMIN")
	})

	t.Run("admin role can move once a second admin exists", func(t *testing.T) {
		secondAdmin := testutil.CreateTestAdmin(t, db)
		_, err := users.AddRole(admin, secondAdmin.ID, models.RoleClient)
		testutil.AssertNoError(t, err)

		updated, err := users.RemoveRole(admin, secondAdmin.ID, models.RoleAdmin)
		testutil.AssertNoError(t, err)
		if updated.HasRole(models.RoleAdmin) {
			t.Error("expected admin role to be revoked")
		}
	})
}

func TestListUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	users := NewUserService(db, NewSubscriptionService(db))

	for i := 0; i < 3; i++ {
		testutil.CreateTestUser(t, db)
	}

	result, err := users.ListUsers(pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if len(result.Data) != 2 {
		t.Errorf("expected 2 items on page, got %d", len(result.Data))
	}
	if result.TotalItems != 3 {
		t.Errorf("expected 3 total items, got %d", result.TotalItems)
	}
	for _, u := range result.Data {
		if len(u.Roles) == 0 {
			t.Error("expected roles preloaded in list")
		}
	}
}
