package services

import (
	"testing"

	"fitdesk/internal/models"
	"fitdesk/internal/pagination"
	"fitdesk/internal/testutil"
)

func TestCreateMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	memberships := NewMembershipService(db)

	admin := testutil.CreateTestAdmin(t, db)
	client := testutil.CreateTestUser(t, db)

	t.Run("admin creates a template", func(t *testing.T) {
		membership, err := memberships.CreateMembership(admin, "Gold Monthly", 4999, 30, 8, models.DurationMonthly, nil)
		testutil.AssertNoError(t, err)
		if membership.ID == "" {
			t.Error("expected generated ID")
		}
		if !membership.Status {
			t.Error("expected status to default to active")
		}
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, err := memberships.CreateMembership(client, "Sneaky Plan", 100, 1, 1, models.DurationMonthly, nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := memberships.CreateMembership(admin, "Gold Monthly", 4999, 30, 8, models.DurationMonthly, nil)
		testutil.AssertAppError(t, err, "DUPLICATE_MEMBERSHIP_NAME")
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := memberships.CreateMembership(admin, "Half Year", 100, 1, 1, 6, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative cost", func(t *testing.T) {
		_, err := memberships.CreateMembership(admin, "Negative", -1, 1, 1, models.DurationMonthly, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("explicit inactive status", func(t *testing.T) {
		inactive := false
		membership, err := memberships.CreateMembership(admin, "Drafted Plan", 100, 1, 1, models.DurationYearly, &inactive)
		testutil.AssertNoError(t, err)
		if membership.Status {
			t.Error("expected template to be created inactive")
		}
	})
}

func TestUpdateMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	memberships := NewMembershipService(db)

	admin := testutil.CreateTestAdmin(t, db)
	client := testutil.CreateTestUser(t, db)
	membership := testutil.CreateTestMembership(t, db, 1000, 10, 5, models.DurationMonthly)

	t.Run("admin updates fields", func(t *testing.T) {
		cost := int64(2000)
		duration := models.DurationYearly
		updated, err := memberships.UpdateMembership(admin, membership.ID, MembershipUpdateFields{
			Cost:           &cost,
			DurationMonths: &duration,
		})
		testutil.AssertNoError(t, err)
		if updated.Cost != 2000 {
			t.Errorf("expected cost 2000, got %d", updated.Cost)
		}
		if updated.DurationMonths != models.DurationYearly {
			t.Errorf("expected yearly duration, got %d", updated.DurationMonths)
		}
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		cost := int64(1)
		_, err := memberships.UpdateMembership(client, membership.ID, MembershipUpdateFields{Cost: &cost})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("invalid duration", func(t *testing.T) {
		duration := 3
		_, err := memberships.UpdateMembership(admin, membership.ID, MembershipUpdateFields{DurationMonths: &duration})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown template", func(t *testing.T) {
		cost := int64(1)
		_, err := memberships.UpdateMembership(admin, "00000000-0000-0000-0000-000000000000", MembershipUpdateFields{Cost: &cost})
		testutil.AssertAppError(t, err, "MEMBERSHIP_NOT_FOUND")
	})
}

func TestToggleMembershipStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	memberships := NewMembershipService(db)

	admin := testutil.CreateTestAdmin(t, db)
	membership := testutil.CreateTestMembership(t, db, 1000, 10, 5, models.DurationMonthly)

	toggled, err := memberships.ToggleMembershipStatus(admin, membership.ID)
	testutil.AssertNoError(t, err)
	if toggled.Status {
		t.Error("expected status off after first toggle")
	}

	toggled, err = memberships.ToggleMembershipStatus(admin, membership.ID)
	testutil.AssertNoError(t, err)
	if !toggled.Status {
		t.Error("expected status back on after second toggle")
	}
}

func TestRemoveMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	memberships := NewMembershipService(db)

	admin := testutil.CreateTestAdmin(t, db)
	client := testutil.CreateTestUser(t, db)
	membership := testutil.CreateTestMembership(t, db, 1000, 10, 5, models.DurationMonthly)

	t.Run("non-admin is rejected", func(t *testing.T) {
		err := memberships.RemoveMembership(client, membership.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("admin removes a template", func(t *testing.T) {
		err := memberships.RemoveMembership(admin, membership.ID)
		testutil.AssertNoError(t, err)

		_, err = memberships.GetMembershipByID(membership.ID)
		testutil.AssertAppError(t, err, "MEMBERSHIP_NOT_FOUND")
	})
}

func TestListMemberships(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	memberships := NewMembershipService(db)

	for i := 0; i < 3; i++ {
		testutil.CreateTestMembership(t, db, 1000, 10, 5, models.DurationMonthly)
	}

	result, err := memberships.ListMemberships(pagination.PageRequest{Page: 2, PageSize: 2})
	testutil.AssertNoError(t, err)
	if len(result.Data) != 1 {
		t.Errorf("expected 1 item on last page, got %d", len(result.Data))
	}
	if result.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", result.TotalPages)
	}
}
