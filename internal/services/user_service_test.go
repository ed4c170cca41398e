package services

import (
	"testing"

	"academy/internal/models"
	"academy/internal/testutil"
)

func TestGetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		found, err := svc.GetUserByID(user.ID)
		testutil.AssertNoError(t, err)
		if found.Email != user.Email {
			t.Errorf("expected email %s, got %s", user.Email, found.Email)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetUserByID("0190a3f4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestListActiveTeachers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	active := testutil.CreateTestTeacher(t, db)
	testutil.CreateTestUserWithRole(t, db, models.UserRoleTeacher, false)
	testutil.CreateTestUserWithRole(t, db, models.UserRoleStaff, true)
	testutil.CreateTestUser(t, db)

	teachers, err := svc.ListActiveTeachers(nil)
	testutil.AssertNoError(t, err)

	if len(teachers) != 1 {
		t.Fatalf("expected 1 active teacher, got %d", len(teachers))
	}
	if teachers[0].ID != active.ID {
		t.Errorf("expected teacher %s, got %s", active.ID, teachers[0].ID)
	}
}
