package services

import (
	"testing"

	"academy/internal/models"
	"academy/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_entry_with_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "PAY_PAYROLL", "payroll", "p-1", "10.0.0.1", map[string]interface{}{"payment_method": "BANK"})

		var entry models.AuditLog
		if err := db.First(&entry).Error; err != nil {
			t.Fatalf("expected an audit entry: %v", err)
		}
		if entry.UserID == nil || *entry.UserID != user.ID {
			t.Errorf("expected user id %s, got %v", user.ID, entry.UserID)
		}
		if entry.Changes != `{"payment_method":"BANK"}` {
			t.Errorf("unexpected changes %q", entry.Changes)
		}
	})

	t.Run("system_actor_has_no_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log("", "GENERATE_PAYROLLS", "payroll", "2026-03", "", nil)

		var entry models.AuditLog
		if err := db.First(&entry).Error; err != nil {
			t.Fatalf("expected an audit entry: %v", err)
		}
		if entry.UserID != nil {
			t.Errorf("expected nil user id, got %v", *entry.UserID)
		}
	})
}
