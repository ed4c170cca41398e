package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"academy/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active admin with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.UserRoleAdmin, true)
}

// CreateTestTeacher creates an active teacher.
func CreateTestTeacher(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.UserRoleTeacher, true)
}

// CreateTestUserWithRole creates a user with the given role and active flag.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.UserRole, active bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", n),
		Role:     role,
		IsActive: active,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates an active category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, financeType models.FinanceType) *models.FinanceCategory {
	t.Helper()
	return CreateTestCategoryWithName(t, db, financeType, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryWithName creates an active category with the given type and name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, financeType models.FinanceType, name string) *models.FinanceCategory {
	t.Helper()

	category := &models.FinanceCategory{
		Type:     financeType,
		Name:     name,
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a manual ledger entry under the category,
// dated now, in KRW.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, category *models.FinanceCategory, amount string) *models.FinanceTransaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, userID, category, amount, time.Now().UTC())
}

// CreateTestTransactionAt creates a manual ledger entry at the given time.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID string, category *models.FinanceCategory, amount string, occurredAt time.Time) *models.FinanceTransaction {
	t.Helper()

	txn := &models.FinanceTransaction{
		Type:            category.Type,
		CategoryID:      category.ID,
		Amount:          decimal.RequireFromString(amount),
		Currency:        "KRW",
		PaymentMethod:   models.PaymentMethodCash,
		OccurredAt:      occurredAt.UTC(),
		CreatedByUserID: userID,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestBook creates an active book. An empty costPrice leaves it unset.
func CreateTestBook(t *testing.T, db *gorm.DB, salePrice, costPrice string) *models.Book {
	t.Helper()

	n := nextID()
	book := &models.Book{
		Title:     fmt.Sprintf("Test Book %d", n),
		SKU:       fmt.Sprintf("SKU-%d", n),
		SalePrice: decimal.RequireFromString(salePrice),
		IsActive:  true,
	}
	if costPrice != "" {
		book.CostPrice = decimal.NewNullDecimal(decimal.RequireFromString(costPrice))
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to create test book: %v", err)
	}
	return book
}

// CreateTestPayroll creates a payroll row for the teacher and month with the
// given money fields; net pay is derived.
func CreateTestPayroll(t *testing.T, db *gorm.DB, teacherID string, month time.Time, base, bonus, deduction string, status models.PayrollStatus) *models.Payroll {
	t.Helper()

	b := decimal.RequireFromString(base)
	bo := decimal.RequireFromString(bonus)
	d := decimal.RequireFromString(deduction)
	payroll := &models.Payroll{
		TeacherUserID: teacherID,
		PeriodMonth:   models.MonthStart(month),
		BaseSalary:    b,
		Bonus:         bo,
		Deduction:     d,
		NetPay:        models.ComputeNetPay(b, bo, d),
		Status:        status,
		Currency:      "KRW",
	}
	if err := db.Create(payroll).Error; err != nil {
		t.Fatalf("failed to create test payroll: %v", err)
	}
	return payroll
}
