package services

import (
	"testing"
	"time"

	"academy/internal/models"
	"academy/internal/pagination"
	"academy/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)

		txn, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:          models.FinanceTypeRevenue,
			CategoryID:    cat.ID,
			Amount:        dec("150000"),
			PaymentMethod: models.PaymentMethodBank,
			Note:          "March tuition",
		})
		testutil.AssertNoError(t, err)

		if txn.ID == "" {
			t.Fatal("expected transaction ID")
		}
		if txn.Currency != "KRW" {
			t.Errorf("expected default currency KRW, got %s", txn.Currency)
		}
		if txn.IsDeleted {
			t.Error("expected new transaction not to be deleted")
		}
		if txn.OccurredAt.IsZero() {
			t.Error("expected occurred_at to default to now")
		}
		if txn.Reference() != nil {
			t.Error("expected manual entry without reference")
		}
		testutil.AssertDecimal(t, "150000", txn.Amount)
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeRevenue, CategoryID: cat.ID, Amount: dec("0"), PaymentMethod: models.PaymentMethodCash,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeRevenue, CategoryID: cat.ID, Amount: dec("-1"), PaymentMethod: models.PaymentMethodCash,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("category_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeRevenue, CategoryID: "0190a3f4-0000-7000-8000-000000000003", Amount: dec("10"), PaymentMethod: models.PaymentMethodCash,
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("category_type_mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeRevenue, CategoryID: cat.ID, Amount: dec("10"), PaymentMethod: models.PaymentMethodCash,
		})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("inactive_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		db.Model(cat).Update("is_active", false)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("10"), PaymentMethod: models.PaymentMethodCash,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("reference_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("10"), PaymentMethod: models.PaymentMethodCash,
			Reference: &models.Reference{Type: models.ReferenceTypePayroll, ID: "0190a3f4-0000-7000-8000-000000000004"},
		})
		testutil.AssertAppError(t, err, "REFERENCE_NOT_FOUND")
	})

	t.Run("reference_to_existing_payroll", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		teacher := testutil.CreateTestTeacher(t, db)
		payroll := testutil.CreateTestPayroll(t, db, teacher.ID, time.Now(), "100", "0", "0", models.PayrollStatusPaid)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

		txn, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("100"), PaymentMethod: models.PaymentMethodBank,
			Reference: &models.Reference{Type: models.ReferenceTypePayroll, ID: payroll.ID},
		})
		testutil.AssertNoError(t, err)

		ref := txn.Reference()
		if ref == nil || ref.Type != models.ReferenceTypePayroll || ref.ID != payroll.ID {
			t.Errorf("expected payroll reference, got %+v", ref)
		}
	})

	t.Run("book_sale_already_linked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		s := newTestServices(db)
		user := testutil.CreateTestUser(t, db)
		book := testutil.CreateTestBook(t, db, "2000", "1000")
		sale, err := s.sales.CreateBookSale(user.ID, BookSaleInput{
			PaymentMethod: models.PaymentMethodCash,
			Items:         []BookSaleItemInput{{BookID: book.ID, Qty: 1}},
		})
		testutil.AssertNoError(t, err)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)

		_, err = s.transactions.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeRevenue, CategoryID: cat.ID, Amount: dec("1000"), PaymentMethod: models.PaymentMethodCash,
			Reference: &models.Reference{Type: models.ReferenceTypeBookSale, ID: sale.Sale.ID},
		})
		testutil.AssertAppError(t, err, "INVALID_STATE")

		var count int64
		db.Model(&models.FinanceTransaction{}).
			Where("reference_id = ? AND is_deleted = ?", sale.Sale.ID, false).
			Count(&count)
		if count != 1 {
			t.Errorf("expected 1 live entry for the sale, got %d", count)
		}

		report, err := s.reports.AllReport()
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "1000", report.TotalRevenue)
	})

	t.Run("book_sale_relinked_after_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		s := newTestServices(db)
		user := testutil.CreateTestUser(t, db)
		book := testutil.CreateTestBook(t, db, "2000", "1000")
		sale, err := s.sales.CreateBookSale(user.ID, BookSaleInput{
			PaymentMethod: models.PaymentMethodCash,
			Items:         []BookSaleItemInput{{BookID: book.ID, Qty: 1}},
		})
		testutil.AssertNoError(t, err)
		ref := models.Reference{Type: models.ReferenceTypeBookSale, ID: sale.Sale.ID}
		linked, err := s.transactions.FindLinked(db, ref)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, s.transactions.DeleteTransaction(linked.ID))
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)

		txn, err := s.transactions.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeRevenue, CategoryID: cat.ID, Amount: dec("1000"), PaymentMethod: models.PaymentMethodCash,
			Reference: &ref,
		})
		testutil.AssertNoError(t, err)
		if got := txn.Reference(); got == nil || *got != ref {
			t.Errorf("expected reference %+v, got %+v", ref, got)
		}
	})

	t.Run("book_sale_reference_requires_revenue", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		s := newTestServices(db)
		user := testutil.CreateTestUser(t, db)
		book := testutil.CreateTestBook(t, db, "2000", "1000")
		sale, err := s.sales.CreateBookSale(user.ID, BookSaleInput{
			PaymentMethod: models.PaymentMethodCash,
			Items:         []BookSaleItemInput{{BookID: book.ID, Qty: 1}},
		})
		testutil.AssertNoError(t, err)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

		_, err = s.transactions.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("10"), PaymentMethod: models.PaymentMethodCash,
			Reference: &models.Reference{Type: models.ReferenceTypeBookSale, ID: sale.Sale.ID},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unpaid_payroll_reference", func(t *testing.T) {
		for _, status := range []models.PayrollStatus{models.PayrollStatusDraft, models.PayrollStatusConfirmed} {
			t.Run(string(status), func(t *testing.T) {
				db := testutil.SetupTestDB(t)
				defer testutil.TeardownTestDB(t, db)
				svc := NewTransactionService(db, "KRW")
				user := testutil.CreateTestUser(t, db)
				teacher := testutil.CreateTestTeacher(t, db)
				payroll := testutil.CreateTestPayroll(t, db, teacher.ID, time.Now(), "100", "0", "0", status)
				cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

				_, err := svc.CreateTransaction(user.ID, TransactionInput{
					Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("100"), PaymentMethod: models.PaymentMethodBank,
					Reference: &models.Reference{Type: models.ReferenceTypePayroll, ID: payroll.ID},
				})
				testutil.AssertAppError(t, err, "INVALID_STATE")
			})
		}
	})

	t.Run("payroll_reference_requires_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		teacher := testutil.CreateTestTeacher(t, db)
		payroll := testutil.CreateTestPayroll(t, db, teacher.ID, time.Now(), "100", "0", "0", models.PayrollStatusPaid)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeRevenue, CategoryID: cat.ID, Amount: dec("100"), PaymentMethod: models.PaymentMethodBank,
			Reference: &models.Reference{Type: models.ReferenceTypePayroll, ID: payroll.ID},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_reference_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("10"), PaymentMethod: models.PaymentMethodCash,
			Reference: &models.Reference{Type: models.ReferenceType("COURSE"), ID: "x"},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestCreateLinked(t *testing.T) {
	t.Run("allows_non_positive_amounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		teacher := testutil.CreateTestTeacher(t, db)
		payroll := testutil.CreateTestPayroll(t, db, teacher.ID, time.Now(), "0", "0", "0", models.PayrollStatusPaid)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

		txn, err := svc.CreateLinked(db, user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("0"), PaymentMethod: models.PaymentMethodCash,
			Reference: &models.Reference{Type: models.ReferenceTypePayroll, ID: payroll.ID},
		})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "0", txn.Amount)
	})

	t.Run("requires_reference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

		_, err := svc.CreateLinked(db, user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("10"), PaymentMethod: models.PaymentMethodCash,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, "KRW")
	user := testutil.CreateTestUser(t, db)
	revenue := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)
	expense := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)

	jan := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t1 := testutil.CreateTestTransactionAt(t, db, user.ID, revenue, "100", jan)
	testutil.CreateTestTransactionAt(t, db, user.ID, expense, "200", feb)
	t3 := testutil.CreateTestTransactionAt(t, db, user.ID, revenue, "300", mar)
	deleted := testutil.CreateTestTransactionAt(t, db, user.ID, revenue, "999", feb)
	testutil.AssertNoError(t, svc.DeleteTransaction(deleted.ID))
	db.Model(t3).Update("note", "Spring Workshop fee")

	t.Run("excludes_deleted_newest_first", func(t *testing.T) {
		result, err := svc.ListTransactions(pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 3 {
			t.Fatalf("expected 3 transactions, got %d", result.TotalItems)
		}
		if result.Data[0].ID != t3.ID || result.Data[2].ID != t1.ID {
			t.Errorf("expected newest first")
		}
		if result.Data[0].Category == nil {
			t.Error("expected category to be loaded")
		}
	})

	t.Run("filter_by_type", func(t *testing.T) {
		typ := models.FinanceTypeExpense
		result, err := svc.ListTransactions(pagination.PageRequest{}, TransactionFilter{Type: &typ})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 expense, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_date_range", func(t *testing.T) {
		from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
		result, err := svc.ListTransactions(pagination.PageRequest{}, TransactionFilter{FromDate: &from, ToDate: &to})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 transactions in range, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_category_and_method", func(t *testing.T) {
		method := models.PaymentMethodCash
		result, err := svc.ListTransactions(pagination.PageRequest{}, TransactionFilter{CategoryID: &revenue.ID, PaymentMethod: &method})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 cash revenue entries, got %d", result.TotalItems)
		}
	})

	t.Run("note_search_is_case_insensitive", func(t *testing.T) {
		result, err := svc.ListTransactions(pagination.PageRequest{}, TransactionFilter{Query: "workshop"})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].ID != t3.ID {
			t.Errorf("expected only the workshop entry, got %d", result.TotalItems)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := svc.ListTransactions(pagination.PageRequest{Page: 2, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 1 {
			t.Errorf("expected 1 item on page 2, got %d", len(result.Data))
		}
		if result.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", result.TotalPages)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("amount_and_note", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		txn := testutil.CreateTestTransaction(t, db, user.ID, cat, "100")

		amount := dec("250")
		updated, err := svc.UpdateTransaction(txn.ID, TransactionUpdateFields{Amount: &amount, Note: strPtr("Printer ink")})
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "250", updated.Amount)
		if updated.Note != "Printer ink" {
			t.Errorf("expected note to change, got %q", updated.Note)
		}
	})

	t.Run("category_must_match_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		other := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)
		txn := testutil.CreateTestTransaction(t, db, user.ID, cat, "100")

		_, err := svc.UpdateTransaction(txn.ID, TransactionUpdateFields{CategoryID: &other.ID})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		txn := testutil.CreateTestTransaction(t, db, user.ID, cat, "100")

		amount := dec("0")
		_, err := svc.UpdateTransaction(txn.ID, TransactionUpdateFields{Amount: &amount})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("clear_reference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		teacher := testutil.CreateTestTeacher(t, db)
		payroll := testutil.CreateTestPayroll(t, db, teacher.ID, time.Now(), "100", "0", "0", models.PayrollStatusPaid)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		txn, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("100"), PaymentMethod: models.PaymentMethodBank,
			Reference: &models.Reference{Type: models.ReferenceTypePayroll, ID: payroll.ID},
		})
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateTransaction(txn.ID, TransactionUpdateFields{ClearReference: true})
		testutil.AssertNoError(t, err)
		if updated.ReferenceType != nil || updated.ReferenceID != nil {
			t.Error("expected both reference columns cleared")
		}
	})

	t.Run("reference_already_linked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		teacher := testutil.CreateTestTeacher(t, db)
		payroll := testutil.CreateTestPayroll(t, db, teacher.ID, time.Now(), "100", "0", "0", models.PayrollStatusPaid)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		ref := models.Reference{Type: models.ReferenceTypePayroll, ID: payroll.ID}
		first, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: models.FinanceTypeExpense, CategoryID: cat.ID, Amount: dec("100"), PaymentMethod: models.PaymentMethodBank,
			Reference: &ref,
		})
		testutil.AssertNoError(t, err)
		second := testutil.CreateTestTransaction(t, db, user.ID, cat, "100")

		_, err = svc.UpdateTransaction(second.ID, TransactionUpdateFields{Reference: &ref})
		testutil.AssertAppError(t, err, "INVALID_STATE")

		// re-sending the entry's own link is not a second link
		updated, err := svc.UpdateTransaction(first.ID, TransactionUpdateFields{Reference: &ref, Note: strPtr("March pay")})
		testutil.AssertNoError(t, err)
		if updated.Note != "March pay" {
			t.Errorf("expected note to be updated, got %q", updated.Note)
		}
	})

	t.Run("deleted_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		txn := testutil.CreateTestTransaction(t, db, user.ID, cat, "100")
		testutil.AssertNoError(t, svc.DeleteTransaction(txn.ID))

		_, err := svc.UpdateTransaction(txn.ID, TransactionUpdateFields{Note: strPtr("x")})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("soft_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		txn := testutil.CreateTestTransaction(t, db, user.ID, cat, "100")

		testutil.AssertNoError(t, svc.DeleteTransaction(txn.ID))

		_, err := svc.GetTransactionByID(txn.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		var row models.FinanceTransaction
		if err := db.Where("id = ?", txn.ID).First(&row).Error; err != nil {
			t.Fatalf("expected row to remain in the table: %v", err)
		}
		if !row.IsDeleted {
			t.Error("expected is_deleted to be set")
		}
	})

	t.Run("already_deleted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, models.FinanceTypeExpense)
		txn := testutil.CreateTestTransaction(t, db, user.ID, cat, "100")

		testutil.AssertNoError(t, svc.DeleteTransaction(txn.ID))
		err := svc.DeleteTransaction(txn.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, "KRW")

		err := svc.DeleteTransaction("0190a3f4-0000-7000-8000-000000000005")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
