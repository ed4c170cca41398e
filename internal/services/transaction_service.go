package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "academy/internal/errors"
	"academy/internal/models"
	"academy/internal/pagination"
)

// transactionService handles the finance ledger.
type transactionService struct {
	db              *gorm.DB
	defaultCurrency string
}

// NewTransactionService creates a new TransactionServicer. Entries created
// without a currency get defaultCurrency.
func NewTransactionService(db *gorm.DB, defaultCurrency string) TransactionServicer {
	return &transactionService{
		db:              db,
		defaultCurrency: defaultCurrency,
	}
}

// CreateTransaction records a manual ledger entry. Manual amounts must be
// strictly positive.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.FinanceTransaction, error) {
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	var result *models.FinanceTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.createTransactionWithDB(tx, userID, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateLinked records an entry derived from a book sale or payroll inside
// the caller's unit of work. Derived amounts may be zero or negative.
func (s *transactionService) CreateLinked(tx *gorm.DB, userID string, input TransactionInput) (*models.FinanceTransaction, error) {
	if input.Reference == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "linked transaction requires a reference")
	}
	return s.createTransactionWithDB(tx, userID, input)
}

// createTransactionWithDB validates and inserts an entry with a given database connection
func (s *transactionService) createTransactionWithDB(tx *gorm.DB, userID string, input TransactionInput) (*models.FinanceTransaction, error) {
	if !input.Type.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be REVENUE or EXPENSE")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method")
	}

	if _, err := resolveEntryCategory(tx, input.CategoryID, input.Type); err != nil {
		return nil, err
	}
	if input.Reference != nil {
		if err := checkReference(tx, *input.Reference, input.Type, ""); err != nil {
			return nil, err
		}
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	transaction := &models.FinanceTransaction{
		Type:            input.Type,
		CategoryID:      input.CategoryID,
		Amount:          input.Amount,
		Currency:        currency,
		PaymentMethod:   input.PaymentMethod,
		OccurredAt:      occurredAt.UTC(),
		Note:            input.Note,
		CreatedByUserID: userID,
	}
	transaction.SetReference(input.Reference)

	if err := tx.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetTransactionByID retrieves a non-deleted entry with its category.
func (s *transactionService) GetTransactionByID(id string) (*models.FinanceTransaction, error) {
	var transaction models.FinanceTransaction
	if err := s.db.Preload("Category").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// ListTransactions retrieves a paginated, filtered list of non-deleted
// entries, newest first.
func (s *transactionService) ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.FinanceTransaction], error) {
	base := s.db.Model(&models.FinanceTransaction{}).Where("is_deleted = ?", false)
	base = applyTransactionFilters(base, filter).Session(&gorm.Session{})

	result, err := pagination.Find[models.FinanceTransaction](base, page, "occurred_at DESC, id DESC",
		func(db *gorm.DB) *gorm.DB { return db.Preload("Category") })
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("occurred_at >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("occurred_at <= ?", f.ToDate.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.PaymentMethod != nil {
		q = q.Where("payment_method = ?", *f.PaymentMethod)
	}
	if query := strings.TrimSpace(f.Query); query != "" {
		q = q.Where("LOWER(note) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	return q
}

// UpdateTransaction edits a non-deleted entry. The entry's type is fixed,
// so a new category must have the same type.
func (s *transactionService) UpdateTransaction(id string, fields TransactionUpdateFields) (*models.FinanceTransaction, error) {
	transaction, err := s.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if fields.CategoryID != nil && *fields.CategoryID != transaction.CategoryID {
		if _, err := resolveEntryCategory(s.db, *fields.CategoryID, transaction.Type); err != nil {
			return nil, err
		}
		updates["category_id"] = *fields.CategoryID
	}
	if fields.Amount != nil {
		if !fields.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*fields.Currency))
		if currency == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency cannot be empty")
		}
		updates["currency"] = currency
	}
	if fields.PaymentMethod != nil {
		if !fields.PaymentMethod.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method")
		}
		updates["payment_method"] = *fields.PaymentMethod
	}
	if fields.OccurredAt != nil {
		updates["occurred_at"] = fields.OccurredAt.UTC()
	}
	if fields.Note != nil {
		updates["note"] = *fields.Note
	}
	switch {
	case fields.ClearReference:
		updates["reference_type"] = nil
		updates["reference_id"] = nil
	case fields.Reference != nil:
		if current := transaction.Reference(); current == nil || *current != *fields.Reference {
			if err := checkReference(s.db, *fields.Reference, transaction.Type, transaction.ID); err != nil {
				return nil, err
			}
		}
		updates["reference_type"] = fields.Reference.Type
		updates["reference_id"] = fields.Reference.ID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.FinanceTransaction{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetTransactionByID(id)
}

// DeleteTransaction soft-deletes an entry. Deleting an already-deleted entry
// reports it as not found.
func (s *transactionService) DeleteTransaction(id string) error {
	result := s.db.Model(&models.FinanceTransaction{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// FindLinked returns the non-deleted entry referencing ref, or nil when there
// is none.
func (s *transactionService) FindLinked(tx *gorm.DB, ref models.Reference) (*models.FinanceTransaction, error) {
	var transaction models.FinanceTransaction
	err := tx.Where("reference_type = ? AND reference_id = ? AND is_deleted = ?", ref.Type, ref.ID, false).
		Order("created_at ASC").
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// SyncLinked copies the source record's values onto its derived entry.
func (s *transactionService) SyncLinked(tx *gorm.DB, txn *models.FinanceTransaction, fields LinkedSyncFields) error {
	updates := map[string]interface{}{
		"amount":         fields.Amount,
		"occurred_at":    fields.OccurredAt.UTC(),
		"note":           fields.Note,
		"payment_method": fields.PaymentMethod,
		"currency":       fields.Currency,
	}
	if err := tx.Model(txn).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// resolveEntryCategory loads the category an entry is filed under and checks
// it is usable for an entry of the given type.
func resolveEntryCategory(db *gorm.DB, categoryID string, financeType models.FinanceType) (*models.FinanceCategory, error) {
	if categoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id is required")
	}
	category, err := findCategory(db, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is inactive")
	}
	if category.Type != financeType {
		return nil, apperrors.ErrCategoryTypeMismatch
	}
	return category, nil
}

// checkReference verifies that ref names an existing book sale or payroll
// an entry of financeType may link to, and that no other live entry links
// it already. excludeID is the entry being edited, if any.
func checkReference(db *gorm.DB, ref models.Reference, financeType models.FinanceType, excludeID string) error {
	if ref.ID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "reference id is required")
	}

	switch ref.Type {
	case models.ReferenceTypeBookSale:
		if financeType != models.FinanceTypeRevenue {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "a book sale entry must be REVENUE")
		}
		var count int64
		if err := db.Model(&models.BookSale{}).Where("id = ?", ref.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrReferenceNotFound
		}
	case models.ReferenceTypePayroll:
		if financeType != models.FinanceTypeExpense {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "a payroll entry must be EXPENSE")
		}
		var payroll models.Payroll
		if err := db.Select("id", "status").Where("id = ?", ref.ID).First(&payroll).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrReferenceNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if payroll.Status != models.PayrollStatusPaid {
			return apperrors.WithMessage(apperrors.ErrInvalidState, "only a paid payroll can have a ledger entry")
		}
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "reference type must be BOOK_SALE or PAYROLL")
	}

	q := db.Model(&models.FinanceTransaction{}).
		Where("reference_type = ? AND reference_id = ? AND is_deleted = ?", ref.Type, ref.ID, false)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var linked int64
	if err := q.Count(&linked).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if linked > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidState, "the referenced record already has a ledger entry")
	}
	return nil
}
