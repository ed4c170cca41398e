package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "academy/internal/errors"
	"academy/internal/logger"
	"academy/internal/models"
)

// bookSaleService records book sales and keeps each sale's revenue entry in
// step with it.
type bookSaleService struct {
	db                 *gorm.DB
	bookService        BookServicer
	categoryService    CategoryServicer
	transactionService TransactionServicer
	defaultCurrency    string
}

// NewBookSaleService creates a new BookSaleServicer.
func NewBookSaleService(
	db *gorm.DB,
	bookService BookServicer,
	categoryService CategoryServicer,
	transactionService TransactionServicer,
	defaultCurrency string,
) BookSaleServicer {
	return &bookSaleService{
		db:                 db,
		bookService:        bookService,
		categoryService:    categoryService,
		transactionService: transactionService,
		defaultCurrency:    defaultCurrency,
	}
}

// CreateBookSale records a sale, its items, and the linked REVENUE entry for
// the sale's profit as one unit of work.
func (s *bookSaleService) CreateBookSale(userID string, input BookSaleInput) (*BookSaleResult, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one item is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method")
	}
	for _, item := range input.Items {
		if err := validateSaleItem(item); err != nil {
			return nil, err
		}
		if item.ID != "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "new sale items cannot carry an id")
		}
	}

	soldAt := input.SoldAt
	if soldAt.IsZero() {
		soldAt = time.Now()
	}
	currency := normalizeCurrency(input.Currency, s.defaultCurrency)

	var saleID string
	var costMissing bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		books, err := s.bookService.FindBooks(tx, saleItemBookIDs(input.Items))
		if err != nil {
			return err
		}

		items := make([]models.BookSaleItem, 0, len(input.Items))
		for _, in := range input.Items {
			book := books[in.BookID]
			unitPrice := book.SalePrice
			if in.UnitPrice != nil {
				unitPrice = *in.UnitPrice
			}
			items = append(items, models.BookSaleItem{BookID: in.BookID, Qty: in.Qty, UnitPrice: unitPrice})
		}

		var total, profit decimal.Decimal
		total, profit, costMissing = computeSaleTotals(items, books)

		sale := &models.BookSale{
			SoldAt:          soldAt.UTC(),
			CustomerName:    strings.TrimSpace(input.CustomerName),
			PaymentMethod:   input.PaymentMethod,
			Currency:        currency,
			TotalAmount:     total,
			ProfitAmount:    profit,
			CreatedByUserID: userID,
		}
		if err := tx.Create(sale).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		saleID = sale.ID

		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		category, err := s.categoryService.GetOrCreate(tx, models.FinanceTypeRevenue, models.SystemCategoryBookSales)
		if err != nil {
			return err
		}

		_, err = s.transactionService.CreateLinked(tx, userID, TransactionInput{
			Type:          models.FinanceTypeRevenue,
			CategoryID:    category.ID,
			Amount:        profit,
			Currency:      currency,
			PaymentMethod: sale.PaymentMethod,
			OccurredAt:    sale.SoldAt,
			Note:          bookSaleNote(sale),
			Reference:     &models.Reference{Type: models.ReferenceTypeBookSale, ID: sale.ID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("book sale recorded", "sale_id", saleID, "user_id", userID, "cost_price_missing", costMissing)

	view, err := s.GetBookSaleByID(saleID)
	if err != nil {
		return nil, err
	}
	return &BookSaleResult{Sale: view, CostPriceMissingWarning: costMissing}, nil
}

// UpdateBookSale edits a sale's header and reconciles its items against the
// payload by item id: lines without an id are added, known ids are updated,
// and lines missing from the payload are removed. A nil Items leaves the
// lines alone. Totals are recomputed with today's cost prices and pushed to
// the linked entry if it still exists.
func (s *bookSaleService) UpdateBookSale(userID, id string, input BookSaleUpdateInput) (*BookSaleResult, error) {
	if input.Items != nil && len(input.Items) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a sale must keep at least one item")
	}
	if input.PaymentMethod != nil && !input.PaymentMethod.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method")
	}
	for _, item := range input.Items {
		if err := validateSaleItem(item); err != nil {
			return nil, err
		}
	}

	var costMissing bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sale models.BookSale
		if err := tx.Preload("Items").Where("id = ?", id).First(&sale).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBookSaleNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if input.SoldAt != nil {
			sale.SoldAt = input.SoldAt.UTC()
		}
		if input.CustomerName != nil {
			sale.CustomerName = strings.TrimSpace(*input.CustomerName)
		}
		if input.PaymentMethod != nil {
			sale.PaymentMethod = *input.PaymentMethod
		}
		if input.Currency != nil {
			sale.Currency = normalizeCurrency(*input.Currency, sale.Currency)
		}

		items := sale.Items
		if input.Items != nil {
			var err error
			items, err = s.reconcileItems(tx, &sale, input.Items)
			if err != nil {
				return err
			}
		}

		books, err := s.bookService.FindBooks(tx, saleItemBookIDsFromModels(items))
		if err != nil {
			return err
		}
		var total, profit decimal.Decimal
		total, profit, costMissing = computeSaleTotals(items, books)

		if err := tx.Model(&models.BookSale{}).Where("id = ?", sale.ID).Updates(map[string]interface{}{
			"sold_at":        sale.SoldAt,
			"customer_name":  sale.CustomerName,
			"payment_method": sale.PaymentMethod,
			"currency":       sale.Currency,
			"total_amount":   total,
			"profit_amount":  profit,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		ref := models.Reference{Type: models.ReferenceTypeBookSale, ID: sale.ID}
		linked, err := s.transactionService.FindLinked(tx, ref)
		if err != nil {
			return err
		}
		if linked == nil {
			logger.Get().Warnw("book sale has no ledger entry to sync",
				"sale_id", sale.ID,
				"user_id", userID,
			)
			return nil
		}
		return s.transactionService.SyncLinked(tx, linked, LinkedSyncFields{
			Amount:        profit,
			OccurredAt:    sale.SoldAt,
			Note:          bookSaleNote(&sale),
			PaymentMethod: sale.PaymentMethod,
			Currency:      sale.Currency,
		})
	})
	if err != nil {
		return nil, err
	}

	view, err := s.GetBookSaleByID(id)
	if err != nil {
		return nil, err
	}
	return &BookSaleResult{Sale: view, CostPriceMissingWarning: costMissing}, nil
}

// reconcileItems applies the desired item list to the stored one and returns
// the resulting lines.
func (s *bookSaleService) reconcileItems(tx *gorm.DB, sale *models.BookSale, desired []BookSaleItemInput) ([]models.BookSaleItem, error) {
	current := make(map[string]models.BookSaleItem, len(sale.Items))
	for _, item := range sale.Items {
		current[item.ID] = item
	}

	books, err := s.bookService.FindBooks(tx, saleItemBookIDs(desired))
	if err != nil {
		return nil, err
	}

	kept := make(map[string]bool, len(desired))
	result := make([]models.BookSaleItem, 0, len(desired))
	for _, in := range desired {
		book := books[in.BookID]

		if in.ID == "" {
			unitPrice := book.SalePrice
			if in.UnitPrice != nil {
				unitPrice = *in.UnitPrice
			}
			item := models.BookSaleItem{SaleID: sale.ID, BookID: in.BookID, Qty: in.Qty, UnitPrice: unitPrice}
			if err := tx.Create(&item).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result = append(result, item)
			continue
		}

		existing, ok := current[in.ID]
		if !ok {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item "+in.ID+" does not belong to this sale")
		}
		if kept[in.ID] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item "+in.ID+" appears more than once")
		}
		kept[in.ID] = true

		unitPrice := existing.UnitPrice
		switch {
		case in.UnitPrice != nil:
			unitPrice = *in.UnitPrice
		case in.BookID != existing.BookID:
			unitPrice = book.SalePrice
		}
		if err := tx.Model(&models.BookSaleItem{}).Where("id = ?", in.ID).Updates(map[string]interface{}{
			"book_id":    in.BookID,
			"qty":        in.Qty,
			"unit_price": unitPrice,
		}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		existing.BookID = in.BookID
		existing.Qty = in.Qty
		existing.UnitPrice = unitPrice
		result = append(result, existing)
	}

	var removed []string
	for itemID := range current {
		if !kept[itemID] {
			removed = append(removed, itemID)
		}
	}
	if len(removed) > 0 {
		if err := tx.Where("sale_id = ? AND id IN ?", sale.ID, removed).Delete(&models.BookSaleItem{}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return result, nil
}

// ListBookSales returns sales in the optional sold_at window, newest first.
func (s *bookSaleService) ListBookSales(from, to *time.Time) ([]BookSaleView, error) {
	q := s.salesWithDetails()
	if from != nil {
		q = q.Where("sold_at >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("sold_at <= ?", to.UTC())
	}

	var sales []models.BookSale
	if err := q.Order("sold_at DESC, id DESC").Find(&sales).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views := make([]BookSaleView, 0, len(sales))
	for i := range sales {
		views = append(views, newBookSaleView(&sales[i]))
	}
	return views, nil
}

// GetBookSaleByID retrieves a sale with its items and creator.
func (s *bookSaleService) GetBookSaleByID(id string) (*BookSaleView, error) {
	var sale models.BookSale
	if err := s.salesWithDetails().Where("id = ?", id).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBookSaleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	view := newBookSaleView(&sale)
	return &view, nil
}

func (s *bookSaleService) salesWithDetails() *gorm.DB {
	return s.db.Model(&models.BookSale{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Items.Book").
		Preload("CreatedBy")
}

func newBookSaleView(sale *models.BookSale) BookSaleView {
	view := BookSaleView{
		ID:            sale.ID,
		SoldAt:        sale.SoldAt,
		CustomerName:  sale.CustomerName,
		PaymentMethod: sale.PaymentMethod,
		Currency:      sale.Currency,
		TotalAmount:   sale.TotalAmount,
		ProfitAmount:  sale.ProfitAmount,
		CreatedBy:     sale.CreatedBy.Summary(),
		Items:         make([]BookSaleItemView, 0, len(sale.Items)),
	}
	for _, item := range sale.Items {
		line := BookSaleItemView{
			ID:        item.ID,
			BookID:    item.BookID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
		if item.Book != nil {
			line.BookTitle = item.Book.Title
			line.BookSKU = item.Book.SKU
		}
		view.Items = append(view.Items, line)
	}
	return view
}

// computeSaleTotals returns the gross total, the profit, and whether any
// line's book had no cost price. A missing cost counts as zero, which
// overstates profit; callers surface that as a warning.
func computeSaleTotals(items []models.BookSaleItem, books map[string]models.Book) (total, profit decimal.Decimal, costMissing bool) {
	total = decimal.Zero
	profit = decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Qty))
		total = total.Add(item.UnitPrice.Mul(qty))

		cost := decimal.Zero
		if book, ok := books[item.BookID]; ok && book.CostPrice.Valid {
			cost = book.CostPrice.Decimal
		} else {
			costMissing = true
		}
		profit = profit.Add(item.UnitPrice.Sub(cost).Mul(qty))
	}
	return total, profit, costMissing
}

func validateSaleItem(item BookSaleItemInput) error {
	if item.BookID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "book_id is required")
	}
	if item.Qty <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "qty must be greater than zero")
	}
	if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unit_price cannot be negative")
	}
	return nil
}

func saleItemBookIDs(items []BookSaleItemInput) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.BookID)
	}
	return ids
}

func saleItemBookIDsFromModels(items []models.BookSaleItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.BookID)
	}
	return ids
}

func bookSaleNote(sale *models.BookSale) string {
	if sale.CustomerName == "" {
		return "Book sale"
	}
	return "Book sale: " + sale.CustomerName
}

func normalizeCurrency(currency, fallback string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return fallback
	}
	return currency
}
