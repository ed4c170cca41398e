package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"academy/internal/models"
	"academy/internal/pagination"
)

// UserServicer defines the read-only contract the finance core needs from
// the user registry.
type UserServicer interface {
	GetUserByID(id string) (*models.User, error)
	ListActiveTeachers(db *gorm.DB) ([]models.User, error)
}

// CategoryUpdateFields holds the optional fields for a category update.
// An empty ParentID clears the parent.
type CategoryUpdateFields struct {
	Name     *string
	ParentID *string
	IsActive *bool
}

// CategoryListItem is a category with its parent's name resolved.
type CategoryListItem struct {
	ID         string             `json:"id"`
	Type       models.FinanceType `json:"type"`
	Name       string             `json:"name"`
	ParentID   *string            `json:"parent_id"`
	ParentName *string            `json:"parent_name"`
	IsActive   bool               `json:"is_active"`
}

// CategoryServicer defines the contract for the revenue/expense taxonomy.
type CategoryServicer interface {
	CreateCategory(financeType models.FinanceType, name string, parentID *string) (*models.FinanceCategory, error)
	ListCategories(financeType *models.FinanceType) ([]CategoryListItem, error)
	GetCategoryByID(id string) (*models.FinanceCategory, error)
	UpdateCategory(id string, fields CategoryUpdateFields) (*models.FinanceCategory, error)
	GetOrCreate(tx *gorm.DB, financeType models.FinanceType, name string) (*models.FinanceCategory, error)
}

// TransactionInput carries the fields of a new ledger entry. A zero
// OccurredAt means now and an empty Currency means the default currency.
type TransactionInput struct {
	Type          models.FinanceType
	CategoryID    string
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod models.PaymentMethod
	OccurredAt    time.Time
	Note          string
	Reference     *models.Reference
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	Type          *models.FinanceType
	CategoryID    *string
	PaymentMethod *models.PaymentMethod
	Query         string
}

// TransactionUpdateFields holds the optional fields for a ledger entry update.
// Type is deliberately absent: it cannot change after creation.
type TransactionUpdateFields struct {
	CategoryID     *string
	Amount         *decimal.Decimal
	Currency       *string
	PaymentMethod  *models.PaymentMethod
	OccurredAt     *time.Time
	Note           *string
	Reference      *models.Reference
	ClearReference bool
}

// LinkedSyncFields are the values a derived entry copies from its source.
type LinkedSyncFields struct {
	Amount        decimal.Decimal
	OccurredAt    time.Time
	Note          string
	PaymentMethod models.PaymentMethod
	Currency      string
}

// TransactionServicer defines the contract for the ledger.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.FinanceTransaction, error)
	GetTransactionByID(id string) (*models.FinanceTransaction, error)
	ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.FinanceTransaction], error)
	UpdateTransaction(id string, fields TransactionUpdateFields) (*models.FinanceTransaction, error)
	DeleteTransaction(id string) error

	// CreateLinked, FindLinked and SyncLinked run inside the caller's
	// database transaction.
	CreateLinked(tx *gorm.DB, userID string, input TransactionInput) (*models.FinanceTransaction, error)
	FindLinked(tx *gorm.DB, ref models.Reference) (*models.FinanceTransaction, error)
	SyncLinked(tx *gorm.DB, txn *models.FinanceTransaction, fields LinkedSyncFields) error
}

// BookInput carries the fields of a new book.
type BookInput struct {
	Title     string
	SKU       string
	SalePrice decimal.Decimal
	CostPrice *decimal.Decimal
}

// BookUpdateFields holds the optional fields for a book update.
type BookUpdateFields struct {
	Title          *string
	SalePrice      *decimal.Decimal
	CostPrice      *decimal.Decimal
	ClearCostPrice bool
	IsActive       *bool
}

// BookServicer defines the contract for the book registry.
type BookServicer interface {
	CreateBook(input BookInput) (*models.Book, error)
	ListBooks(activeOnly bool) ([]models.Book, error)
	UpdateBook(id string, fields BookUpdateFields) (*models.Book, error)
	FindBooks(db *gorm.DB, ids []string) (map[string]models.Book, error)
}

// BookSaleItemInput is one requested line of a sale. ID is set on update for
// lines that already exist; a nil UnitPrice means the book's sale price.
type BookSaleItemInput struct {
	ID        string
	BookID    string
	Qty       int
	UnitPrice *decimal.Decimal
}

// BookSaleInput carries a new sale.
type BookSaleInput struct {
	SoldAt        time.Time
	CustomerName  string
	PaymentMethod models.PaymentMethod
	Currency      string
	Items         []BookSaleItemInput
}

// BookSaleUpdateInput carries a sale update. Header fields are optional;
// Items is the complete desired item list.
type BookSaleUpdateInput struct {
	SoldAt        *time.Time
	CustomerName  *string
	PaymentMethod *models.PaymentMethod
	Currency      *string
	Items         []BookSaleItemInput
}

// BookSaleItemView is an item line with its book resolved.
type BookSaleItemView struct {
	ID        string          `json:"id"`
	BookID    string          `json:"book_id"`
	BookTitle string          `json:"book_title"`
	BookSKU   string          `json:"book_sku"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// BookSaleView is the denormalized read model of a sale.
type BookSaleView struct {
	ID            string               `json:"id"`
	SoldAt        time.Time            `json:"sold_at"`
	CustomerName  string               `json:"customer_name"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Currency      string               `json:"currency"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	ProfitAmount  decimal.Decimal      `json:"profit_amount"`
	CreatedBy     *models.UserSummary  `json:"created_by"`
	Items         []BookSaleItemView   `json:"items"`
}

// BookSaleResult is a saved sale plus the missing-cost warning.
type BookSaleResult struct {
	Sale                    *BookSaleView `json:"sale"`
	CostPriceMissingWarning bool          `json:"cost_price_missing_warning"`
}

// BookSaleServicer defines the contract for recording book sales.
type BookSaleServicer interface {
	CreateBookSale(userID string, input BookSaleInput) (*BookSaleResult, error)
	UpdateBookSale(userID, id string, input BookSaleUpdateInput) (*BookSaleResult, error)
	ListBookSales(from, to *time.Time) ([]BookSaleView, error)
	GetBookSaleByID(id string) (*BookSaleView, error)
}

// PayrollUpdateFields holds the optional fields for a payroll update.
type PayrollUpdateFields struct {
	BaseSalary *decimal.Decimal
	Bonus      *decimal.Decimal
	Deduction  *decimal.Decimal
	Status     *models.PayrollStatus
	Currency   *string
	Note       *string
}

// PayrollServicer defines the contract for monthly teacher payroll.
type PayrollServicer interface {
	GeneratePayrolls(userID *string, month time.Time) (int, error)
	ListPayrolls(month *time.Time) ([]models.Payroll, error)
	GetPayrollByID(id string) (*models.Payroll, error)
	UpdatePayroll(id string, fields PayrollUpdateFields) (*models.Payroll, error)
	PayPayroll(userID, id string, method models.PaymentMethod) (*models.Payroll, error)
}

// ReportPeriod names the window a report covers. Start and End are
// inclusive instants; an all-time report has neither.
type ReportPeriod struct {
	Label string     `json:"label"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// CategoryTotal is one row of a report's category breakdown.
type CategoryTotal struct {
	CategoryID string             `json:"category_id"`
	Name       string             `json:"name"`
	Type       models.FinanceType `json:"type"`
	Total      decimal.Decimal    `json:"total"`
}

// PaymentMethodTotal is one row of a report's payment method breakdown.
type PaymentMethodTotal struct {
	Method       models.PaymentMethod `json:"method"`
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
	TotalExpense decimal.Decimal      `json:"total_expense"`
}

// ReportResult is a financial summary for one period.
type ReportResult struct {
	Period          ReportPeriod         `json:"period"`
	TotalRevenue    decimal.Decimal      `json:"total_revenue"`
	TotalExpense    decimal.Decimal      `json:"total_expense"`
	TotalPayroll    decimal.Decimal      `json:"total_payroll"`
	Net             decimal.Decimal      `json:"net"`
	ByCategory      []CategoryTotal      `json:"by_category"`
	ByPaymentMethod []PaymentMethodTotal `json:"by_payment_method"`
}

// ReportServicer defines the contract for financial reports.
type ReportServicer interface {
	AllReport() (*ReportResult, error)
	YearReport(year int) (*ReportResult, error)
	MonthReport(year int, month time.Month) (*ReportResult, error)
	DayReport(date time.Time) (*ReportResult, error)
	RangeReport(start, end time.Time) (*ReportResult, error)
	ExportReport(report *ReportResult) ([]byte, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
