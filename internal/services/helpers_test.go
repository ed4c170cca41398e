package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"academy/internal/logger"
)

func init() {
	logger.Init("test")
}

// testServices wires every service against one database the way the router does.
type testServices struct {
	users        UserServicer
	categories   CategoryServicer
	transactions TransactionServicer
	books        BookServicer
	sales        BookSaleServicer
	payrolls     PayrollServicer
	reports      ReportServicer
}

func newTestServices(db *gorm.DB) testServices {
	users := NewUserService(db)
	categories := NewCategoryService(db)
	transactions := NewTransactionService(db, "KRW")
	books := NewBookService(db)
	return testServices{
		users:        users,
		categories:   categories,
		transactions: transactions,
		books:        books,
		sales:        NewBookSaleService(db, books, categories, transactions, "KRW"),
		payrolls:     NewPayrollService(db, users, categories, transactions, "KRW"),
		reports:      NewReportService(db, time.UTC),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}
