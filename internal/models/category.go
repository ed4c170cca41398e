package models

// FinanceType classifies both categories and ledger entries.
type FinanceType string

const (
	FinanceTypeRevenue FinanceType = "REVENUE"
	FinanceTypeExpense FinanceType = "EXPENSE"
)

// IsValid reports whether t is a known finance type.
func (t FinanceType) IsValid() bool {
	return t == FinanceTypeRevenue || t == FinanceTypeExpense
}

// Names of the categories the engines provision on first use.
const (
	SystemCategoryBookSales = "Book Sales"
	SystemCategoryPayroll   = "Payroll"
)

// FinanceCategory is a node in the revenue/expense taxonomy. Categories are
// deactivated rather than deleted so historical entries keep resolving.
type FinanceCategory struct {
	Base
	Type     FinanceType `gorm:"type:varchar(16);not null;uniqueIndex:idx_finance_categories_type_name" json:"type"`
	Name     string      `gorm:"type:varchar(100);not null;uniqueIndex:idx_finance_categories_type_name" json:"name"`
	ParentID *string     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	IsActive bool        `gorm:"not null" json:"is_active"`

	Parent *FinanceCategory `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

// TableName pins the table name used by migrations.
func (FinanceCategory) TableName() string {
	return "finance_categories"
}
