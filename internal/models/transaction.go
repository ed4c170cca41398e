package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how money moved for an entry, sale, or payroll.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "CASH"
	PaymentMethodBank  PaymentMethod = "BANK"
	PaymentMethodCard  PaymentMethod = "CARD"
	PaymentMethodOther PaymentMethod = "OTHER"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// ReferenceType is the discriminator of a ledger entry's link to the record
// that produced it.
type ReferenceType string

const (
	ReferenceTypeBookSale ReferenceType = "BOOK_SALE"
	ReferenceTypePayroll  ReferenceType = "PAYROLL"
)

// IsValid reports whether t is a known reference type.
func (t ReferenceType) IsValid() bool {
	return t == ReferenceTypeBookSale || t == ReferenceTypePayroll
}

// Reference is a tagged link from a ledger entry to a BookSale or Payroll.
type Reference struct {
	Type ReferenceType `json:"type"`
	ID   string        `json:"id"`
}

// FinanceTransaction is one ledger entry. Rows are soft-deleted through
// IsDeleted and never come back.
type FinanceTransaction struct {
	Base
	Type            FinanceType     `gorm:"type:varchar(16);not null;index" json:"type"`
	CategoryID      string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(16);not null" json:"payment_method"`
	OccurredAt      time.Time       `gorm:"not null;index" json:"occurred_at"`
	Note            string          `json:"note"`
	ReferenceType   *ReferenceType  `gorm:"type:varchar(16);index:idx_finance_transactions_reference" json:"reference_type,omitempty"`
	ReferenceID     *string         `gorm:"type:uuid;index:idx_finance_transactions_reference" json:"reference_id,omitempty"`
	CreatedByUserID string          `gorm:"type:uuid;not null" json:"created_by_user_id"`
	IsDeleted       bool            `gorm:"not null;index" json:"-"`

	Category *FinanceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName pins the table name used by migrations.
func (FinanceTransaction) TableName() string {
	return "finance_transactions"
}

// Reference returns the entry's link, or nil for a manual entry.
func (t *FinanceTransaction) Reference() *Reference {
	if t.ReferenceType == nil || t.ReferenceID == nil {
		return nil
	}
	return &Reference{Type: *t.ReferenceType, ID: *t.ReferenceID}
}

// SetReference stores ref in the discriminator/id column pair; nil clears both.
func (t *FinanceTransaction) SetReference(ref *Reference) {
	if ref == nil {
		t.ReferenceType = nil
		t.ReferenceID = nil
		return
	}
	refType, refID := ref.Type, ref.ID
	t.ReferenceType = &refType
	t.ReferenceID = &refID
}
