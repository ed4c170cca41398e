package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Book is a textbook the academy sells. CostPrice is optional; sales of a
// book without one assume zero cost.
type Book struct {
	Base
	Title     string              `gorm:"not null" json:"title"`
	SKU       string              `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku"`
	SalePrice decimal.Decimal     `gorm:"type:decimal(18,2);not null" json:"sale_price"`
	CostPrice decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"cost_price"`
	IsActive  bool                `gorm:"not null" json:"is_active"`
}

// BookSale is one checkout of one or more books. TotalAmount and
// ProfitAmount are derived from the items at write time.
type BookSale struct {
	Base
	SoldAt          time.Time       `gorm:"not null;index" json:"sold_at"`
	CustomerName    string          `json:"customer_name"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(16);not null" json:"payment_method"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	ProfitAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"profit_amount"`
	CreatedByUserID string          `gorm:"type:uuid;not null" json:"created_by_user_id"`

	Items     []BookSaleItem `gorm:"foreignKey:SaleID" json:"items"`
	CreatedBy *User          `gorm:"foreignKey:CreatedByUserID" json:"-"`
}

// BookSaleItem is one line of a sale. LineTotal is never stored.
type BookSaleItem struct {
	Base
	SaleID    string          `gorm:"type:uuid;not null;index" json:"sale_id"`
	BookID    string          `gorm:"type:uuid;not null;index" json:"book_id"`
	Qty       int             `gorm:"not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"-" json:"line_total"`

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

// ComputeLineTotal sets LineTotal to qty × unit price.
func (i *BookSaleItem) ComputeLineTotal() {
	i.LineTotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// AfterFind fills in the computed line total on every load.
func (i *BookSaleItem) AfterFind(tx *gorm.DB) error {
	i.ComputeLineTotal()
	return nil
}
