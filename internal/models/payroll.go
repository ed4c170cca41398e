package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus is the lifecycle state of a monthly payroll row.
type PayrollStatus string

const (
	PayrollStatusDraft     PayrollStatus = "DRAFT"
	PayrollStatusConfirmed PayrollStatus = "CONFIRMED"
	PayrollStatusPaid      PayrollStatus = "PAID"
)

// IsValid reports whether s is a known payroll status.
func (s PayrollStatus) IsValid() bool {
	switch s {
	case PayrollStatusDraft, PayrollStatusConfirmed, PayrollStatusPaid:
		return true
	}
	return false
}

func (s PayrollStatus) rank() int {
	switch s {
	case PayrollStatusDraft:
		return 0
	case PayrollStatusConfirmed:
		return 1
	case PayrollStatusPaid:
		return 2
	}
	return -1
}

// CanMoveTo reports whether a payroll in state s may be put in state next.
// Transitions only go forward and PAID is terminal; staying put is allowed
// for non-terminal states.
func (s PayrollStatus) CanMoveTo(next PayrollStatus) bool {
	if s == PayrollStatusPaid || !next.IsValid() {
		return false
	}
	return next.rank() >= s.rank()
}

// Payroll is one teacher's pay for one month.
type Payroll struct {
	Base
	TeacherUserID   string          `gorm:"type:uuid;not null;uniqueIndex:idx_payrolls_teacher_month" json:"teacher_user_id"`
	PeriodMonth     time.Time       `gorm:"type:date;not null;uniqueIndex:idx_payrolls_teacher_month;index" json:"period_month"`
	BaseSalary      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"base_salary"`
	Bonus           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"bonus"`
	Deduction       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"deduction"`
	NetPay          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"net_pay"`
	Status          PayrollStatus   `gorm:"type:varchar(16);not null;index" json:"status"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod   *PaymentMethod  `gorm:"type:varchar(16)" json:"payment_method,omitempty"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	Note            string          `json:"note"`
	CreatedByUserID *string         `gorm:"type:uuid" json:"created_by_user_id,omitempty"`

	Teacher *User `gorm:"foreignKey:TeacherUserID" json:"teacher,omitempty"`
}

// ComputeNetPay returns base + bonus − deduction, floored at zero.
func ComputeNetPay(base, bonus, deduction decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, base.Add(bonus).Sub(deduction))
}

// MonthStart truncates t to midnight UTC on the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
