package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Type          string           `binding:"required,finance_type"`
	PaymentMethod string           `binding:"omitempty,payment_method"`
	Currency      string           `binding:"omitempty,iso4217"`
	Status        string           `binding:"omitempty,payroll_status"`
	Reference     string           `binding:"omitempty,reference_type"`
	Month         string           `binding:"omitempty,year_month"`
	Amount        *decimal.Decimal `binding:"required,gt=0"`
	Bonus         *decimal.Decimal `binding:"omitempty,gte=0"`
}

func init() {
	Register()
}

func validate(req sampleRequest) error {
	return binding.Validator.ValidateStruct(req)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRegister(t *testing.T) {
	_, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
}

func TestCustomTags(t *testing.T) {
	valid := sampleRequest{
		Type:          "REVENUE",
		PaymentMethod: "BANK",
		Currency:      "KRW",
		Status:        "CONFIRMED",
		Reference:     "BOOK_SALE",
		Month:         "2026-03",
		Amount:        dec("1500.50"),
		Bonus:         dec("0"),
	}

	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, validate(valid))
	})

	cases := map[string]func(r *sampleRequest){
		"lowercase finance type":  func(r *sampleRequest) { r.Type = "revenue" },
		"unknown payment method":  func(r *sampleRequest) { r.PaymentMethod = "CHEQUE" },
		"unknown currency":        func(r *sampleRequest) { r.Currency = "ABC" },
		"unknown payroll status":  func(r *sampleRequest) { r.Status = "VOID" },
		"unknown reference type":  func(r *sampleRequest) { r.Reference = "COURSE" },
		"malformed month":         func(r *sampleRequest) { r.Month = "2026-13" },
		"missing amount":          func(r *sampleRequest) { r.Amount = nil },
		"zero amount":             func(r *sampleRequest) { r.Amount = dec("0") },
		"negative amount":         func(r *sampleRequest) { r.Amount = dec("-10") },
		"negative optional bonus": func(r *sampleRequest) { r.Bonus = dec("-1") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			mutate(&req)
			assert.Error(t, validate(req))
		})
	}
}
