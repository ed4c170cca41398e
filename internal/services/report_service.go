package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "academy/internal/errors"
	"academy/internal/models"
)

// typeTotal is a scanned (type, sum) aggregate row.
type typeTotal struct {
	Type  models.FinanceType
	Total decimal.Decimal
}

// reportService builds financial summaries from the ledger and the payroll
// table. It never writes.
type reportService struct {
	db  *gorm.DB
	loc *time.Location
}

// NewReportService creates a new ReportServicer. Day boundaries are taken
// in loc; a nil loc means UTC.
func NewReportService(db *gorm.DB, loc *time.Location) ReportServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{db: db, loc: loc}
}

// AllReport summarizes every non-deleted entry and every payroll.
func (s *reportService) AllReport() (*ReportResult, error) {
	return s.build(ReportPeriod{Label: "all"}, nil, nil)
}

// YearReport summarizes one calendar year.
func (s *reportService) YearReport(year int) (*ReportResult, error) {
	if year < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year")
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	return s.build(ReportPeriod{Label: fmt.Sprintf("%04d", year)}, &start, &end)
}

// MonthReport summarizes one calendar month.
func (s *reportService) MonthReport(year int, month time.Month) (*ReportResult, error) {
	if year < 1 || month < time.January || month > time.December {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year or month")
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return s.build(ReportPeriod{Label: fmt.Sprintf("%04d-%02d", year, int(month))}, &start, &end)
}

// DayReport summarizes one calendar day. Its payroll total still covers the
// whole month the day falls in, so payroll paid that month shows up both
// as a ledger expense (on the pay day) and in total_payroll.
func (s *reportService) DayReport(date time.Time) (*ReportResult, error) {
	start := s.dayStart(date)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return s.build(ReportPeriod{Label: start.Format("2006-01-02")}, &start, &end)
}

// RangeReport summarizes the calendar days from start through end, both
// inclusive.
func (s *reportService) RangeReport(start, end time.Time) (*ReportResult, error) {
	from := s.dayStart(start)
	to := s.dayStart(end).AddDate(0, 0, 1).Add(-time.Nanosecond)
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must not be before start date")
	}
	label := from.Format("2006-01-02") + ".." + to.Format("2006-01-02")
	return s.build(ReportPeriod{Label: label}, &from, &to)
}

// dayStart takes the calendar date of t as written and returns its midnight
// in the report location.
func (s *reportService) dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

func (s *reportService) build(period ReportPeriod, start, end *time.Time) (*ReportResult, error) {
	period.Start = start
	period.End = end

	ledger := func() *gorm.DB {
		q := s.db.Table("finance_transactions AS t").Where("t.is_deleted = ?", false)
		if start != nil {
			q = q.Where("t.occurred_at >= ?", start.UTC())
		}
		if end != nil {
			q = q.Where("t.occurred_at <= ?", end.UTC())
		}
		return q
	}

	var byType []typeTotal
	if err := ledger().
		Select("t.type AS type, COALESCE(SUM(t.amount), 0) AS total").
		Group("t.type").
		Scan(&byType).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ReportResult{
		Period:          period,
		TotalRevenue:    decimal.Zero,
		TotalExpense:    decimal.Zero,
		ByCategory:      []CategoryTotal{},
		ByPaymentMethod: []PaymentMethodTotal{},
	}
	for _, row := range byType {
		switch row.Type {
		case models.FinanceTypeRevenue:
			result.TotalRevenue = row.Total
		case models.FinanceTypeExpense:
			result.TotalExpense = row.Total
		}
	}

	if err := ledger().
		Select("t.category_id AS category_id, c.name AS name, c.type AS type, COALESCE(SUM(t.amount), 0) AS total").
		Joins("JOIN finance_categories AS c ON c.id = t.category_id").
		Group("t.category_id, c.name, c.type").
		Order("c.type DESC, c.name ASC").
		Scan(&result.ByCategory).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := ledger().
		Select("t.payment_method AS method, "+
			"COALESCE(SUM(CASE WHEN t.type = ? THEN t.amount ELSE 0 END), 0) AS total_revenue, "+
			"COALESCE(SUM(CASE WHEN t.type = ? THEN t.amount ELSE 0 END), 0) AS total_expense",
			models.FinanceTypeRevenue, models.FinanceTypeExpense).
		Group("t.payment_method").
		Order("t.payment_method ASC").
		Scan(&result.ByPaymentMethod).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	payroll, err := s.payrollTotal(start, end)
	if err != nil {
		return nil, err
	}
	result.TotalPayroll = payroll
	result.Net = result.TotalRevenue.Sub(result.TotalExpense).Sub(payroll)

	return result, nil
}

// payrollTotal sums net pay over every payroll month touched by the range,
// whatever the payroll's status.
func (s *reportService) payrollTotal(start, end *time.Time) (decimal.Decimal, error) {
	q := s.db.Model(&models.Payroll{})
	if start != nil {
		q = q.Where("period_month >= ?", models.MonthStart(*start))
	}
	if end != nil {
		q = q.Where("period_month <= ?", models.MonthStart(*end))
	}

	var row typeTotal
	if err := q.Select("COALESCE(SUM(net_pay), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.Total, nil
}
