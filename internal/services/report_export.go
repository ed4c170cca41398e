package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "academy/internal/errors"
)

const (
	sheetSummary       = "Summary"
	sheetByCategory    = "By Category"
	sheetPaymentMethod = "By Payment Method"
)

// ExportReport renders a report as an xlsx workbook with a summary sheet and
// one sheet per breakdown.
func (s *reportService) ExportReport(report *ReportResult) ([]byte, error) {
	if report == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "report is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := f.NewSheet(sheetByCategory); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := f.NewSheet(sheetPaymentMethod); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := [][]interface{}{
		{"Period", report.Period.Label},
		{"Start", formatReportTime(report.Period.Start)},
		{"End", formatReportTime(report.Period.End)},
		{"Total revenue", money(report.TotalRevenue)},
		{"Total expense", money(report.TotalExpense)},
		{"Total payroll", money(report.TotalPayroll)},
		{"Net", money(report.Net)},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return nil, err
	}

	categories := [][]interface{}{{"Category ID", "Name", "Type", "Total"}}
	for _, c := range report.ByCategory {
		categories = append(categories, []interface{}{c.CategoryID, c.Name, string(c.Type), money(c.Total)})
	}
	if err := writeRows(f, sheetByCategory, categories); err != nil {
		return nil, err
	}

	methods := [][]interface{}{{"Payment method", "Total revenue", "Total expense"}}
	for _, m := range report.ByPaymentMethod {
		methods = append(methods, []interface{}{string(m.Method), money(m.TotalRevenue), money(m.TotalExpense)})
	}
	if err := writeRows(f, sheetPaymentMethod, methods); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// money writes amounts as numbers so spreadsheet formulas work on them.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func formatReportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
