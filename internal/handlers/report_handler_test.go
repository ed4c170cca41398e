package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"academy/internal/services"
)

// --- mock report service ---

type mockReportService struct {
	calls    []string
	exported *services.ReportResult
	exportFn func(report *services.ReportResult) ([]byte, error)
}

func (m *mockReportService) result(label string) *services.ReportResult {
	return &services.ReportResult{
		Period:          services.ReportPeriod{Label: label},
		TotalRevenue:    decimal.NewFromInt(150000),
		TotalExpense:    decimal.NewFromInt(30000),
		TotalPayroll:    decimal.NewFromInt(200000),
		Net:             decimal.NewFromInt(-80000),
		ByCategory:      []services.CategoryTotal{},
		ByPaymentMethod: []services.PaymentMethodTotal{},
	}
}

func (m *mockReportService) AllReport() (*services.ReportResult, error) {
	m.calls = append(m.calls, "all")
	return m.result("all"), nil
}

func (m *mockReportService) YearReport(year int) (*services.ReportResult, error) {
	m.calls = append(m.calls, "year")
	return m.result(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")), nil
}

func (m *mockReportService) MonthReport(year int, month time.Month) (*services.ReportResult, error) {
	m.calls = append(m.calls, "month")
	return m.result(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")), nil
}

func (m *mockReportService) DayReport(date time.Time) (*services.ReportResult, error) {
	m.calls = append(m.calls, "day")
	return m.result(date.Format(dateLayout)), nil
}

func (m *mockReportService) RangeReport(start, end time.Time) (*services.ReportResult, error) {
	m.calls = append(m.calls, "range")
	return m.result(start.Format(dateLayout) + ".." + end.Format(dateLayout)), nil
}

func (m *mockReportService) ExportReport(report *services.ReportResult) ([]byte, error) {
	m.exported = report
	if m.exportFn != nil {
		return m.exportFn(report)
	}
	return []byte("PK"), nil
}

var _ services.ReportServicer = (*mockReportService)(nil)

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("/reports", injectUserID(testUserID))
	auth.GET("/all", handler.AllReport)
	auth.GET("/yearly", handler.YearReport)
	auth.GET("/monthly", handler.MonthReport)
	auth.GET("/daily", handler.DayReport)
	auth.GET("/range", handler.RangeReport)
	auth.GET("/export", handler.ExportReport)
	return r
}

func TestReportHandler_Periods(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		call  string
		label string
	}{
		{"all", "/reports/all", "all", "all"},
		{"yearly", "/reports/yearly?year=2026", "year", "2026"},
		{"monthly", "/reports/monthly?year=2026&month=3", "month", "2026-03"},
		{"daily", "/reports/daily?date=2026-03-10", "day", "2026-03-10"},
		{"range", "/reports/range?from=2026-03-01&to=2026-03-31", "range", "2026-03-01..2026-03-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReportService{}
			r := setupReportRouter(NewReportHandler(svc))

			rec := doRequest(r, "GET", tt.path, "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if len(svc.calls) != 1 || svc.calls[0] != tt.call {
				t.Errorf("expected %s call, got %v", tt.call, svc.calls)
			}
			report := parseJSON(t, rec)["report"].(map[string]interface{})
			period := report["period"].(map[string]interface{})
			if period["label"] != tt.label {
				t.Errorf("expected label %s, got %v", tt.label, period["label"])
			}
			if report["net"] != "-80000" {
				t.Errorf("expected net -80000, got %v", report["net"])
			}
		})
	}
}

func TestReportHandler_InvalidQuery(t *testing.T) {
	paths := []string{
		"/reports/yearly",
		"/reports/yearly?year=twenty",
		"/reports/monthly?year=2026",
		"/reports/daily?date=2026-3-1",
		"/reports/range?from=2026-03-01",
		"/reports/export?year=2026&month=x",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			svc := &mockReportService{}
			r := setupReportRouter(NewReportHandler(svc))

			rec := doRequest(r, "GET", path, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			if len(svc.calls) != 0 {
				t.Errorf("expected no service call, got %v", svc.calls)
			}
		})
	}
}

func TestReportHandler_ExportReport(t *testing.T) {
	t.Run("picks the period from the query", func(t *testing.T) {
		tests := []struct {
			query string
			call  string
		}{
			{"", "all"},
			{"?year=2026", "year"},
			{"?year=2026&month=3", "month"},
			{"?date=2026-03-10", "day"},
			{"?from=2026-03-01&to=2026-03-31", "range"},
		}
		for _, tt := range tests {
			svc := &mockReportService{}
			r := setupReportRouter(NewReportHandler(svc))

			rec := doRequest(r, "GET", "/reports/export"+tt.query, "")

			if rec.Code != http.StatusOK {
				t.Fatalf("%q: expected 200, got %d", tt.query, rec.Code)
			}
			if len(svc.calls) != 1 || svc.calls[0] != tt.call {
				t.Errorf("%q: expected %s call, got %v", tt.query, tt.call, svc.calls)
			}
			if svc.exported == nil {
				t.Errorf("%q: expected the report to be exported", tt.query)
			}
		}
	})

	t.Run("writes an xlsx attachment", func(t *testing.T) {
		svc := &mockReportService{}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/export?from=2026-03-01&to=2026-03-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
			t.Errorf("unexpected content type %q", ct)
		}
		disposition := rec.Header().Get("Content-Disposition")
		if !strings.Contains(disposition, `filename="finance-report-2026-03-01_2026-03-31.xlsx"`) {
			t.Errorf("unexpected disposition %q", disposition)
		}
		if rec.Body.String() != "PK" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("hides export failures", func(t *testing.T) {
		svc := &mockReportService{
			exportFn: func(*services.ReportResult) ([]byte, error) { return nil, errors.New("disk full") },
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/export", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}
