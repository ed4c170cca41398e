package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "academy/internal/errors"
	"academy/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves financial summaries.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// AllReport godoc
// @Summary     All-time report
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ReportResult "Report"
// @Router      /reports/all [get]
func (h *ReportHandler) AllReport(c *gin.Context) {
	h.respond(c, h.reportService.AllReport)
}

// YearReport godoc
// @Summary     Yearly report
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       year query int true "Year"
// @Success     200 {object} services.ReportResult "Report"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Router      /reports/yearly [get]
func (h *ReportHandler) YearReport(c *gin.Context) {
	year, err := queryInt(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respond(c, func() (*services.ReportResult, error) { return h.reportService.YearReport(year) })
}

// MonthReport godoc
// @Summary     Monthly report
// @Description Payroll is counted by payroll month.
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int true "Year"
// @Param       month query int true "Month (1-12)"
// @Success     200 {object} services.ReportResult "Report"
// @Failure     400 {object} ErrorResponse "Invalid year or month"
// @Router      /reports/monthly [get]
func (h *ReportHandler) MonthReport(c *gin.Context) {
	year, err := queryInt(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := queryInt(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respond(c, func() (*services.ReportResult, error) {
		return h.reportService.MonthReport(year, time.Month(month))
	})
}

// DayReport godoc
// @Summary     Daily report
// @Description The payroll total covers the whole month the day falls in, so payroll paid that day appears both as an expense and in total_payroll.
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       date query string true "Day (YYYY-MM-DD)"
// @Success     200 {object} services.ReportResult "Report"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Router      /reports/daily [get]
func (h *ReportHandler) DayReport(c *gin.Context) {
	date, err := queryDate(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respond(c, func() (*services.ReportResult, error) { return h.reportService.DayReport(date) })
}

// RangeReport godoc
// @Summary     Date range report
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       from query string true "First day (YYYY-MM-DD)"
// @Param       to   query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success     200 {object} services.ReportResult "Report"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Router      /reports/range [get]
func (h *ReportHandler) RangeReport(c *gin.Context) {
	from, to, err := queryRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respond(c, func() (*services.ReportResult, error) { return h.reportService.RangeReport(from, to) })
}

// ExportReport godoc
// @Summary     Export a report as xlsx
// @Description Picks the period from the query: from/to for a range, date for a day, year and month for a month, year alone for a year, nothing for all time.
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       from  query string false "First day (YYYY-MM-DD)"
// @Param       to    query string false "Last day (YYYY-MM-DD)"
// @Param       date  query string false "Day (YYYY-MM-DD)"
// @Param       year  query int    false "Year"
// @Param       month query int    false "Month (1-12)"
// @Success     200 {file} file "Workbook"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Router      /reports/export [get]
func (h *ReportHandler) ExportReport(c *gin.Context) {
	report, err := h.reportForQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.reportService.ExportReport(report)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("finance-report-%s.xlsx", strings.ReplaceAll(report.Period.Label, "..", "_"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ReportHandler) reportForQuery(c *gin.Context) (*services.ReportResult, error) {
	switch {
	case c.Query("from") != "" || c.Query("to") != "":
		from, to, err := queryRange(c)
		if err != nil {
			return nil, err
		}
		return h.reportService.RangeReport(from, to)
	case c.Query("date") != "":
		date, err := queryDate(c, "date")
		if err != nil {
			return nil, err
		}
		return h.reportService.DayReport(date)
	case c.Query("year") != "":
		year, err := queryInt(c, "year")
		if err != nil {
			return nil, err
		}
		if c.Query("month") == "" {
			return h.reportService.YearReport(year)
		}
		month, err := queryInt(c, "month")
		if err != nil {
			return nil, err
		}
		return h.reportService.MonthReport(year, time.Month(month))
	default:
		return h.reportService.AllReport()
	}
}

func (h *ReportHandler) respond(c *gin.Context, build func() (*services.ReportResult, error)) {
	report, err := build()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func queryInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, name+" must be a number")
	}
	return v, nil
}

func queryDate(c *gin.Context, name string) (time.Time, error) {
	t, err := time.Parse(dateLayout, c.Query(name))
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, name+" must be YYYY-MM-DD")
	}
	return t, nil
}

func queryRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
