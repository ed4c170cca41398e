package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"academy/internal/logger"
	"academy/internal/middleware"
	"academy/internal/models"
	"academy/internal/services"
)

// SchedulerHandler serves the endpoints an external cron calls with the
// scheduler API key instead of a user token.
type SchedulerHandler struct {
	payrollService services.PayrollServicer
	auditService   services.AuditServicer
	loc            *time.Location
}

// NewSchedulerHandler creates a new SchedulerHandler. loc decides what the
// current month is; nil means UTC.
func NewSchedulerHandler(payrollService services.PayrollServicer, auditService services.AuditServicer, loc *time.Location) *SchedulerHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulerHandler{payrollService: payrollService, auditService: auditService, loc: loc}
}

// SchedulerGenerateRequest optionally names the month; the current month is
// used when it is empty.
type SchedulerGenerateRequest struct {
	Month string `json:"month" binding:"omitempty,year_month" example:"2026-03"`
}

// GeneratePayrolls godoc
// @Summary     Generate monthly payrolls (scheduler)
// @Description Same as POST /payrolls/generate, authenticated by X-API-Key. Defaults to the current month.
// @Tags        scheduler
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string                   true  "Scheduler API key"
// @Param       request   body   SchedulerGenerateRequest false "Month"
// @Success     200 {object} GeneratePayrollsResponse "Rows created"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /scheduler/payrolls/generate [post]
func (h *SchedulerHandler) GeneratePayrolls(c *gin.Context) {
	var req SchedulerGenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
	}

	month := models.MonthStart(time.Now().In(h.loc))
	if req.Month != "" {
		m, err := parseMonth(req.Month)
		if err != nil {
			respondWithError(c, err)
			return
		}
		month = m
	}
	label := month.Format("2006-01")

	created, err := h.payrollService.GeneratePayrolls(nil, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	source := c.GetString(middleware.ContextActor)
	if source == "" {
		source = middleware.SchedulerActor
	}
	logger.Get().Infow("scheduled payroll generation", "month", label, "created", created, "actor", source)
	h.auditService.Log("", "GENERATE_PAYROLLS", "payroll", "", c.ClientIP(),
		map[string]interface{}{"month": label, "created": created, "source": source})

	c.JSON(http.StatusOK, GeneratePayrollsResponse{Month: label, Created: created})
}
