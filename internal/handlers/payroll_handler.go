package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"academy/internal/models"
	"academy/internal/services"
)

// PayrollHandler handles teacher payroll requests.
type PayrollHandler struct {
	payrollService services.PayrollServicer
	auditService   services.AuditServicer
}

// NewPayrollHandler creates a new PayrollHandler.
func NewPayrollHandler(payrollService services.PayrollServicer, auditService services.AuditServicer) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService, auditService: auditService}
}

// GeneratePayrollsRequest names the month to generate, as YYYY-MM.
type GeneratePayrollsRequest struct {
	Month string `json:"month" binding:"required,year_month" example:"2026-03"`
}

// GeneratePayrollsResponse reports how many payrolls were created.
type GeneratePayrollsResponse struct {
	Month   string `json:"month"`
	Created int    `json:"created"`
}

// UpdatePayrollRequest represents the request payload for editing a payroll.
type UpdatePayrollRequest struct {
	BaseSalary *decimal.Decimal      `json:"base_salary" swaggertype:"string"`
	Bonus      *decimal.Decimal      `json:"bonus" swaggertype:"string"`
	Deduction  *decimal.Decimal      `json:"deduction" swaggertype:"string"`
	Status     *models.PayrollStatus `json:"status" binding:"omitempty,payroll_status"`
	Currency   *string               `json:"currency" binding:"omitempty,iso4217"`
	Note       *string               `json:"note" binding:"omitempty,max=500"`
}

// PayPayrollRequest carries how the payroll was paid.
type PayPayrollRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required,payment_method"`
}

// GeneratePayrolls godoc
// @Summary     Generate monthly payrolls
// @Description Creates a zeroed DRAFT payroll for every active teacher without one for the month. Safe to repeat.
// @Tags        payrolls
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GeneratePayrollsRequest true "Month"
// @Success     200 {object} GeneratePayrollsResponse "Rows created"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /payrolls/generate [post]
func (h *PayrollHandler) GeneratePayrolls(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GeneratePayrollsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.payrollService.GeneratePayrolls(&userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "GENERATE_PAYROLLS", "payroll", "", c.ClientIP(),
		map[string]interface{}{"month": req.Month, "created": created})

	c.JSON(http.StatusOK, GeneratePayrollsResponse{Month: req.Month, Created: created})
}

// ListPayrolls godoc
// @Summary     List payrolls
// @Tags        payrolls
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Only this month (YYYY-MM)"
// @Success     200 {array} models.Payroll "Payrolls, newest month first"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Router      /payrolls [get]
func (h *PayrollHandler) ListPayrolls(c *gin.Context) {
	var month *time.Time
	if v := c.Query("month"); v != "" {
		m, err := parseMonth(v)
		if err != nil {
			respondWithError(c, err)
			return
		}
		month = &m
	}

	payrolls, err := h.payrollService.ListPayrolls(month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payrolls": payrolls})
}

// GetPayrollByID godoc
// @Summary     Get a payroll
// @Tags        payrolls
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payroll ID"
// @Success     200 {object} models.Payroll "Payroll"
// @Failure     404 {object} ErrorResponse "Payroll not found"
// @Router      /payrolls/{id} [get]
func (h *PayrollHandler) GetPayrollByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payroll, err := h.payrollService.GetPayrollByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}

// UpdatePayroll godoc
// @Summary     Update a payroll
// @Description Edit amounts, note, currency or move DRAFT to CONFIRMED. Net pay is recomputed. Paid payrolls cannot change.
// @Tags        payrolls
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Payroll ID"
// @Param       request body UpdatePayrollRequest true "Fields to update"
// @Success     200 {object} models.Payroll "Updated payroll"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payroll not found"
// @Failure     409 {object} ErrorResponse "Payroll already paid or invalid status change"
// @Router      /payrolls/{id} [put]
func (h *PayrollHandler) UpdatePayroll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	payroll, err := h.payrollService.UpdatePayroll(id, services.PayrollUpdateFields{
		BaseSalary: req.BaseSalary,
		Bonus:      req.Bonus,
		Deduction:  req.Deduction,
		Status:     req.Status,
		Currency:   req.Currency,
		Note:       req.Note,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PAYROLL", "payroll", payroll.ID, c.ClientIP(),
		map[string]interface{}{"net_pay": payroll.NetPay.String(), "status": payroll.Status})

	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}

// PayPayroll godoc
// @Summary     Pay a payroll
// @Description Marks the payroll PAID and books its net pay as an EXPENSE under "Payroll", atomically. Paying twice fails.
// @Tags        payrolls
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Payroll ID"
// @Param       request body PayPayrollRequest true "Payment method"
// @Success     200 {object} models.Payroll "Paid payroll"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payroll not found"
// @Failure     409 {object} ErrorResponse "Payroll already paid"
// @Router      /payrolls/{id}/pay [post]
func (h *PayrollHandler) PayPayroll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	payroll, err := h.payrollService.PayPayroll(userID, id, req.PaymentMethod)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PAY_PAYROLL", "payroll", payroll.ID, c.ClientIP(),
		map[string]interface{}{"net_pay": payroll.NetPay.String(), "payment_method": req.PaymentMethod})

	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}
