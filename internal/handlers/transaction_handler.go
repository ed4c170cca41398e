package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "academy/internal/errors"
	"academy/internal/models"
	"academy/internal/pagination"
	"academy/internal/services"
)

// TransactionHandler handles ledger entry requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for a manual ledger entry.
type CreateTransactionRequest struct {
	Type          models.FinanceType    `json:"type" binding:"required,finance_type"`
	CategoryID    string                `json:"category_id" binding:"required,uuid"`
	Amount        decimal.Decimal       `json:"amount" swaggertype:"string" binding:"required,gt=0"`
	Currency      string                `json:"currency" binding:"omitempty,iso4217"`
	PaymentMethod models.PaymentMethod  `json:"payment_method" binding:"required,payment_method"`
	OccurredAt    *string               `json:"occurred_at"`
	Note          string                `json:"note" binding:"max=500"`
	ReferenceType *models.ReferenceType `json:"reference_type" binding:"omitempty,reference_type"`
	ReferenceID   *string               `json:"reference_id" binding:"omitempty,uuid"`
}

// UpdateTransactionRequest represents the request payload for updating a ledger entry.
type UpdateTransactionRequest struct {
	Type           *models.FinanceType   `json:"type" binding:"omitempty,finance_type"`
	CategoryID     *string               `json:"category_id" binding:"omitempty,uuid"`
	Amount         *decimal.Decimal      `json:"amount" swaggertype:"string"`
	Currency       *string               `json:"currency" binding:"omitempty,iso4217"`
	PaymentMethod  *models.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	OccurredAt     *string               `json:"occurred_at"`
	Note           *string               `json:"note" binding:"omitempty,max=500"`
	ReferenceType  *models.ReferenceType `json:"reference_type" binding:"omitempty,reference_type"`
	ReferenceID    *string               `json:"reference_id" binding:"omitempty,uuid"`
	ClearReference bool                  `json:"clear_reference"`
}

// DeleteTransactionResponse confirms a soft delete.
type DeleteTransactionResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// CreateTransaction handles the creation of a manual ledger entry
// @Summary     Create a transaction
// @Description Record a manual revenue or expense entry. The category must have the same type.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.FinanceTransaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or category type mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or reference not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != nil && *req.OccurredAt != "" {
		parsed, parseErr := parseFlexibleTime(*req.OccurredAt)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		occurredAt = parsed
	}

	ref, err := referenceFromRequest(req.ReferenceType, req.ReferenceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		Type:          req.Type,
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		OccurredAt:    occurredAt,
		Note:          req.Note,
		Reference:     ref,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "finance_transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount.String(), "category_id": req.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions handles listing ledger entries
// @Summary     List transactions
// @Description Paginated, newest first. Deleted entries are never listed.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page           query int    false "Page number (default 1)"
// @Param       page_size      query int    false "Items per page (default 20, max 100)"
// @Param       from           query string false "Start date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Param       to             query string false "End date, inclusive; a plain date covers the whole day"
// @Param       type           query string false "REVENUE or EXPENSE"
// @Param       category_id    query string false "Category ID"
// @Param       payment_method query string false "CASH, BANK, CARD or OTHER"
// @Param       q              query string false "Case-insensitive note search"
// @Success     200 {object} pagination.PageResponse[models.FinanceTransaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to"); v != "" {
		t, err := parseRangeEnd(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		t := models.FinanceType(v)
		if !t.IsValid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be REVENUE or EXPENSE")
		}
		filter.Type = &t
	}

	categoryID, err := parseOptionalUUID(c.Query("category_id"), "category_id")
	if err != nil {
		return filter, err
	}
	filter.CategoryID = categoryID

	if v := c.Query("payment_method"); v != "" {
		m := models.PaymentMethod(v)
		if !m.IsValid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment_method")
		}
		filter.PaymentMethod = &m
	}

	filter.Query = strings.TrimSpace(c.Query("q"))
	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific ledger entry
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.FinanceTransaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating a ledger entry
// @Summary     Update transaction
// @Description Update a non-deleted entry. The type cannot change; a new category must have the entry's type.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.FinanceTransaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if req.Type != nil {
		current, err := h.transactionService.GetTransactionByID(txID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if current.Type != *req.Type {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type cannot be changed"))
			return
		}
	}

	fields := services.TransactionUpdateFields{
		CategoryID:     req.CategoryID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		PaymentMethod:  req.PaymentMethod,
		Note:           req.Note,
		ClearReference: req.ClearReference,
	}
	if req.OccurredAt != nil {
		parsed, parseErr := parseFlexibleTime(*req.OccurredAt)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		fields.OccurredAt = &parsed
	}
	if !req.ClearReference {
		ref, err := referenceFromRequest(req.ReferenceType, req.ReferenceID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.Reference = ref
	}

	transaction, err := h.transactionService.UpdateTransaction(txID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "finance_transaction", transaction.ID, c.ClientIP(), transactionChanges(req))

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles soft-deleting a ledger entry
// @Summary     Delete transaction
// @Description Soft-delete an entry. It disappears from listings and reports and cannot be restored.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} DeleteTransactionResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found or already deleted"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "finance_transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, DeleteTransactionResponse{ID: transactionID, Deleted: true})
}

// referenceFromRequest builds a reference from its two request fields, which
// must be given together.
func referenceFromRequest(refType *models.ReferenceType, refID *string) (*models.Reference, error) {
	hasType := refType != nil && *refType != ""
	hasID := refID != nil && *refID != ""
	switch {
	case !hasType && !hasID:
		return nil, nil
	case hasType != hasID:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reference_type and reference_id must be given together")
	}
	return &models.Reference{Type: *refType, ID: *refID}, nil
}

func transactionChanges(req UpdateTransactionRequest) map[string]interface{} {
	changes := map[string]interface{}{}
	if req.CategoryID != nil {
		changes["category_id"] = *req.CategoryID
	}
	if req.Amount != nil {
		changes["amount"] = req.Amount.String()
	}
	if req.Currency != nil {
		changes["currency"] = *req.Currency
	}
	if req.PaymentMethod != nil {
		changes["payment_method"] = *req.PaymentMethod
	}
	if req.OccurredAt != nil {
		changes["occurred_at"] = *req.OccurredAt
	}
	if req.Note != nil {
		changes["note"] = *req.Note
	}
	if req.ClearReference {
		changes["reference"] = nil
	} else if req.ReferenceID != nil {
		changes["reference_id"] = *req.ReferenceID
	}
	return changes
}
