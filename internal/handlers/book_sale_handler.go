package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "academy/internal/errors"
	"academy/internal/models"
	"academy/internal/services"
)

// BookSaleHandler handles book sale requests.
type BookSaleHandler struct {
	bookSaleService services.BookSaleServicer
	auditService    services.AuditServicer
}

// NewBookSaleHandler creates a new BookSaleHandler.
func NewBookSaleHandler(bookSaleService services.BookSaleServicer, auditService services.AuditServicer) *BookSaleHandler {
	return &BookSaleHandler{bookSaleService: bookSaleService, auditService: auditService}
}

// BookSaleItemRequest is one line of a sale payload. Omit id for new lines.
type BookSaleItemRequest struct {
	ID        string           `json:"id" binding:"omitempty,uuid"`
	BookID    string           `json:"book_id" binding:"required,uuid"`
	Qty       int              `json:"qty" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" swaggertype:"string"`
}

// CreateBookSaleRequest represents the request payload for recording a sale.
type CreateBookSaleRequest struct {
	SoldAt        *string               `json:"sold_at"`
	CustomerName  string                `json:"customer_name" binding:"max=255"`
	PaymentMethod models.PaymentMethod  `json:"payment_method" binding:"required,payment_method"`
	Currency      string                `json:"currency" binding:"omitempty,iso4217"`
	Items         []BookSaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateBookSaleRequest represents the request payload for editing a sale.
// When items is present it is the complete list of lines.
type UpdateBookSaleRequest struct {
	SoldAt        *string               `json:"sold_at"`
	CustomerName  *string               `json:"customer_name" binding:"omitempty,max=255"`
	PaymentMethod *models.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	Currency      *string               `json:"currency" binding:"omitempty,iso4217"`
	Items         []BookSaleItemRequest `json:"items" binding:"omitempty,dive"`
}

// CreateBookSale godoc
// @Summary     Record a book sale
// @Description Records the sale, its lines and one REVENUE ledger entry for the profit, atomically. cost_price_missing_warning is true when a book had no cost price and its cost was counted as zero.
// @Tags        book-sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBookSaleRequest true "Sale details"
// @Success     201 {object} services.BookSaleResult "Sale recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /book-sales [post]
func (h *BookSaleHandler) CreateBookSale(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBookSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var soldAt time.Time
	if req.SoldAt != nil && *req.SoldAt != "" {
		parsed, parseErr := parseFlexibleTime(*req.SoldAt)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		soldAt = parsed
	}

	result, err := h.bookSaleService.CreateBookSale(userID, services.BookSaleInput{
		SoldAt:        soldAt,
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
		Currency:      req.Currency,
		Items:         saleItemInputs(req.Items),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BOOK_SALE", "book_sale", result.Sale.ID, c.ClientIP(),
		map[string]interface{}{
			"total_amount":  result.Sale.TotalAmount.String(),
			"profit_amount": result.Sale.ProfitAmount.String(),
			"items":         len(result.Sale.Items),
		})

	c.JSON(http.StatusCreated, result)
}

// ListBookSales godoc
// @Summary     List book sales
// @Tags        book-sales
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Sold on or after (RFC3339 or YYYY-MM-DD)"
// @Param       to   query string false "Sold on or before; a plain date covers the whole day"
// @Success     200 {array} services.BookSaleView "Sales, newest first"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /book-sales [get]
func (h *BookSaleHandler) ListBookSales(c *gin.Context) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseRangeEnd(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		to = &t
	}

	sales, err := h.bookSaleService.ListBookSales(from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// GetBookSaleByID godoc
// @Summary     Get a book sale
// @Tags        book-sales
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Sale ID"
// @Success     200 {object} services.BookSaleView "Sale"
// @Failure     404 {object} ErrorResponse "Sale not found"
// @Router      /book-sales/{id} [get]
func (h *BookSaleHandler) GetBookSaleByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sale, err := h.bookSaleService.GetBookSaleByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

// UpdateBookSale godoc
// @Summary     Update a book sale
// @Description Lines are matched by id: new lines are added, listed lines updated and unlisted lines removed. Totals are recomputed with current cost prices and copied to the linked ledger entry.
// @Tags        book-sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Sale ID"
// @Param       request body UpdateBookSaleRequest true "Fields to update"
// @Success     200 {object} services.BookSaleResult "Updated sale"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Sale or book not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /book-sales/{id} [put]
func (h *BookSaleHandler) UpdateBookSale(c *gin.Context) {
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

	var req UpdateBookSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	input := services.BookSaleUpdateInput{
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
		Currency:      req.Currency,
	}
	if req.SoldAt != nil {
		parsed, parseErr := parseFlexibleTime(*req.SoldAt)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		input.SoldAt = &parsed
	}
	if req.Items != nil {
		input.Items = saleItemInputs(req.Items)
	}

	result, err := h.bookSaleService.UpdateBookSale(userID, id, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BOOK_SALE", "book_sale", id, c.ClientIP(),
		map[string]interface{}{
			"total_amount":  result.Sale.TotalAmount.String(),
			"profit_amount": result.Sale.ProfitAmount.String(),
		})

	c.JSON(http.StatusOK, result)
}

// saleItemInputs keeps a non-nil result for a non-nil request so an explicit
// empty list still reaches the service.
func saleItemInputs(items []BookSaleItemRequest) []services.BookSaleItemInput {
	inputs := make([]services.BookSaleItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, services.BookSaleItemInput{
			ID:        item.ID,
			BookID:    item.BookID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
		})
	}
	return inputs
}
