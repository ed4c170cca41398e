package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"academy/internal/services"
)

// BookHandler serves the small book catalogue that sales draw from.
type BookHandler struct {
	bookService  services.BookServicer
	auditService services.AuditServicer
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookService services.BookServicer, auditService services.AuditServicer) *BookHandler {
	return &BookHandler{bookService: bookService, auditService: auditService}
}

// CreateBookRequest represents the request payload for adding a book.
type CreateBookRequest struct {
	Title     string           `json:"title" binding:"required,max=255"`
	SKU       string           `json:"sku" binding:"required,max=64"`
	SalePrice decimal.Decimal  `json:"sale_price" swaggertype:"string" binding:"gte=0"`
	CostPrice *decimal.Decimal `json:"cost_price" swaggertype:"string"`
}

// UpdateBookRequest represents the request payload for editing a book.
type UpdateBookRequest struct {
	Title          *string          `json:"title" binding:"omitempty,min=1,max=255"`
	SalePrice      *decimal.Decimal `json:"sale_price" swaggertype:"string"`
	CostPrice      *decimal.Decimal `json:"cost_price" swaggertype:"string"`
	ClearCostPrice bool             `json:"clear_cost_price"`
	IsActive       *bool            `json:"is_active"`
}

// CreateBook godoc
// @Summary     Create a book
// @Tags        books
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBookRequest true "Book details"
// @Success     201 {object} models.Book "Book created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate SKU"
// @Router      /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	book, err := h.bookService.CreateBook(services.BookInput{
		Title:     req.Title,
		SKU:       req.SKU,
		SalePrice: req.SalePrice,
		CostPrice: req.CostPrice,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BOOK", "book", book.ID, c.ClientIP(),
		map[string]interface{}{"sku": book.SKU, "sale_price": book.SalePrice.String()})

	c.JSON(http.StatusCreated, gin.H{"book": book})
}

// ListBooks godoc
// @Summary     List books
// @Tags        books
// @Produce     json
// @Security    BearerAuth
// @Param       active query bool false "Only active books"
// @Success     200 {array} models.Book "Books"
// @Router      /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.bookService.ListBooks(c.Query("active") == "true")
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// UpdateBook godoc
// @Summary     Update a book
// @Description Price changes apply to future sales and to totals recomputed on sale edits.
// @Tags        books
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Book ID"
// @Param       request body UpdateBookRequest true "Fields to update"
// @Success     200 {object} models.Book "Updated book"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Router      /books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
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

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	book, err := h.bookService.UpdateBook(id, services.BookUpdateFields{
		Title:          req.Title,
		SalePrice:      req.SalePrice,
		CostPrice:      req.CostPrice,
		ClearCostPrice: req.ClearCostPrice,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BOOK", "book", book.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"book": book})
}
