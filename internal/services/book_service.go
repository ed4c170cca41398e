package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "academy/internal/errors"
	"academy/internal/models"
)

// bookService handles the book registry.
type bookService struct {
	db *gorm.DB
}

// NewBookService creates a new BookServicer.
func NewBookService(db *gorm.DB) BookServicer {
	return &bookService{db: db}
}

// CreateBook adds a book to the registry
func (s *bookService) CreateBook(input BookInput) (*models.Book, error) {
	title := strings.TrimSpace(input.Title)
	sku := strings.TrimSpace(input.SKU)
	if title == "" || sku == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title and sku are required")
	}
	if input.SalePrice.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sale price cannot be negative")
	}
	if input.CostPrice != nil && input.CostPrice.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cost price cannot be negative")
	}

	var count int64
	if err := s.db.Model(&models.Book{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateSKU
	}

	book := &models.Book{
		Title:     title,
		SKU:       sku,
		SalePrice: input.SalePrice,
		IsActive:  true,
	}
	if input.CostPrice != nil {
		book.CostPrice = decimal.NewNullDecimal(*input.CostPrice)
	}

	if err := s.db.Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateSKU
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return book, nil
}

// ListBooks returns books ordered by title.
func (s *bookService) ListBooks(activeOnly bool) ([]models.Book, error) {
	q := s.db.Model(&models.Book{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	books := []models.Book{}
	if err := q.Order("title ASC").Find(&books).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return books, nil
}

// UpdateBook edits a book. Price changes never touch recorded sales.
func (s *bookService) UpdateBook(id string, fields BookUpdateFields) (*models.Book, error) {
	var book models.Book
	if err := s.db.Where("id = ?", id).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBookNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := make(map[string]interface{})
	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title cannot be empty")
		}
		updates["title"] = title
	}
	if fields.SalePrice != nil {
		if fields.SalePrice.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sale price cannot be negative")
		}
		updates["sale_price"] = *fields.SalePrice
	}
	switch {
	case fields.ClearCostPrice:
		updates["cost_price"] = nil
	case fields.CostPrice != nil:
		if fields.CostPrice.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cost price cannot be negative")
		}
		updates["cost_price"] = *fields.CostPrice
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&book).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	var updated models.Book
	if err := s.db.Where("id = ?", id).First(&updated).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &updated, nil
}

// FindBooks loads the given books, active or not, keyed by id. Any id that
// does not exist fails the whole lookup with BOOK_NOT_FOUND.
func (s *bookService) FindBooks(db *gorm.DB, ids []string) (map[string]models.Book, error) {
	if db == nil {
		db = s.db
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "book_id is required")
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var books []models.Book
	if len(unique) > 0 {
		if err := db.Where("id IN ?", unique).Find(&books).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	result := make(map[string]models.Book, len(books))
	for _, b := range books {
		result[b.ID] = b
	}
	for _, id := range unique {
		if _, ok := result[id]; !ok {
			return nil, apperrors.WithMessage(apperrors.ErrBookNotFound, "book not found: "+id)
		}
	}
	return result, nil
}
