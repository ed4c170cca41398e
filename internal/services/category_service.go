package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "academy/internal/errors"
	"academy/internal/logger"
	"academy/internal/models"
)

// categoryService handles the finance category registry.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(financeType models.FinanceType, name string, parentID *string) (*models.FinanceCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !financeType.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be REVENUE or EXPENSE")
	}

	// (type, name) is unique across active and inactive categories
	var count int64
	if err := s.db.Model(&models.FinanceCategory{}).
		Where("type = ? AND name = ?", financeType, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		if _, err := s.findParent(*parentID, financeType); err != nil {
			return nil, err
		}
	}

	category := &models.FinanceCategory{
		Type:     financeType,
		Name:     name,
		ParentID: parentID,
		IsActive: true,
	}
	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// ListCategories returns active categories ordered by type then name,
// optionally restricted to one type.
func (s *categoryService) ListCategories(financeType *models.FinanceType) ([]CategoryListItem, error) {
	q := s.db.Table("finance_categories AS c").
		Select("c.id, c.type, c.name, c.parent_id, p.name AS parent_name, c.is_active").
		Joins("LEFT JOIN finance_categories AS p ON p.id = c.parent_id").
		Where("c.is_active = ?", true)
	if financeType != nil {
		q = q.Where("c.type = ?", *financeType)
	}

	items := []CategoryListItem{}
	if err := q.Order("c.type ASC, c.name ASC").Scan(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// GetCategoryByID retrieves a category by ID, active or not.
func (s *categoryService) GetCategoryByID(id string) (*models.FinanceCategory, error) {
	return findCategory(s.db, id)
}

// UpdateCategory renames, reparents, or (de)activates a category. Nothing
// cascades to children or to existing transactions.
func (s *categoryService) UpdateCategory(id string, fields CategoryUpdateFields) (*models.FinanceCategory, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		if name != category.Name {
			var count int64
			if err := s.db.Model(&models.FinanceCategory{}).
				Where("type = ? AND name = ? AND id <> ?", category.Type, name, id).
				Count(&count).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				return nil, apperrors.ErrDuplicateCategory
			}
			updates["name"] = name
		}
	}

	if fields.ParentID != nil {
		if *fields.ParentID == "" {
			updates["parent_id"] = nil
		} else {
			if *fields.ParentID == id {
				return nil, apperrors.ErrSelfParentCategory
			}
			if _, err := s.findParent(*fields.ParentID, category.Type); err != nil {
				return nil, err
			}
			if err := s.checkNoCycle(id, *fields.ParentID); err != nil {
				return nil, err
			}
			updates["parent_id"] = *fields.ParentID
		}
	}

	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrDuplicateCategory
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetCategoryByID(id)
}

// GetOrCreate returns the active category with the given type and name,
// creating it when missing. The insert leans on the (type, name) unique
// index: a concurrent creator makes our insert a no-op, after which the
// winner's row is read back. A row that exists but was deactivated is
// switched back on.
func (s *categoryService) GetOrCreate(tx *gorm.DB, financeType models.FinanceType, name string) (*models.FinanceCategory, error) {
	if tx == nil {
		tx = s.db
	}

	var category models.FinanceCategory
	err := tx.Where("type = ? AND name = ? AND is_active = ?", financeType, name, true).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	category = models.FinanceCategory{Type: financeType, Name: name, IsActive: true}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&category)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 1 {
		logger.Get().Infow("system category created", "type", financeType, "name", name, "category_id", category.ID)
		return &category, nil
	}

	var existing models.FinanceCategory
	if err := tx.Where("type = ? AND name = ?", financeType, name).First(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !existing.IsActive {
		if err := tx.Model(&existing).Update("is_active", true).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		logger.Get().Infow("system category reactivated", "type", financeType, "name", name, "category_id", existing.ID)
	}
	return &existing, nil
}

// findParent loads a prospective parent and checks it shares the child's type.
func (s *categoryService) findParent(parentID string, financeType models.FinanceType) (*models.FinanceCategory, error) {
	parent, err := findCategory(s.db, parentID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCategoryNotFound.Code) {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
		}
		return nil, err
	}
	if parent.Type != financeType {
		return nil, apperrors.WithMessage(apperrors.ErrCategoryTypeMismatch, "parent category must have the same type")
	}
	return parent, nil
}

// checkNoCycle walks up from parentID and fails if it reaches id.
func (s *categoryService) checkNoCycle(id, parentID string) error {
	seen := map[string]bool{}
	current := parentID
	for current != "" && !seen[current] {
		if current == id {
			return apperrors.WithMessage(apperrors.ErrSelfParentCategory, "category cannot be an ancestor of itself")
		}
		seen[current] = true

		var row models.FinanceCategory
		if err := s.db.Select("id", "parent_id").Where("id = ?", current).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if row.ParentID == nil {
			return nil
		}
		current = *row.ParentID
	}
	return nil
}

// findCategory loads a category through the given handle, which may be an
// open transaction.
func findCategory(db *gorm.DB, id string) (*models.FinanceCategory, error) {
	var category models.FinanceCategory
	if err := db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
