package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "academy/internal/errors"
	"academy/internal/models"
)

// userService reads the user registry.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// ListActiveTeachers returns every active user with the TEACHER role.
// A nil db uses the service's own connection.
func (s *userService) ListActiveTeachers(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		db = s.db
	}
	var teachers []models.User
	if err := db.Where("role = ? AND is_active = ?", models.UserRoleTeacher, true).
		Order("name ASC").
		Find(&teachers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return teachers, nil
}
