// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
)

// UserService owns user lookups, including the approver-resolution queries
// the workflow engine depends on. Results are deterministically ordered so
// that "first eligible approver" is stable across calls.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// UsersByRole returns all active users holding the given role, ordered by name.
func (s *UserService) UsersByRole(role models.UserRole) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Where("role = ? AND status = ?", role, models.UserStatusActive).
		Order("first_name, last_name").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role %s: %w", role, err)
	}
	return users, nil
}

// UsersByMinGradeLevel returns active users at or above the given grade,
// lowest grade first, ties broken by name.
func (s *UserService) UsersByMinGradeLevel(minGrade int) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Where("grade_level >= ? AND status = ?", minGrade, models.UserStatusActive).
		Order("grade_level, first_name, last_name").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query users by grade level: %w", err)
	}
	return users, nil
}

func (s *UserService) UpdateProfile(id uuid.UUID, department, position string) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	user.Department = department
	user.Position = position
	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	return user, nil
}
