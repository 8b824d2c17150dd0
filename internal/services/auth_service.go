// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/config"
	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, config: cfg}
}

type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required,min=2,max=100"`
	LastName      string `json:"last_name" validate:"required,min=2,max=100"`
	PersonalEmail string `json:"personal_email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=128"`
	GradeLevel    int    `json:"grade_level" validate:"required,min=1,max=60"`
	Department    string `json:"department" validate:"required,max=255"`
	Position      string `json:"position" validate:"required,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthTokens struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Register creates a staff account. Role is always staff at registration;
// elevated roles are granted by an administrator.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	var existing models.User
	err := s.db.Where("personal_email = ?", req.PersonalEmail).First(&existing).Error
	if err == nil {
		return nil, apperrors.NewPrecondition("user", existing.ID, "register",
			"an account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	user := &models.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PersonalEmail: req.PersonalEmail,
		Role:          models.UserRoleStaff,
		GradeLevel:    req.GradeLevel,
		Department:    req.Department,
		Position:      req.Position,
		Status:        models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.PersonalEmail,
	}).Info("User registered")

	return user, nil
}

// Login verifies credentials against either the personal or the assigned
// MOTAC email and issues a token pair.
func (s *AuthService) Login(req *LoginRequest) (*AuthTokens, error) {
	var user models.User
	err := s.db.Where("personal_email = ? OR motac_email = ?", req.Email, req.Email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewPrecondition("user", uuid.Nil, "login", "invalid credentials")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewPrecondition("user", user.ID, "login", "account is not active")
	}
	if user.CheckPassword(req.Password) != nil {
		return nil, apperrors.NewPrecondition("user", uuid.Nil, "login", "invalid credentials")
	}

	tokens, err := s.issueTokens(&user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).Warn("Failed to stamp last login")
	}

	return tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(refreshToken string) (*AuthTokens, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewPrecondition("user", uuid.Nil, "refresh token", "invalid refresh token")
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, apperrors.NewPrecondition("user", uuid.Nil, "refresh token", "invalid refresh token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewPrecondition("user", user.ID, "refresh token", "account is not active")
	}

	return s.issueTokens(&user)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthTokens, error) {
	access, err := utils.GenerateJWT(user.ID, user.FullName(), string(user.Role), s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := utils.GenerateRefreshToken(user.ID, s.config.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &AuthTokens{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
