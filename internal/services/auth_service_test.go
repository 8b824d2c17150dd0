// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
)

func newAuthFixture(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()

	cfg := testConfig()
	cfg.JWT.AccessTokenTTL = 1
	cfg.JWT.RefreshTokenTTL = 24
	return NewAuthService(db, cfg)
}

func TestLoginIssuesTokens(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthFixture(t, db)

	user := createUser(t, db, models.UserRoleStaff, 32)

	tokens, err := svc.Login(&LoginRequest{Email: user.PersonalEmail, Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, user.ID, tokens.User.ID)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthFixture(t, db)

	user := createUser(t, db, models.UserRoleStaff, 32)

	_, err := svc.Login(&LoginRequest{Email: user.PersonalEmail, Password: "not-the-password"})
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthFixture(t, db)

	user := createUser(t, db, models.UserRoleStaff, 32)
	require.NoError(t, db.Model(user).Update("status", models.UserStatusInactive).Error)

	_, err := svc.Login(&LoginRequest{Email: user.PersonalEmail, Password: "password123"})
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthFixture(t, db)

	existing := createUser(t, db, models.UserRoleStaff, 32)

	_, err := svc.Register(&RegisterRequest{
		FirstName:     "Siti",
		LastName:      "Rahman",
		PersonalEmail: existing.PersonalEmail,
		Password:      "password123",
		GradeLevel:    29,
		Department:    "Bahagian Pengurusan Maklumat",
		Position:      "Pegawai",
	})
	assert.True(t, apperrors.IsPrecondition(err))
}
