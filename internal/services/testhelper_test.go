// internal/services/testhelper_test.go
package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/izzatfirdaus/motac-rms/internal/config"
	"github.com/izzatfirdaus/motac-rms/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.EmailApplication{},
		&models.LoanApplication{},
		&models.LoanApplicationItem{},
		&models.Approval{},
		&models.Equipment{},
		&models.LoanTransaction{},
		&models.Notification{},
		&models.AuditLog{},
		&models.Attachment{},
	)
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Provisioning: config.ProvisioningConfig{
			EmailDomain:        "motac.gov.my",
			TempPasswordLength: 12,
			TimeoutSeconds:     5,
			AllowedStatuses:    []string{"approved"},
		},
		Workflow: config.WorkflowConfig{
			MinApproverGradeLevel: 41,
			ReturnConditionPolicy: map[string]string{
				"good":    "available",
				"damaged": "under_maintenance",
				"lost":    "disposed",
			},
		},
	}
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, role models.UserRole, grade int) *models.User {
	t.Helper()

	userSeq++
	user := &models.User{
		FirstName:     fmt.Sprintf("Test%d", userSeq),
		LastName:      "User",
		PersonalEmail: fmt.Sprintf("test%d@example.com", userSeq),
		Role:          role,
		GradeLevel:    grade,
		Department:    "Bahagian Pengurusan Maklumat",
		Position:      "Pegawai",
		Status:        models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createEmailDraft(t *testing.T, db *gorm.DB, applicant *models.User, supportingOfficer *models.User) *models.EmailApplication {
	t.Helper()

	application := &models.EmailApplication{
		ApplicantID: applicant.ID,
		Status:      models.ApplicationStatusDraft,
		Purpose:     "Official correspondence for division duties",
	}
	if supportingOfficer != nil {
		application.SupportingOfficerID = &supportingOfficer.ID
	}
	require.NoError(t, db.Create(application).Error)
	return application
}

func createLoanDraft(t *testing.T, db *gorm.DB, applicant *models.User, quantities ...int) *models.LoanApplication {
	t.Helper()

	application := &models.LoanApplication{
		ApplicantID:   applicant.ID,
		Status:        models.ApplicationStatusDraft,
		Purpose:       "Equipment for official programme",
		Location:      "Dewan Tunku Abdul Rahman",
		LoanStartDate: mustParseTime(t, "2026-09-01T09:00:00Z"),
		LoanEndDate:   mustParseTime(t, "2026-09-05T17:00:00Z"),
	}
	for _, quantity := range quantities {
		application.Items = append(application.Items, models.LoanApplicationItem{
			EquipmentType:     "laptop",
			QuantityRequested: quantity,
		})
	}
	require.NoError(t, db.Create(application).Error)
	return application
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func createEquipment(t *testing.T, db *gorm.DB, tagID string) *models.Equipment {
	t.Helper()

	equipment := &models.Equipment{
		TagID:     tagID,
		AssetType: "laptop",
		Brand:     "Dell",
		Model:     "Latitude 5440",
		Status:    models.EquipmentStatusAvailable,
		Condition: "good",
	}
	require.NoError(t, db.Create(equipment).Error)
	return equipment
}

func pendingApproval(t *testing.T, db *gorm.DB, approvableType string, approvableID uuid.UUID) *models.Approval {
	t.Helper()

	var approval models.Approval
	err := db.Where("approvable_type = ? AND approvable_id = ? AND status = ?",
		approvableType, approvableID, models.ApprovalStatusPending).
		First(&approval).Error
	require.NoError(t, err)
	return &approval
}

// fakeMailboxClient stands in for the external provisioning API.
type fakeMailboxClient struct {
	result   *MailboxAccountResult
	err      error
	requests []*MailboxAccountRequest
}

func (f *fakeMailboxClient) CreateAccount(_ context.Context, req *MailboxAccountRequest) (*MailboxAccountResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &MailboxAccountResult{Success: true, AssignedEmail: req.Email, ExternalID: "ext-1"}, nil
}

func newProvisioningFixture(t *testing.T, db *gorm.DB, mailbox MailboxClient) *ProvisioningService {
	t.Helper()

	cfg := testConfig()
	users := NewUserService(db)
	notifications := NewNotificationService(db, cfg)
	return NewProvisioningService(db, cfg, mailbox, users, notifications)
}

func newWorkflowFixture(t *testing.T, db *gorm.DB, mailbox MailboxClient) *ApprovalService {
	t.Helper()

	cfg := testConfig()
	users := NewUserService(db)
	notifications := NewNotificationService(db, cfg)
	provisioning := NewProvisioningService(db, cfg, mailbox, users, notifications)
	return NewApprovalService(db, cfg, users, provisioning, notifications)
}
