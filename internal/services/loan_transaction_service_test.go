// internal/services/loan_transaction_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
)

func newTransactionFixture(t *testing.T, db *gorm.DB) *LoanTransactionService {
	t.Helper()

	cfg := testConfig()
	return NewLoanTransactionService(db, cfg, NewNotificationService(db, cfg))
}

func approvedLoanApplication(t *testing.T, db *gorm.DB, applicant *models.User, quantities ...int) *models.LoanApplication {
	t.Helper()

	application := createLoanDraft(t, db, applicant, quantities...)
	require.NoError(t, db.Model(application).Update("status", models.ApplicationStatusApproved).Error)
	application.Status = models.ApplicationStatusApproved
	return application
}

func issueOne(t *testing.T, svc *LoanTransactionService, applicationID, officerID, equipmentID, receiverID uuid.UUID) *models.LoanTransaction {
	t.Helper()

	transaction, err := svc.IssueEquipment(applicationID, officerID, &IssueEquipmentRequest{
		EquipmentID:        equipmentID,
		ReceivingOfficerID: receiverID,
		Accessories:        map[string]interface{}{"charger": true},
	})
	require.NoError(t, err)
	return transaction
}

func TestIssueEquipmentPartialThenFull(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	application := approvedLoanApplication(t, db, applicant, 2)
	first := createEquipment(t, db, "MOTAC/LPT/00001")
	second := createEquipment(t, db, "MOTAC/LPT/00002")

	transaction := issueOne(t, svc, application.ID, officer.ID, first.ID, applicant.ID)
	assert.Equal(t, models.TransactionStatusIssued, transaction.Status)

	var afterFirst models.LoanApplication
	require.NoError(t, db.First(&afterFirst, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusPartiallyIssued, afterFirst.Status)

	var firstEquipment models.Equipment
	require.NoError(t, db.First(&firstEquipment, "id = ?", first.ID).Error)
	assert.Equal(t, models.EquipmentStatusOnLoan, firstEquipment.Status)

	issueOne(t, svc, application.ID, officer.ID, second.ID, applicant.ID)

	var afterSecond models.LoanApplication
	require.NoError(t, db.First(&afterSecond, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusIssued, afterSecond.Status)
}

func TestIssueEquipmentRequiresApprovedApplication(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	draft := createLoanDraft(t, db, applicant, 1)
	equipment := createEquipment(t, db, "MOTAC/LPT/00003")

	_, err := svc.IssueEquipment(draft.ID, officer.ID, &IssueEquipmentRequest{
		EquipmentID:        equipment.ID,
		ReceivingOfficerID: applicant.ID,
	})
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestIssueEquipmentRequiresAvailableUnit(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	application := approvedLoanApplication(t, db, applicant, 1)
	equipment := createEquipment(t, db, "MOTAC/LPT/00004")
	require.NoError(t, db.Model(equipment).Update("status", models.EquipmentStatusUnderMaintenance).Error)

	_, err := svc.IssueEquipment(application.ID, officer.ID, &IssueEquipmentRequest{
		EquipmentID:        equipment.ID,
		ReceivingOfficerID: applicant.ID,
	})
	assert.True(t, apperrors.IsPrecondition(err))

	var reloaded models.LoanApplication
	require.NoError(t, db.First(&reloaded, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusApproved, reloaded.Status)
}

func TestProcessReturnGoodCondition(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	application := approvedLoanApplication(t, db, applicant, 1)
	equipment := createEquipment(t, db, "MOTAC/LPT/00005")

	transaction := issueOne(t, svc, application.ID, officer.ID, equipment.ID, applicant.ID)

	returned, err := svc.ProcessReturn(transaction.ID, officer.ID, &ProcessReturnRequest{
		ReturningOfficerID: applicant.ID,
		Condition:          models.ReturnConditionGood,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusReturned, returned.Status)
	assert.NotNil(t, returned.ReturnedAt)

	var reloadedEquipment models.Equipment
	require.NoError(t, db.First(&reloadedEquipment, "id = ?", equipment.ID).Error)
	assert.Equal(t, models.EquipmentStatusAvailable, reloadedEquipment.Status)

	var reloadedApplication models.LoanApplication
	require.NoError(t, db.First(&reloadedApplication, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusReturned, reloadedApplication.Status)
}

func TestProcessReturnClosesPartiallyIssuedApplication(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	application := approvedLoanApplication(t, db, applicant, 2)
	equipment := createEquipment(t, db, "MOTAC/LPT/00011")

	transaction := issueOne(t, svc, application.ID, officer.ID, equipment.ID, applicant.ID)

	_, err := svc.ProcessReturn(transaction.ID, officer.ID, &ProcessReturnRequest{
		ReturningOfficerID: applicant.ID,
		Condition:          models.ReturnConditionGood,
	})
	require.NoError(t, err)

	// Only 1 of 2 requested units was ever handed out, but nothing remains
	// on loan, so the application is closed out.
	var reloaded models.LoanApplication
	require.NoError(t, db.First(&reloaded, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusReturned, reloaded.Status)
}

func TestProcessReturnDamagedSendsEquipmentToMaintenance(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	application := approvedLoanApplication(t, db, applicant, 1)
	equipment := createEquipment(t, db, "MOTAC/LPT/00006")

	transaction := issueOne(t, svc, application.ID, officer.ID, equipment.ID, applicant.ID)

	returned, err := svc.ProcessReturn(transaction.ID, officer.ID, &ProcessReturnRequest{
		ReturningOfficerID: applicant.ID,
		Condition:          models.ReturnConditionDamaged,
		Notes:              "cracked screen",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusDamaged, returned.Status)

	var reloadedEquipment models.Equipment
	require.NoError(t, db.First(&reloadedEquipment, "id = ?", equipment.ID).Error)
	assert.Equal(t, models.EquipmentStatusUnderMaintenance, reloadedEquipment.Status)
}

func TestProcessReturnLostDisposesEquipment(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	application := approvedLoanApplication(t, db, applicant, 1)
	equipment := createEquipment(t, db, "MOTAC/LPT/00007")

	transaction := issueOne(t, svc, application.ID, officer.ID, equipment.ID, applicant.ID)

	returned, err := svc.ProcessReturn(transaction.ID, officer.ID, &ProcessReturnRequest{
		ReturningOfficerID: applicant.ID,
		Condition:          models.ReturnConditionLost,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusLost, returned.Status)

	var reloadedEquipment models.Equipment
	require.NoError(t, db.First(&reloadedEquipment, "id = ?", equipment.ID).Error)
	assert.Equal(t, models.EquipmentStatusDisposed, reloadedEquipment.Status)
}

func TestProcessReturnRequiresIssuedTransaction(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	application := approvedLoanApplication(t, db, applicant, 1)
	equipment := createEquipment(t, db, "MOTAC/LPT/00008")

	transaction := issueOne(t, svc, application.ID, officer.ID, equipment.ID, applicant.ID)

	_, err := svc.ProcessReturn(transaction.ID, officer.ID, &ProcessReturnRequest{
		ReturningOfficerID: applicant.ID,
		Condition:          models.ReturnConditionGood,
	})
	require.NoError(t, err)

	// A second return of the same transaction must fail.
	_, err = svc.ProcessReturn(transaction.ID, officer.ID, &ProcessReturnRequest{
		ReturningOfficerID: applicant.ID,
		Condition:          models.ReturnConditionGood,
	})
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestReturnLeavesApplicationIssuedWhileUnitsRemainOut(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleBPMStaff, 36)
	application := approvedLoanApplication(t, db, applicant, 2)
	first := createEquipment(t, db, "MOTAC/LPT/00009")
	second := createEquipment(t, db, "MOTAC/LPT/00010")

	firstTransaction := issueOne(t, svc, application.ID, officer.ID, first.ID, applicant.ID)
	issueOne(t, svc, application.ID, officer.ID, second.ID, applicant.ID)

	_, err := svc.ProcessReturn(firstTransaction.ID, officer.ID, &ProcessReturnRequest{
		ReturningOfficerID: applicant.ID,
		Condition:          models.ReturnConditionGood,
	})
	require.NoError(t, err)

	var reloaded models.LoanApplication
	require.NoError(t, db.First(&reloaded, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusIssued, reloaded.Status)
}
