// internal/services/loan_application_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
)

func newLoanApplicationFixture(t *testing.T, db *gorm.DB) *LoanApplicationService {
	t.Helper()
	return NewLoanApplicationService(db, newWorkflowFixture(t, db, &fakeMailboxClient{}))
}

func TestLoanApplicationCreateDraft(t *testing.T) {
	db := setupTestDB(t)
	svc := newLoanApplicationFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	start := mustParseTime(t, "2026-09-01T09:00:00Z")
	end := mustParseTime(t, "2026-09-05T17:00:00Z")

	draft, err := svc.CreateDraft(applicant.ID, &CreateLoanApplicationRequest{
		Purpose:       "Equipment for official programme",
		Location:      "Dewan Tunku Abdul Rahman",
		LoanStartDate: start,
		LoanEndDate:   end,
		Items: []LoanItemRequest{
			{EquipmentType: "laptop", QuantityRequested: 2},
			{EquipmentType: "projector", QuantityRequested: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusDraft, draft.Status)

	loaded, err := svc.Get(draft.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 2)
	assert.Equal(t, 3, loaded.TotalRequestedQuantity())
}

func TestLoanApplicationRejectsInvertedDates(t *testing.T) {
	db := setupTestDB(t)
	svc := newLoanApplicationFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	start := mustParseTime(t, "2026-09-05T09:00:00Z")

	_, err := svc.CreateDraft(applicant.ID, &CreateLoanApplicationRequest{
		Purpose:       "Equipment for official programme",
		Location:      "Dewan Tunku Abdul Rahman",
		LoanStartDate: start,
		LoanEndDate:   start.Add(-24 * time.Hour),
		Items:         []LoanItemRequest{{EquipmentType: "laptop", QuantityRequested: 1}},
	})
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestLoanApplicationUpdateReplacesItems(t *testing.T) {
	db := setupTestDB(t)
	svc := newLoanApplicationFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	draft := createLoanDraft(t, db, applicant, 2)

	updated, err := svc.UpdateDraft(draft.ID, applicant.ID, &UpdateLoanApplicationRequest{
		Items: []LoanItemRequest{
			{EquipmentType: "projector", QuantityRequested: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "projector", updated.Items[0].EquipmentType)

	var count int64
	require.NoError(t, db.Model(&models.LoanApplicationItem{}).
		Where("loan_application_id = ?", draft.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLoanApplicationSubmitRequiresItems(t *testing.T) {
	db := setupTestDB(t)
	svc := newLoanApplicationFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	createUser(t, db, models.UserRoleApprover, 44)
	draft := createLoanDraft(t, db, applicant)

	_, err := svc.Submit(draft.ID, applicant.ID)
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestLoanApplicationDeleteBlockedByTransactions(t *testing.T) {
	db := setupTestDB(t)
	svc := newLoanApplicationFixture(t, db)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	draft := createLoanDraft(t, db, applicant, 1)
	equipment := createEquipment(t, db, "MOTAC/LPT/00020")

	transaction := models.LoanTransaction{
		LoanApplicationID:  draft.ID,
		EquipmentID:        equipment.ID,
		Status:             models.TransactionStatusIssued,
		IssuingOfficerID:   applicant.ID,
		ReceivingOfficerID: applicant.ID,
		IssuedAt:           time.Now(),
	}
	require.NoError(t, db.Create(&transaction).Error)

	err := svc.DeleteDraft(draft.ID, applicant.ID)
	assert.True(t, apperrors.IsPrecondition(err))
}
