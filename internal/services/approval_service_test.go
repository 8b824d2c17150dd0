// internal/services/approval_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
)

func TestInitiateEmailWorkflow(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	draft := createEmailDraft(t, db, applicant, officer)

	submitted, err := workflow.InitiateEmailWorkflow(draft.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusPendingSupport, submitted.Status)
	assert.NotNil(t, submitted.CertifiedAt)

	approval := pendingApproval(t, db, models.ApprovableTypeEmail, draft.ID)
	assert.Equal(t, officer.ID, approval.OfficerID)
	assert.Equal(t, models.ApprovalStageSupportReview, approval.Stage)
}

func TestInitiateEmailWorkflowRequiresSupportingOfficer(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	draft := createEmailDraft(t, db, applicant, nil)

	_, err := workflow.InitiateEmailWorkflow(draft.ID)
	assert.True(t, apperrors.IsConfig(err))

	// The submission must not have committed.
	var reloaded models.EmailApplication
	require.NoError(t, db.First(&reloaded, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ApplicationStatusDraft, reloaded.Status)
}

func TestInitiateEmailWorkflowRejectsNonDraft(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	draft := createEmailDraft(t, db, applicant, officer)

	_, err := workflow.InitiateEmailWorkflow(draft.ID)
	require.NoError(t, err)

	_, err = workflow.InitiateEmailWorkflow(draft.ID)
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestInitiateLoanWorkflowPicksFirstEligibleApprover(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	createUser(t, db, models.UserRoleStaff, 38) // below minimum grade
	senior := createUser(t, db, models.UserRoleApprover, 48)
	lower := createUser(t, db, models.UserRoleApprover, 44)
	draft := createLoanDraft(t, db, applicant, 2)

	submitted, err := workflow.InitiateLoanWorkflow(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPendingSupport, submitted.Status)

	// Lowest eligible grade wins, not insertion order.
	approval := pendingApproval(t, db, models.ApprovableTypeLoan, draft.ID)
	assert.Equal(t, lower.ID, approval.OfficerID)
	assert.NotEqual(t, senior.ID, approval.OfficerID)
}

func TestInitiateLoanWorkflowNoEligibleApprover(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	draft := createLoanDraft(t, db, applicant, 1)

	_, err := workflow.InitiateLoanWorkflow(draft.ID)
	assert.True(t, apperrors.IsConfig(err))

	var reloaded models.LoanApplication
	require.NoError(t, db.First(&reloaded, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ApplicationStatusDraft, reloaded.Status)
}

func TestEmailSupportApprovalFansOutToAdmins(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	adminOne := createUser(t, db, models.UserRoleITAdmin, 41)
	adminTwo := createUser(t, db, models.UserRoleITAdmin, 41)
	draft := createEmailDraft(t, db, applicant, officer)

	_, err := workflow.InitiateEmailWorkflow(draft.ID)
	require.NoError(t, err)
	approval := pendingApproval(t, db, models.ApprovableTypeEmail, draft.ID)

	decided, err := workflow.RecordDecision(approval.ID, officer.ID, &RecordDecisionRequest{Decision: DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, decided.Status)
	assert.NotNil(t, decided.DecidedAt)

	var reloaded models.EmailApplication
	require.NoError(t, db.First(&reloaded, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ApplicationStatusPendingAdmin, reloaded.Status)

	var adminApprovals []models.Approval
	require.NoError(t, db.Where(
		"approvable_id = ? AND stage = ?", draft.ID, models.ApprovalStageAdminReview).
		Find(&adminApprovals).Error)
	require.Len(t, adminApprovals, 2)

	officers := map[string]bool{}
	for _, a := range adminApprovals {
		assert.Equal(t, models.ApprovalStatusPending, a.Status)
		officers[a.OfficerID.String()] = true
	}
	assert.True(t, officers[adminOne.ID.String()])
	assert.True(t, officers[adminTwo.ID.String()])
}

func TestEmailAdminApprovalProvisionsAccount(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{}
	workflow := newWorkflowFixture(t, db, mailbox)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	admin := createUser(t, db, models.UserRoleITAdmin, 41)
	draft := createEmailDraft(t, db, applicant, officer)

	_, err := workflow.InitiateEmailWorkflow(draft.ID)
	require.NoError(t, err)

	support := pendingApproval(t, db, models.ApprovableTypeEmail, draft.ID)
	_, err = workflow.RecordDecision(support.ID, officer.ID, &RecordDecisionRequest{Decision: DecisionApprove})
	require.NoError(t, err)

	adminReview := pendingApproval(t, db, models.ApprovableTypeEmail, draft.ID)
	_, err = workflow.RecordDecision(adminReview.ID, admin.ID, &RecordDecisionRequest{Decision: DecisionApprove})
	require.NoError(t, err)

	require.Len(t, mailbox.requests, 1)

	var reloaded models.EmailApplication
	require.NoError(t, db.First(&reloaded, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ApplicationStatusProvisioned, reloaded.Status)
	require.NotNil(t, reloaded.FinalAssignedEmail)
	assert.Contains(t, *reloaded.FinalAssignedEmail, "@motac.gov.my")
	assert.NotNil(t, reloaded.ProvisionedAt)
}

func TestRejectionIsTerminalAndRecordsReason(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	draft := createEmailDraft(t, db, applicant, officer)

	_, err := workflow.InitiateEmailWorkflow(draft.ID)
	require.NoError(t, err)
	approval := pendingApproval(t, db, models.ApprovableTypeEmail, draft.ID)

	_, err = workflow.RecordDecision(approval.ID, officer.ID, &RecordDecisionRequest{
		Decision: DecisionReject,
		Comments: "insufficient justification",
	})
	require.NoError(t, err)

	var reloaded models.EmailApplication
	require.NoError(t, db.First(&reloaded, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ApplicationStatusRejected, reloaded.Status)
	assert.Contains(t, reloaded.RejectionReason, "insufficient justification")
	assert.Contains(t, reloaded.RejectionReason, string(models.ApprovalStageSupportReview))
}

func TestRecordDecisionWrongOfficer(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	intruder := createUser(t, db, models.UserRoleApprover, 44)
	draft := createEmailDraft(t, db, applicant, officer)

	_, err := workflow.InitiateEmailWorkflow(draft.ID)
	require.NoError(t, err)
	approval := pendingApproval(t, db, models.ApprovableTypeEmail, draft.ID)

	_, err = workflow.RecordDecision(approval.ID, intruder.ID, &RecordDecisionRequest{Decision: DecisionApprove})
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestRecordDecisionTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	createUser(t, db, models.UserRoleITAdmin, 41)
	draft := createEmailDraft(t, db, applicant, officer)

	_, err := workflow.InitiateEmailWorkflow(draft.ID)
	require.NoError(t, err)
	approval := pendingApproval(t, db, models.ApprovableTypeEmail, draft.ID)

	_, err = workflow.RecordDecision(approval.ID, officer.ID, &RecordDecisionRequest{Decision: DecisionApprove})
	require.NoError(t, err)

	_, err = workflow.RecordDecision(approval.ID, officer.ID, &RecordDecisionRequest{Decision: DecisionApprove})
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestSiblingAdminDecisionLeavesStatusUnchanged(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{}
	workflow := newWorkflowFixture(t, db, mailbox)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	adminOne := createUser(t, db, models.UserRoleITAdmin, 41)
	adminTwo := createUser(t, db, models.UserRoleITAdmin, 41)
	draft := createEmailDraft(t, db, applicant, officer)

	_, err := workflow.InitiateEmailWorkflow(draft.ID)
	require.NoError(t, err)
	support := pendingApproval(t, db, models.ApprovableTypeEmail, draft.ID)
	_, err = workflow.RecordDecision(support.ID, officer.ID, &RecordDecisionRequest{Decision: DecisionApprove})
	require.NoError(t, err)

	var adminApprovals []models.Approval
	require.NoError(t, db.Where(
		"approvable_id = ? AND stage = ?", draft.ID, models.ApprovalStageAdminReview).
		Order("created_at").
		Find(&adminApprovals).Error)
	require.Len(t, adminApprovals, 2)

	first, second := adminApprovals[0], adminApprovals[1]
	firstOfficer := adminOne.ID
	secondOfficer := adminTwo.ID
	if first.OfficerID != firstOfficer {
		firstOfficer, secondOfficer = adminTwo.ID, adminOne.ID
	}

	_, err = workflow.RecordDecision(first.ID, firstOfficer, &RecordDecisionRequest{Decision: DecisionApprove})
	require.NoError(t, err)

	var afterFirst models.EmailApplication
	require.NoError(t, db.First(&afterFirst, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ApplicationStatusProvisioned, afterFirst.Status)

	// The sibling's later decision is recorded but does not move the
	// application out of its settled state.
	decided, err := workflow.RecordDecision(second.ID, secondOfficer, &RecordDecisionRequest{Decision: DecisionReject})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusRejected, decided.Status)

	var afterSecond models.EmailApplication
	require.NoError(t, db.First(&afterSecond, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ApplicationStatusProvisioned, afterSecond.Status)
}

func TestLoanSupportApprovalNotifiesAndApproves(t *testing.T) {
	db := setupTestDB(t)
	workflow := newWorkflowFixture(t, db, &fakeMailboxClient{})

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	officer := createUser(t, db, models.UserRoleApprover, 44)
	staff := createUser(t, db, models.UserRoleBPMStaff, 36)
	draft := createLoanDraft(t, db, applicant, 2)

	_, err := workflow.InitiateLoanWorkflow(draft.ID)
	require.NoError(t, err)
	approval := pendingApproval(t, db, models.ApprovableTypeLoan, draft.ID)

	_, err = workflow.RecordDecision(approval.ID, officer.ID, &RecordDecisionRequest{Decision: DecisionApprove})
	require.NoError(t, err)

	var reloaded models.LoanApplication
	require.NoError(t, db.First(&reloaded, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ApplicationStatusApproved, reloaded.Status)

	var readiness []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?",
		staff.ID, models.NotificationTypeReadyForIssuance).
		Find(&readiness).Error)
	assert.Len(t, readiness, 1)
}
