// internal/services/provisioning_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
)

func approvedEmailApplication(t *testing.T, db *gorm.DB, applicant *models.User) *models.EmailApplication {
	t.Helper()

	application := createEmailDraft(t, db, applicant, nil)
	require.NoError(t, db.Model(application).Update("status", models.ApplicationStatusApproved).Error)
	application.Status = models.ApplicationStatusApproved
	return application
}

func TestProvisionAccountGeneratesAddressFromName(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{}
	provisioning := newProvisioningFixture(t, db, mailbox)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	applicant.FirstName = "Ali"
	applicant.LastName = "Hassan"
	require.NoError(t, db.Save(applicant).Error)

	application := approvedEmailApplication(t, db, applicant)

	provisioned, err := provisioning.ProvisionAccount(application.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusProvisioned, provisioned.Status)
	require.NotNil(t, provisioned.FinalAssignedEmail)
	assert.Equal(t, "ali-hassan@motac.gov.my", *provisioned.FinalAssignedEmail)

	// The assigned identifiers are mirrored onto the user record.
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", applicant.ID).Error)
	require.NotNil(t, reloaded.MotacEmail)
	assert.Equal(t, "ali-hassan@motac.gov.my", *reloaded.MotacEmail)
	require.NotNil(t, reloaded.MotacUserID)
	assert.Equal(t, "ext-1", *reloaded.MotacUserID)
}

func TestProvisionAccountAppendsSuffixOnCollision(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{}
	provisioning := newProvisioningFixture(t, db, mailbox)

	existing := createUser(t, db, models.UserRoleStaff, 32)
	taken := "ali-hassan@motac.gov.my"
	require.NoError(t, db.Model(existing).Update("motac_email", taken).Error)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	applicant.FirstName = "Ali"
	applicant.LastName = "Hassan"
	require.NoError(t, db.Save(applicant).Error)

	application := approvedEmailApplication(t, db, applicant)

	provisioned, err := provisioning.ProvisionAccount(application.ID)
	require.NoError(t, err)
	require.NotNil(t, provisioned.FinalAssignedEmail)
	assert.Equal(t, "ali-hassan1@motac.gov.my", *provisioned.FinalAssignedEmail)
}

func TestProvisionAccountPrefersProposedEmail(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{}
	provisioning := newProvisioningFixture(t, db, mailbox)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	application := createEmailDraft(t, db, applicant, nil)
	require.NoError(t, db.Model(application).Updates(map[string]interface{}{
		"status":         models.ApplicationStatusApproved,
		"proposed_email": "unit.mailbox@motac.gov.my",
	}).Error)

	_, err := provisioning.ProvisionAccount(application.ID)
	require.NoError(t, err)

	require.Len(t, mailbox.requests, 1)
	assert.Equal(t, "unit.mailbox@motac.gov.my", mailbox.requests[0].Email)
}

func TestProvisionAccountSkipsDisallowedStatus(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{}
	provisioning := newProvisioningFixture(t, db, mailbox)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	draft := createEmailDraft(t, db, applicant, nil)

	result, err := provisioning.ProvisionAccount(draft.ID)
	require.NoError(t, err)

	// Stale trigger: nothing happens, nothing fails.
	assert.Equal(t, models.ApplicationStatusDraft, result.Status)
	assert.Empty(t, mailbox.requests)
}

func TestProvisionAccountMarksFailureOnAPIError(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{err: errors.New("connection refused")}
	provisioning := newProvisioningFixture(t, db, mailbox)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	admin := createUser(t, db, models.UserRoleITAdmin, 41)
	application := approvedEmailApplication(t, db, applicant)

	_, err := provisioning.ProvisionAccount(application.ID)
	assert.True(t, apperrors.IsExternal(err))

	var reloaded models.EmailApplication
	require.NoError(t, db.First(&reloaded, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusProvisioningFailed, reloaded.Status)
	assert.Contains(t, reloaded.RejectionReason, "connection refused")

	var failures []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?",
		admin.ID, models.NotificationTypeProvisioningFailed).
		Find(&failures).Error)
	assert.Len(t, failures, 1)
}

func TestProvisionAccountRejectsInvalidProposedEmail(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{}
	provisioning := newProvisioningFixture(t, db, mailbox)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	application := createEmailDraft(t, db, applicant, nil)
	require.NoError(t, db.Model(application).Updates(map[string]interface{}{
		"status":         models.ApplicationStatusApproved,
		"proposed_email": "not an address",
	}).Error)

	_, err := provisioning.ProvisionAccount(application.ID)
	assert.True(t, apperrors.IsPrecondition(err))

	var reloaded models.EmailApplication
	require.NoError(t, db.First(&reloaded, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusProvisioningFailed, reloaded.Status)
	assert.Empty(t, mailbox.requests)
}

func TestProvisionAccountHonoursUpstreamAssignedAddress(t *testing.T) {
	db := setupTestDB(t)
	mailbox := &fakeMailboxClient{result: &MailboxAccountResult{
		Success:       true,
		AssignedEmail: "ali.hassan2@motac.gov.my",
		ExternalID:    "ext-42",
	}}
	provisioning := newProvisioningFixture(t, db, mailbox)

	applicant := createUser(t, db, models.UserRoleStaff, 32)
	application := approvedEmailApplication(t, db, applicant)

	provisioned, err := provisioning.ProvisionAccount(application.ID)
	require.NoError(t, err)
	require.NotNil(t, provisioned.FinalAssignedEmail)
	assert.Equal(t, "ali.hassan2@motac.gov.my", *provisioned.FinalAssignedEmail)
	require.NotNil(t, provisioned.FinalAssignedUserID)
	assert.Equal(t, "ext-42", *provisioned.FinalAssignedUserID)
}

func TestSlugifyName(t *testing.T) {
	cases := map[string]string{
		"Ali":          "ali",
		"Nur Aisyah":   "nur-aisyah",
		"O'Connor":     "o-connor",
		"  Jalil  ":    "jalil",
		"Abdul-Rahman": "abdul-rahman",
		"Tan@Lee":      "tan-lee",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, slugifyName(input), "input %q", input)
	}
}
