// internal/services/provisioning_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/config"
	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

const maxEmailGenerationAttempts = 100

// ProvisioningService creates the MOTAC mailbox for a fully approved email
// application. The external call happens outside any database transaction:
// the application is committed to `processing` first, then the call is made,
// then a second transaction records the outcome.
type ProvisioningService struct {
	db            *gorm.DB
	config        *config.Config
	mailbox       MailboxClient
	users         *UserService
	notifications *NotificationService
}

func NewProvisioningService(db *gorm.DB, cfg *config.Config, mailbox MailboxClient, users *UserService, notifications *NotificationService) *ProvisioningService {
	return &ProvisioningService{
		db:            db,
		config:        cfg,
		mailbox:       mailbox,
		users:         users,
		notifications: notifications,
	}
}

// ProvisionAccount runs the full provisioning flow for the application.
// Applications whose status is outside the configured allow-list are returned
// unchanged: the flow is triggered both automatically by the workflow engine
// and manually by admins, so a stale trigger is a no-op rather than an error.
func (s *ProvisioningService) ProvisionAccount(applicationID uuid.UUID) (*models.EmailApplication, error) {
	var application models.EmailApplication
	if err := s.db.Preload("Applicant").First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("email_application", applicationID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !s.statusAllowed(application.Status) {
		logrus.WithFields(logrus.Fields{
			"application_id": application.ID,
			"status":         application.Status,
		}).Info("Provisioning skipped: application status not in allow-list")
		return &application, nil
	}

	targetEmail, err := s.resolveTargetEmail(&application)
	if err != nil {
		return nil, err
	}

	if !utils.ValidateEmailAddress(targetEmail) {
		reason := fmt.Sprintf("invalid target email address %q", targetEmail)
		if ferr := s.markFailed(&application, reason); ferr != nil {
			return nil, ferr
		}
		return &application, apperrors.NewPrecondition("email_application", application.ID, "provision account", reason)
	}

	// Commit `processing` before the external call so readers can see the
	// application is in flight and no lock is held across the network call.
	if err := s.transitionTo(&application, models.ApplicationStatusProcessing); err != nil {
		return nil, err
	}

	tempPassword, err := utils.GenerateTempPassword(s.config.Provisioning.TempPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate temp password: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.config.Provisioning.TimeoutSeconds)*time.Second)
	defer cancel()

	result, callErr := s.mailbox.CreateAccount(ctx, &MailboxAccountRequest{
		Email:        targetEmail,
		TempPassword: tempPassword,
		Profile: MailboxUserProfile{
			FullName:      application.Applicant.FullName(),
			PersonalEmail: application.Applicant.PersonalEmail,
			Department:    application.Applicant.Department,
			GradeLevel:    application.Applicant.GradeLevel,
		},
	})

	if callErr != nil || result == nil || !result.Success {
		reason := "provisioning API call failed"
		if callErr != nil {
			reason = callErr.Error()
		} else if result != nil && result.ErrorMessage != "" {
			reason = result.ErrorMessage
		}

		if ferr := s.markFailed(&application, reason); ferr != nil {
			return nil, ferr
		}
		s.notifyAdminsOfFailure(&application, reason)
		return &application, apperrors.NewExternal("mailbox provisioning", reason, callErr)
	}

	assignedEmail := result.AssignedEmail
	if assignedEmail == "" {
		assignedEmail = targetEmail
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		application.FinalAssignedEmail = &assignedEmail
		if result.ExternalID != "" {
			application.FinalAssignedUserID = &result.ExternalID
		}
		application.ProvisionedAt = &now
		application.Status = models.ApplicationStatusProvisioned
		application.RejectionReason = ""

		if err := tx.Save(&application).Error; err != nil {
			return fmt.Errorf("failed to record provisioning result: %w", err)
		}

		// Mirror the assigned identifiers onto the user record.
		updates := map[string]interface{}{"motac_email": assignedEmail}
		if result.ExternalID != "" {
			updates["motac_user_id"] = result.ExternalID
		}
		if err := tx.Model(&models.User{}).Where("id = ?", application.ApplicantID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to mirror assigned email onto user: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": application.ID,
		"assigned_email": assignedEmail,
	}).Info("Email account provisioned")

	// Welcome notification is best-effort and never rolls back provisioning.
	s.notifications.SendWelcomeNotification(&application.Applicant, assignedEmail)

	return &application, nil
}

func (s *ProvisioningService) statusAllowed(status models.ApplicationStatus) bool {
	for _, allowed := range s.config.Provisioning.AllowedStatuses {
		if string(status) == allowed {
			return true
		}
	}
	return false
}

// resolveTargetEmail picks the address to provision: the admin-assigned final
// address wins, then the applicant's proposed address, then a generated one.
func (s *ProvisioningService) resolveTargetEmail(application *models.EmailApplication) (string, error) {
	if application.FinalAssignedEmail != nil && *application.FinalAssignedEmail != "" {
		return *application.FinalAssignedEmail, nil
	}
	if application.ProposedEmail != "" {
		return application.ProposedEmail, nil
	}
	return s.generateEmailAddress(application.Applicant.FirstName, application.Applicant.LastName)
}

// generateEmailAddress builds firstname-lastname@domain, appending a numeric
// suffix when the base address is already assigned. Exhausting all attempts
// means the directory data needs operator attention.
func (s *ProvisioningService) generateEmailAddress(firstName, lastName string) (string, error) {
	base := slugifyName(firstName) + "-" + slugifyName(lastName)
	domain := s.config.Provisioning.EmailDomain

	for attempt := 0; attempt <= maxEmailGenerationAttempts; attempt++ {
		candidate := fmt.Sprintf("%s@%s", base, domain)
		if attempt > 0 {
			candidate = fmt.Sprintf("%s%d@%s", base, attempt, domain)
		}

		taken, err := s.emailTaken(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", apperrors.NewConfig("could not generate a unique email address for %s %s after %d attempts", firstName, lastName, maxEmailGenerationAttempts)
}

func (s *ProvisioningService) emailTaken(candidate string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("motac_email = ?", candidate).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existing addresses: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	if err := s.db.Model(&models.EmailApplication{}).Where("final_assigned_email = ?", candidate).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check assigned addresses: %w", err)
	}
	return count > 0, nil
}

func (s *ProvisioningService) markFailed(application *models.EmailApplication, reason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		application.Status = models.ApplicationStatusProvisioningFailed
		application.RejectionReason = reason
		if err := tx.Save(application).Error; err != nil {
			return fmt.Errorf("failed to record provisioning failure: %w", err)
		}
		return nil
	})
}

func (s *ProvisioningService) notifyAdminsOfFailure(application *models.EmailApplication, reason string) {
	admins, err := s.users.UsersByRole(models.UserRoleITAdmin)
	if err != nil {
		logrus.WithError(err).Error("Failed to look up admins for provisioning-failure notification")
		return
	}
	for i := range admins {
		s.notifications.NotifyProvisioningFailed(&admins[i], application, reason)
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugifyName lowercases a name part and collapses anything that is not
// a letter or digit into single hyphens.
func slugifyName(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func (s *ProvisioningService) transitionTo(application *models.EmailApplication, status models.ApplicationStatus) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		application.Status = status
		if err := tx.Save(application).Error; err != nil {
			return fmt.Errorf("failed to transition application to %s: %w", status, err)
		}
		return nil
	})
}
