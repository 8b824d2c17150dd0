// internal/services/approval_service.go
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
)

// Decision is an approval outcome submitted by an officer.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ApprovableKind tags the two application variants sharing the approval chain.
type ApprovableKind string

const (
	ApprovableKindEmail ApprovableKind = "email"
	ApprovableKindLoan  ApprovableKind = "loan"
)

// Approvable is the tagged union the workflow engine dispatches on: exactly
// one of Email or Loan is set, matching Kind.
type Approvable struct {
	Kind  ApprovableKind
	Email *models.EmailApplication
	Loan  *models.LoanApplication
}

func (a *Approvable) ID() uuid.UUID {
	if a.Kind == ApprovableKindEmail {
		return a.Email.ID
	}
	return a.Loan.ID
}

func (a *Approvable) Status() models.ApplicationStatus {
	if a.Kind == ApprovableKindEmail {
		return a.Email.Status
	}
	return a.Loan.Status
}

func (a *Approvable) ApplicantID() uuid.UUID {
	if a.Kind == ApprovableKindEmail {
		return a.Email.ApplicantID
	}
	return a.Loan.ApplicantID
}

func (a *Approvable) TypeName() string {
	if a.Kind == ApprovableKindEmail {
		return models.ApprovableTypeEmail
	}
	return models.ApprovableTypeLoan
}

// ApproverResolver selects candidate approvers. Implementations must return
// deterministically ordered lists so "first eligible" is stable.
type ApproverResolver interface {
	UsersByRole(role models.UserRole) ([]models.User, error)
	UsersByMinGradeLevel(minGrade int) ([]models.User, error)
}

// transitionKey indexes the stage-transition table.
type transitionKey struct {
	Kind     ApprovableKind
	From     models.ApplicationStatus
	Decision Decision
}

// stageTransitions maps an approval outcome to the application's next status.
// Rejection is handled separately: it is terminal from any pending stage.
// Combinations absent from the table leave the status untouched.
var stageTransitions = map[transitionKey]models.ApplicationStatus{
	{ApprovableKindEmail, models.ApplicationStatusPendingSupport, DecisionApprove}: models.ApplicationStatusPendingAdmin,
	{ApprovableKindEmail, models.ApplicationStatusPendingAdmin, DecisionApprove}:   models.ApplicationStatusApproved,
	{ApprovableKindLoan, models.ApplicationStatusPendingSupport, DecisionApprove}:  models.ApplicationStatusApproved,
}

// nextStatus returns the status the application should move to, or ok=false
// when the combination has no transition.
func nextStatus(kind ApprovableKind, from models.ApplicationStatus, decision Decision) (models.ApplicationStatus, bool) {
	if decision == DecisionReject {
		if from.IsPendingStage() {
			return models.ApplicationStatusRejected, true
		}
		return "", false
	}
	to, ok := stageTransitions[transitionKey{kind, from, decision}]
	return to, ok
}

// ApprovalService is the workflow engine: it records officer decisions,
// advances application status through the stage-transition table, and fires
// the downstream side effects (admin-review fan-out, provisioning trigger,
// issuance notifications).
type ApprovalService struct {
	db            *gorm.DB
	config        *config.Config
	resolver      ApproverResolver
	provisioning  *ProvisioningService
	notifications *NotificationService
}

func NewApprovalService(db *gorm.DB, cfg *config.Config, resolver ApproverResolver, provisioning *ProvisioningService, notifications *NotificationService) *ApprovalService {
	return &ApprovalService{
		db:            db,
		config:        cfg,
		resolver:      resolver,
		provisioning:  provisioning,
		notifications: notifications,
	}
}

type RecordDecisionRequest struct {
	Decision Decision `json:"decision" validate:"required,oneof=approve reject"`
	Comments string   `json:"comments,omitempty"`
}

// RecordDecision applies an officer's decision to a pending approval. The
// approval mutation and any resulting application status change commit in one
// transaction; side effects run after the commit and cannot undo it.
func (s *ApprovalService) RecordDecision(approvalID, decidingUserID uuid.UUID, req *RecordDecisionRequest) (*models.Approval, error) {
	var approval models.Approval
	var approvable *Approvable
	var statusChanged bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&approval, "id = ?", approvalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("approval", approvalID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Preconditions are checked inside the transaction: under concurrent
		// decisions the loser observes a non-pending approval and fails here.
		if approval.Status != models.ApprovalStatusPending {
			return apperrors.NewPrecondition("approval", approval.ID, "record decision",
				"approval is no longer pending")
		}
		if approval.OfficerID != decidingUserID {
			return apperrors.NewPrecondition("approval", approval.ID, "record decision",
				"approval is not assigned to you")
		}

		var err error
		approvable, err = loadApprovable(tx, approval.ApprovableType, approval.ApprovableID)
		if err != nil {
			return err
		}

		now := time.Now()
		if req.Decision == DecisionApprove {
			approval.Status = models.ApprovalStatusApproved
		} else {
			approval.Status = models.ApprovalStatusRejected
		}
		approval.Comments = req.Comments
		approval.DecidedAt = &now

		if err := tx.Save(&approval).Error; err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}

		to, ok := nextStatus(approvable.Kind, approvable.Status(), req.Decision)
		if !ok {
			// No transition for this combination. The decision itself is
			// still recorded (e.g. a sibling admin-review approval after the
			// application already moved on).
			logrus.WithFields(logrus.Fields{
				"approval_id":    approval.ID,
				"application_id": approvable.ID(),
				"status":         approvable.Status(),
				"decision":       req.Decision,
			}).Warn("Decision recorded with no matching status transition")
			return nil
		}

		statusChanged = true
		return applyStatusChange(tx, approvable, to, &approval, req.Comments)
	})
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.dispatchPostDecisionEffects(approvable, req.Decision)
	}

	return &approval, nil
}

// applyStatusChange moves the application to its next status, recording the
// rejection reason when the decision ends the workflow.
func applyStatusChange(tx *gorm.DB, approvable *Approvable, to models.ApplicationStatus, approval *models.Approval, comments string) error {
	switch approvable.Kind {
	case ApprovableKindEmail:
		approvable.Email.Status = to
		if to == models.ApplicationStatusRejected {
			approvable.Email.RejectionReason = rejectionReason(approval, comments)
		}
		if err := tx.Save(approvable.Email).Error; err != nil {
			return fmt.Errorf("failed to update email application status: %w", err)
		}
	case ApprovableKindLoan:
		approvable.Loan.Status = to
		if to == models.ApplicationStatusRejected {
			approvable.Loan.RejectionReason = rejectionReason(approval, comments)
		}
		if err := tx.Save(approvable.Loan).Error; err != nil {
			return fmt.Errorf("failed to update loan application status: %w", err)
		}
	}
	return nil
}

func rejectionReason(approval *models.Approval, comments string) string {
	reason := fmt.Sprintf("Rejected at %s stage by officer %s", approval.Stage, approval.OfficerID)
	if comments != "" {
		reason += ": " + comments
	}
	return reason
}

// dispatchPostDecisionEffects runs the best-effort side effects after the
// decision has committed. Failures are logged; the recorded decision stands.
func (s *ApprovalService) dispatchPostDecisionEffects(approvable *Approvable, decision Decision) {
	switch {
	case approvable.Status() == models.ApplicationStatusRejected:
		s.notifyApplicant(approvable, func(applicant *models.User) {
			var reason string
			if approvable.Kind == ApprovableKindEmail {
				reason = approvable.Email.RejectionReason
			} else {
				reason = approvable.Loan.RejectionReason
			}
			s.notifications.NotifyApplicationRejected(applicant, approvable.TypeName(), approvable.ID(), reason)
		})

	case approvable.Kind == ApprovableKindEmail && approvable.Status() == models.ApplicationStatusPendingAdmin:
		s.fanOutAdminReview(approvable.Email)

	case approvable.Kind == ApprovableKindEmail && approvable.Status() == models.ApplicationStatusApproved:
		s.notifyApplicant(approvable, func(applicant *models.User) {
			s.notifications.NotifyApplicationApproved(applicant, approvable.TypeName(), approvable.ID())
		})
		if _, err := s.provisioning.ProvisionAccount(approvable.Email.ID); err != nil {
			// Provisioning failures are recorded on the application by the
			// provisioning flow itself; the approval decision stands.
			logrus.WithError(err).WithField("application_id", approvable.Email.ID).
				Error("Provisioning failed after final approval")
		}

	case approvable.Kind == ApprovableKindLoan && approvable.Status() == models.ApplicationStatusApproved:
		s.notifyApplicant(approvable, func(applicant *models.User) {
			s.notifications.NotifyApplicationApproved(applicant, approvable.TypeName(), approvable.ID())
		})
		s.notifyBPMStaff(approvable.Loan)
	}
}

// fanOutAdminReview creates one pending admin-review approval per IT admin.
// With no admins configured the workflow stalls deliberately: the application
// stays in pending_admin and an operator must intervene.
func (s *ApprovalService) fanOutAdminReview(application *models.EmailApplication) {
	admins, err := s.resolver.UsersByRole(models.UserRoleITAdmin)
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve IT admins for admin review")
		return
	}
	if len(admins) == 0 {
		logrus.WithField("application_id", application.ID).
			Error("CRITICAL: no it_admin users exist; admin review cannot proceed")
		return
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, admin := range admins {
			approval := &models.Approval{
				ApprovableType: models.ApprovableTypeEmail,
				ApprovableID:   application.ID,
				OfficerID:      admin.ID,
				Stage:          models.ApprovalStageAdminReview,
				Status:         models.ApprovalStatusPending,
			}
			if err := tx.Create(approval).Error; err != nil {
				return fmt.Errorf("failed to create admin-review approval: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("application_id", application.ID).
			Error("Failed to create admin-review approvals")
		return
	}

	for i := range admins {
		s.notifications.NotifyApprovalRequested(&admins[i], models.ApprovableTypeEmail, application.ID, models.ApprovalStageAdminReview)
	}
}

func (s *ApprovalService) notifyBPMStaff(application *models.LoanApplication) {
	staff, err := s.resolver.UsersByRole(models.UserRoleBPMStaff)
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve BPM staff for issuance notification")
		return
	}

	// Load the applicant for the notification text.
	if application.Applicant.ID == uuid.Nil {
		if err := s.db.First(&application.Applicant, "id = ?", application.ApplicantID).Error; err != nil {
			logrus.WithError(err).Warn("Failed to load applicant for issuance notification")
		}
	}

	for i := range staff {
		s.notifications.NotifyReadyForIssuance(&staff[i], application)
	}
}

func (s *ApprovalService) notifyApplicant(approvable *Approvable, send func(*models.User)) {
	var applicant models.User
	if err := s.db.First(&applicant, "id = ?", approvable.ApplicantID()).Error; err != nil {
		logrus.WithError(err).WithField("applicant_id", approvable.ApplicantID()).
			Warn("Failed to load applicant for notification")
		return
	}
	send(&applicant)
}

// InitiateEmailWorkflow submits a draft email application: it moves to
// pending_support and the pre-assigned supporting officer receives the first
// approval task, all in one transaction.
func (s *ApprovalService) InitiateEmailWorkflow(applicationID uuid.UUID) (*models.EmailApplication, error) {
	var application models.EmailApplication
	var officer models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("email_application", applicationID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if application.Status != models.ApplicationStatusDraft {
			return apperrors.NewPrecondition("email_application", application.ID, "submit",
				"application is not a draft")
		}

		if application.SupportingOfficerID == nil {
			return apperrors.NewConfig("email application %s has no supporting officer assigned", application.ID)
		}

		if err := tx.First(&officer, "id = ?", *application.SupportingOfficerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewConfig("supporting officer %s does not exist", *application.SupportingOfficerID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		now := time.Now()
		application.Status = models.ApplicationStatusPendingSupport
		application.CertifiedAt = &now
		if err := tx.Save(&application).Error; err != nil {
			return fmt.Errorf("failed to submit email application: %w", err)
		}

		approval := &models.Approval{
			ApprovableType: models.ApprovableTypeEmail,
			ApprovableID:   application.ID,
			OfficerID:      officer.ID,
			Stage:          models.ApprovalStageSupportReview,
			Status:         models.ApprovalStatusPending,
		}
		if err := tx.Create(approval).Error; err != nil {
			return fmt.Errorf("failed to create support-review approval: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyApprovalRequested(&officer, models.ApprovableTypeEmail, application.ID, models.ApprovalStageSupportReview)
	s.notifyApplicant(&Approvable{Kind: ApprovableKindEmail, Email: &application}, func(applicant *models.User) {
		s.notifications.NotifyApplicationSubmitted(applicant, models.ApprovableTypeEmail, application.ID)
	})

	return &application, nil
}

// InitiateLoanWorkflow submits a draft loan application. The first approver
// is the first active user at or above the configured minimum grade level.
// No eligible user is a configuration error: the submission does not commit.
func (s *ApprovalService) InitiateLoanWorkflow(applicationID uuid.UUID) (*models.LoanApplication, error) {
	var application models.LoanApplication
	var officer models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&application, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("loan_application", applicationID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if application.Status != models.ApplicationStatusDraft {
			return apperrors.NewPrecondition("loan_application", application.ID, "submit",
				"application is not a draft")
		}

		if len(application.Items) == 0 {
			return apperrors.NewPrecondition("loan_application", application.ID, "submit",
				"application has no requested items")
		}

		approvers, err := s.resolver.UsersByMinGradeLevel(s.config.Workflow.MinApproverGradeLevel)
		if err != nil {
			return err
		}
		if len(approvers) == 0 {
			return apperrors.NewConfig("no active user at or above grade %d is available to review loan applications",
				s.config.Workflow.MinApproverGradeLevel)
		}
		officer = approvers[0]

		now := time.Now()
		application.Status = models.ApplicationStatusPendingSupport
		application.CertifiedAt = &now
		if err := tx.Save(&application).Error; err != nil {
			return fmt.Errorf("failed to submit loan application: %w", err)
		}

		approval := &models.Approval{
			ApprovableType: models.ApprovableTypeLoan,
			ApprovableID:   application.ID,
			OfficerID:      officer.ID,
			Stage:          models.ApprovalStageSupportReview,
			Status:         models.ApprovalStatusPending,
		}
		if err := tx.Create(approval).Error; err != nil {
			return fmt.Errorf("failed to create support-review approval: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyApprovalRequested(&officer, models.ApprovableTypeLoan, application.ID, models.ApprovalStageSupportReview)
	s.notifyApplicant(&Approvable{Kind: ApprovableKindLoan, Loan: &application}, func(applicant *models.User) {
		s.notifications.NotifyApplicationSubmitted(applicant, models.ApprovableTypeLoan, application.ID)
	})

	return &application, nil
}

// GetApproval loads one approval with its officer.
func (s *ApprovalService) GetApproval(id uuid.UUID) (*models.Approval, error) {
	var approval models.Approval
	if err := s.db.Preload("Officer").First(&approval, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("approval", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &approval, nil
}

// PendingApprovalsForOfficer lists the officer's open approval tasks,
// oldest first.
func (s *ApprovalService) PendingApprovalsForOfficer(officerID uuid.UUID) ([]models.Approval, error) {
	var approvals []models.Approval
	err := s.db.
		Where("officer_id = ? AND status = ?", officerID, models.ApprovalStatusPending).
		Order("created_at").
		Find(&approvals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	return approvals, nil
}

// loadApprovable resolves the polymorphic approval target into the tagged union.
func loadApprovable(tx *gorm.DB, approvableType string, id uuid.UUID) (*Approvable, error) {
	switch approvableType {
	case models.ApprovableTypeEmail:
		var application models.EmailApplication
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("email_application", id)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &Approvable{Kind: ApprovableKindEmail, Email: &application}, nil
	case models.ApprovableTypeLoan:
		var application models.LoanApplication
		if err := tx.Preload("Items").First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("loan_application", id)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &Approvable{Kind: ApprovableKindLoan, Loan: &application}, nil
	default:
		return nil, fmt.Errorf("unknown approvable type %q", approvableType)
	}
}
