// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/config"
	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

// NotificationService persists in-app notification rows and delivers email
// copies through SendGrid. Every method is best-effort: failures are logged
// and never propagated to the operation that triggered the notification.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Workflow notifications

func (s *NotificationService) NotifyApplicationSubmitted(applicant *models.User, resourceType string, resourceID uuid.UUID) {
	s.notify(applicant, models.NotificationTypeApplicationSubmitted,
		"Application Submitted",
		"Your application has been submitted and is awaiting support review.",
		resourceType, resourceID, nil)
}

func (s *NotificationService) NotifyApprovalRequested(officer *models.User, resourceType string, resourceID uuid.UUID, stage models.ApprovalStage) {
	s.notify(officer, models.NotificationTypeApprovalRequested,
		"Approval Required",
		fmt.Sprintf("An application is awaiting your decision at the %s stage.", stage),
		resourceType, resourceID, map[string]interface{}{
			"Stage":    string(stage),
			"QueueURL": fmt.Sprintf("%s/approvals", s.config.Frontend.BaseURL),
		})
}

func (s *NotificationService) NotifyApplicationApproved(applicant *models.User, resourceType string, resourceID uuid.UUID) {
	s.notify(applicant, models.NotificationTypeApplicationApproved,
		"Application Approved",
		"Your application has been approved.",
		resourceType, resourceID, nil)
}

func (s *NotificationService) NotifyApplicationRejected(applicant *models.User, resourceType string, resourceID uuid.UUID, reason string) {
	s.notify(applicant, models.NotificationTypeApplicationRejected,
		"Application Rejected",
		fmt.Sprintf("Your application has been rejected. Reason: %s", reason),
		resourceType, resourceID, map[string]interface{}{"Reason": reason})
}

func (s *NotificationService) NotifyReadyForIssuance(staff *models.User, application *models.LoanApplication) {
	s.notify(staff, models.NotificationTypeReadyForIssuance,
		"Loan Ready for Issuance",
		fmt.Sprintf("Loan application by %s for %s has been approved and is ready for equipment issuance.",
			application.Applicant.FullName(), application.Location),
		models.ApprovableTypeLoan, application.ID, nil)
}

func (s *NotificationService) NotifyEquipmentIssued(applicant *models.User, transaction *models.LoanTransaction) {
	s.notify(applicant, models.NotificationTypeEquipmentIssued,
		"Equipment Issued",
		fmt.Sprintf("Equipment %s has been issued against your loan application.", transaction.Equipment.TagID),
		models.ApprovableTypeLoan, transaction.LoanApplicationID, nil)
}

func (s *NotificationService) NotifyEquipmentReturned(applicant *models.User, transaction *models.LoanTransaction) {
	s.notify(applicant, models.NotificationTypeEquipmentReturned,
		"Equipment Return Recorded",
		fmt.Sprintf("The return of equipment %s has been recorded.", transaction.Equipment.TagID),
		models.ApprovableTypeLoan, transaction.LoanApplicationID, nil)
}

func (s *NotificationService) NotifyLoanOverdue(applicant *models.User, application *models.LoanApplication) {
	s.notify(applicant, models.NotificationTypeLoanOverdue,
		"Equipment Loan Overdue",
		fmt.Sprintf("Your equipment loan for %s was due on %s. Please return the outstanding items.",
			application.Location, application.LoanEndDate.Format("2006-01-02")),
		models.ApprovableTypeLoan, application.ID, nil)
}

func (s *NotificationService) NotifyApprovalReminder(officer *models.User, pendingCount int64) {
	s.notify(officer, models.NotificationTypeApprovalReminder,
		"Pending Approvals Reminder",
		fmt.Sprintf("You have %d application(s) awaiting your decision.", pendingCount),
		"", uuid.Nil, nil)
}

// Provisioning notifications

func (s *NotificationService) SendWelcomeNotification(user *models.User, assignedEmail string) {
	s.notify(user, models.NotificationTypeProvisioningWelcome,
		"MOTAC Email Account Ready",
		fmt.Sprintf("Your MOTAC email account %s has been created. Initial credentials will be provided by the ICT helpdesk.", assignedEmail),
		"", uuid.Nil, map[string]interface{}{"AssignedEmail": assignedEmail})
}

func (s *NotificationService) NotifyProvisioningFailed(admin *models.User, application *models.EmailApplication, reason string) {
	s.notify(admin, models.NotificationTypeProvisioningFailed,
		"Email Provisioning Failed",
		fmt.Sprintf("Provisioning for application %s failed: %s", application.ID, reason),
		models.ApprovableTypeEmail, application.ID, map[string]interface{}{"Reason": reason})
}

// notify writes the in-app row and sends the email copy. Both legs are
// independent; a failure in one does not stop the other.
func (s *NotificationService) notify(user *models.User, notificationType, title, message, resourceType string, resourceID uuid.UUID, data map[string]interface{}) {
	if user == nil {
		return
	}

	notification := &models.Notification{
		UserID:              user.ID,
		Type:                notificationType,
		Title:               title,
		Message:             message,
		RelatedResourceType: resourceType,
	}
	if resourceID != uuid.Nil {
		notification.RelatedResourceID = &resourceID
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": user.ID,
			"type":    notificationType,
		}).Error("Failed to persist notification")
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	data["RecipientName"] = user.FullName()
	data["Message"] = message

	body, err := s.renderTemplate(s.getEmailTemplate(notificationType).Body, data)
	if err != nil {
		logrus.WithError(err).Error("Failed to render notification email template")
		return
	}

	if err := s.sendEmail(user.PersonalEmail, user.FullName(), title, message, body); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": user.ID,
			"type":    notificationType,
		}).Warn("Failed to send notification email")
	}
}

func (s *NotificationService) sendEmail(to, toName, subject, plainText, htmlContent string) error {
	if s.config.Email.SendGridAPIKey == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery skipped (no API key)")
		return nil
	}

	from := mail.NewEmail(s.config.Email.FromName, s.config.Email.FromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.config.Email.SendGridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(notificationType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		models.NotificationTypeApprovalRequested: {
			Subject: "Approval Required",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Approval Required</h2>
	<p>Dear {{.RecipientName}},</p>
	<p>{{.Message}}</p>
	<a href="{{.QueueURL}}">View your approval queue</a>
	<p>MOTAC Resource Management</p>
</body>
</html>`,
		},
		models.NotificationTypeProvisioningWelcome: {
			Subject: "MOTAC Email Account Ready",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome</h2>
	<p>Dear {{.RecipientName}},</p>
	<p>Your MOTAC email account <strong>{{.AssignedEmail}}</strong> has been created.</p>
	<p>Initial credentials will be provided by the ICT helpdesk.</p>
	<p>MOTAC Resource Management</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[notificationType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Dear {{.RecipientName}},</p>
	<p>{{.Message}}</p>
	<p>MOTAC Resource Management</p>
</body>
</html>`,
	}
}

// Inbox queries

// ListForUser pages through a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	result := utils.CreatePaginationResult(notifications, total, params)
	return &result, nil
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(notificationID, userID uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", now)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("notification", notificationID)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	now := time.Now()
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
