// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notification row. Email delivery is layered on
// top of these; failure of either is never allowed to fail the operation
// that triggered it.
type Notification struct {
	BaseModel
	UserID              uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Type                string     `json:"type" gorm:"type:varchar(50);not null;index"`
	Title               string     `json:"title" gorm:"size:255;not null"`
	Message             string     `json:"message" gorm:"type:text;not null"`
	RelatedResourceType string     `json:"related_resource_type,omitempty" gorm:"size:50"`
	RelatedResourceID   *uuid.UUID `json:"related_resource_id" gorm:"type:uuid"`
	ReadAt              *time.Time `json:"read_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification types emitted by the workflow engine and coordinators.
const (
	NotificationTypeApplicationSubmitted = "application_submitted"
	NotificationTypeApprovalRequested    = "approval_requested"
	NotificationTypeApplicationApproved  = "application_approved"
	NotificationTypeApplicationRejected  = "application_rejected"
	NotificationTypeReadyForIssuance     = "ready_for_issuance"
	NotificationTypeEquipmentIssued      = "equipment_issued"
	NotificationTypeEquipmentReturned    = "equipment_returned"
	NotificationTypeLoanOverdue          = "loan_overdue"
	NotificationTypeProvisioningWelcome  = "provisioning_welcome"
	NotificationTypeProvisioningFailed   = "provisioning_failed"
	NotificationTypeApprovalReminder     = "approval_reminder"
)
