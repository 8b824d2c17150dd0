// internal/models/email_application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailApplication is a request for a MOTAC email account. It passes through
// support review and admin review before the account is provisioned.
type EmailApplication struct {
	BaseModel
	ApplicantID         uuid.UUID         `json:"applicant_id" gorm:"type:uuid;not null;index"`
	SupportingOfficerID *uuid.UUID        `json:"supporting_officer_id" gorm:"type:uuid;index"`
	Status              ApplicationStatus `json:"status" gorm:"type:varchar(30);default:'draft';index"`
	Purpose             string            `json:"purpose" gorm:"type:text"`
	ProposedEmail       string            `json:"proposed_email" gorm:"size:255"`
	GroupEmailRequest   bool              `json:"group_email_request" gorm:"default:false"`

	// Set by admin review / provisioning.
	FinalAssignedEmail  *string    `json:"final_assigned_email,omitempty" gorm:"size:255"`
	FinalAssignedUserID *string    `json:"final_assigned_user_id,omitempty" gorm:"size:100"`
	ProvisionedAt       *time.Time `json:"provisioned_at"`
	RejectionReason     string     `json:"rejection_reason,omitempty" gorm:"type:text"`

	// Applicant certification stamped on submission.
	CertifiedAt *time.Time `json:"certified_at"`

	// Relationships
	Applicant         User       `json:"applicant,omitempty" gorm:"foreignKey:ApplicantID"`
	SupportingOfficer *User      `json:"supporting_officer,omitempty" gorm:"foreignKey:SupportingOfficerID"`
	Approvals         []Approval `json:"approvals,omitempty" gorm:"polymorphic:Approvable"`
}
