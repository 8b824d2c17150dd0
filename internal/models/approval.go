// internal/models/approval.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Approvable type discriminators for the polymorphic approval relation.
const (
	ApprovableTypeEmail = "email_applications"
	ApprovableTypeLoan  = "loan_applications"
)

// Approval is one decision record in a multi-stage sign-off chain. It is
// created when an application enters a stage, decided exactly once, and never
// deleted: the rows form the audit trail of the whole chain.
type Approval struct {
	BaseModel
	ApprovableType string         `json:"approvable_type" gorm:"size:50;not null;index:idx_approvals_approvable"`
	ApprovableID   uuid.UUID      `json:"approvable_id" gorm:"type:uuid;not null;index:idx_approvals_approvable"`
	OfficerID      uuid.UUID      `json:"officer_id" gorm:"type:uuid;not null;index"`
	Stage          ApprovalStage  `json:"stage" gorm:"type:varchar(30);not null"`
	Status         ApprovalStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Comments       string         `json:"comments,omitempty" gorm:"type:text"`
	DecidedAt      *time.Time     `json:"decided_at"`

	// Relationships
	Officer User `json:"officer,omitempty" gorm:"foreignKey:OfficerID"`
}

func (a *Approval) IsPending() bool {
	return a.Status == ApprovalStatusPending
}
