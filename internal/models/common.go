// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums

type UserRole string

const (
	UserRoleStaff    UserRole = "staff"
	UserRoleApprover UserRole = "approver"
	UserRoleITAdmin  UserRole = "it_admin"
	UserRoleBPMStaff UserRole = "bpm_staff"
	UserRoleAdmin    UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// ApplicationStatus covers both application variants. Email applications move
// draft -> pending_support -> pending_admin -> approved -> processing ->
// provisioned|provisioning_failed; loan applications move draft ->
// pending_support -> approved -> partially_issued -> issued -> returned.
// rejected is terminal from any pending stage.
type ApplicationStatus string

const (
	ApplicationStatusDraft              ApplicationStatus = "draft"
	ApplicationStatusPendingSupport     ApplicationStatus = "pending_support"
	ApplicationStatusPendingAdmin       ApplicationStatus = "pending_admin"
	ApplicationStatusApproved           ApplicationStatus = "approved"
	ApplicationStatusRejected           ApplicationStatus = "rejected"
	ApplicationStatusProcessing         ApplicationStatus = "processing"
	ApplicationStatusProvisioned        ApplicationStatus = "provisioned"
	ApplicationStatusProvisioningFailed ApplicationStatus = "provisioning_failed"
	ApplicationStatusPartiallyIssued    ApplicationStatus = "partially_issued"
	ApplicationStatusIssued             ApplicationStatus = "issued"
	ApplicationStatusReturned           ApplicationStatus = "returned"
)

var terminalApplicationStatuses = map[ApplicationStatus]bool{
	ApplicationStatusRejected:    true,
	ApplicationStatusProvisioned: true,
	ApplicationStatusReturned:    true,
}

func (s ApplicationStatus) IsTerminal() bool {
	return terminalApplicationStatuses[s]
}

func (s ApplicationStatus) IsPendingStage() bool {
	return s == ApplicationStatusPendingSupport || s == ApplicationStatusPendingAdmin
}

func (s ApplicationStatus) String() string {
	return string(s)
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// ApprovalStage labels the workflow step an approval record belongs to.
type ApprovalStage string

const (
	ApprovalStageSupportReview ApprovalStage = "support_review"
	ApprovalStageAdminReview   ApprovalStage = "admin_review"
)

type EquipmentStatus string

const (
	EquipmentStatusAvailable        EquipmentStatus = "available"
	EquipmentStatusOnLoan           EquipmentStatus = "on_loan"
	EquipmentStatusUnderMaintenance EquipmentStatus = "under_maintenance"
	EquipmentStatusDisposed         EquipmentStatus = "disposed"
)

type TransactionStatus string

const (
	TransactionStatusIssued   TransactionStatus = "issued"
	TransactionStatusReturned TransactionStatus = "returned"
	TransactionStatusDamaged  TransactionStatus = "damaged"
	TransactionStatusLost     TransactionStatus = "lost"
)

// ReturnCondition is the condition reported when equipment is handed back.
type ReturnCondition string

const (
	ReturnConditionGood    ReturnCondition = "good"
	ReturnConditionDamaged ReturnCondition = "damaged"
	ReturnConditionLost    ReturnCondition = "lost"
)
