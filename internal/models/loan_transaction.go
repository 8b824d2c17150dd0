// internal/models/loan_transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LoanTransaction records one equipment unit handed out against a loan
// application. Created on issuance, mutated exactly once on return, then
// immutable history.
type LoanTransaction struct {
	BaseModel
	LoanApplicationID  uuid.UUID         `json:"loan_application_id" gorm:"type:uuid;not null;index"`
	EquipmentID        uuid.UUID         `json:"equipment_id" gorm:"type:uuid;not null;index"`
	Status             TransactionStatus `json:"status" gorm:"type:varchar(20);default:'issued';index"`
	IssuingOfficerID   uuid.UUID         `json:"issuing_officer_id" gorm:"type:uuid;not null"`
	ReceivingOfficerID uuid.UUID         `json:"receiving_officer_id" gorm:"type:uuid;not null"`
	IssuedAt           time.Time         `json:"issued_at" gorm:"not null"`
	Accessories        JSONB             `json:"accessories,omitempty" gorm:"type:jsonb"`
	IssueNotes         string            `json:"issue_notes,omitempty" gorm:"type:text"`

	// Return leg, populated by ProcessReturn.
	ReturningOfficerID *uuid.UUID       `json:"returning_officer_id" gorm:"type:uuid"`
	AcceptingOfficerID *uuid.UUID       `json:"accepting_officer_id" gorm:"type:uuid"`
	ReturnedAt         *time.Time       `json:"returned_at"`
	ReturnCondition    *ReturnCondition `json:"return_condition,omitempty" gorm:"type:varchar(20)"`
	ReturnAccessories  JSONB            `json:"return_accessories,omitempty" gorm:"type:jsonb"`
	ReturnNotes        string           `json:"return_notes,omitempty" gorm:"type:text"`

	// Relationships
	LoanApplication  LoanApplication `json:"loan_application,omitempty" gorm:"foreignKey:LoanApplicationID"`
	Equipment        Equipment       `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
	IssuingOfficer   User            `json:"issuing_officer,omitempty" gorm:"foreignKey:IssuingOfficerID"`
	ReceivingOfficer User            `json:"receiving_officer,omitempty" gorm:"foreignKey:ReceivingOfficerID"`
}

func (t *LoanTransaction) IsOpen() bool {
	return t.Status == TransactionStatusIssued
}
