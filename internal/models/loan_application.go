// internal/models/loan_application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LoanApplication is a request to borrow ICT equipment for an official event.
type LoanApplication struct {
	BaseModel
	ApplicantID          uuid.UUID         `json:"applicant_id" gorm:"type:uuid;not null;index"`
	ResponsibleOfficerID *uuid.UUID        `json:"responsible_officer_id" gorm:"type:uuid;index"`
	Status               ApplicationStatus `json:"status" gorm:"type:varchar(30);default:'draft';index"`
	Purpose              string            `json:"purpose" gorm:"type:text;not null"`
	Location             string            `json:"location" gorm:"size:255;not null"`
	LoanStartDate        time.Time         `json:"loan_start_date" gorm:"not null"`
	LoanEndDate          time.Time         `json:"loan_end_date" gorm:"not null;index"`
	RejectionReason      string            `json:"rejection_reason,omitempty" gorm:"type:text"`

	// Applicant certification stamped on submission.
	CertifiedAt *time.Time `json:"certified_at"`

	// Set by the overdue scheduler once the loan end date passes with
	// equipment still out.
	OverdueNotifiedAt *time.Time `json:"overdue_notified_at"`

	// Relationships
	Applicant          User                  `json:"applicant,omitempty" gorm:"foreignKey:ApplicantID"`
	ResponsibleOfficer *User                 `json:"responsible_officer,omitempty" gorm:"foreignKey:ResponsibleOfficerID"`
	Items              []LoanApplicationItem `json:"items,omitempty" gorm:"foreignKey:LoanApplicationID"`
	Transactions       []LoanTransaction     `json:"transactions,omitempty" gorm:"foreignKey:LoanApplicationID"`
	Approvals          []Approval            `json:"approvals,omitempty" gorm:"polymorphic:Approvable"`
}

// LoanApplicationItem is one requested line: an equipment type and quantity.
type LoanApplicationItem struct {
	BaseModel
	LoanApplicationID uuid.UUID `json:"loan_application_id" gorm:"type:uuid;not null;index"`
	EquipmentType     string    `json:"equipment_type" gorm:"size:100;not null"`
	QuantityRequested int       `json:"quantity_requested" gorm:"not null"`
	Notes             string    `json:"notes,omitempty" gorm:"type:text"`
}

// TotalRequestedQuantity sums the requested units across all items.
func (a *LoanApplication) TotalRequestedQuantity() int {
	total := 0
	for _, item := range a.Items {
		total += item.QuantityRequested
	}
	return total
}
