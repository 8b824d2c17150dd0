// internal/services/loan_application_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

// LoanApplicationService manages equipment loan applications from draft
// through submission. Workflow progression is delegated to ApprovalService.
type LoanApplicationService struct {
	db       *gorm.DB
	workflow *ApprovalService
}

func NewLoanApplicationService(db *gorm.DB, workflow *ApprovalService) *LoanApplicationService {
	return &LoanApplicationService{db: db, workflow: workflow}
}

type LoanItemRequest struct {
	EquipmentType     string `json:"equipment_type" validate:"required,max=100"`
	QuantityRequested int    `json:"quantity_requested" validate:"required,min=1,max=100"`
	Notes             string `json:"notes,omitempty"`
}

type CreateLoanApplicationRequest struct {
	Purpose              string            `json:"purpose" validate:"required,min=10,max=2000"`
	Location             string            `json:"location" validate:"required,max=255"`
	LoanStartDate        time.Time         `json:"loan_start_date" validate:"required"`
	LoanEndDate          time.Time         `json:"loan_end_date" validate:"required"`
	ResponsibleOfficerID *uuid.UUID        `json:"responsible_officer_id,omitempty"`
	Items                []LoanItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateLoanApplicationRequest struct {
	Purpose              *string           `json:"purpose,omitempty" validate:"omitempty,min=10,max=2000"`
	Location             *string           `json:"location,omitempty" validate:"omitempty,max=255"`
	LoanStartDate        *time.Time        `json:"loan_start_date,omitempty"`
	LoanEndDate          *time.Time        `json:"loan_end_date,omitempty"`
	ResponsibleOfficerID *uuid.UUID        `json:"responsible_officer_id,omitempty"`
	Items                []LoanItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// CreateDraft creates a new draft loan application with its requested items.
func (s *LoanApplicationService) CreateDraft(applicantID uuid.UUID, req *CreateLoanApplicationRequest) (*models.LoanApplication, error) {
	if !req.LoanEndDate.After(req.LoanStartDate) {
		return nil, apperrors.NewPrecondition("loan_application", uuid.Nil, "create",
			"loan end date must be after the start date")
	}

	application := &models.LoanApplication{
		ApplicantID:          applicantID,
		ResponsibleOfficerID: req.ResponsibleOfficerID,
		Status:               models.ApplicationStatusDraft,
		Purpose:              req.Purpose,
		Location:             req.Location,
		LoanStartDate:        req.LoanStartDate,
		LoanEndDate:          req.LoanEndDate,
	}
	for _, item := range req.Items {
		application.Items = append(application.Items, models.LoanApplicationItem{
			EquipmentType:     item.EquipmentType,
			QuantityRequested: item.QuantityRequested,
			Notes:             item.Notes,
		})
	}

	if err := s.db.Create(application).Error; err != nil {
		return nil, fmt.Errorf("failed to create loan application: %w", err)
	}
	return application, nil
}

// UpdateDraft edits a draft in place. Replacing the item list replaces it
// wholesale.
func (s *LoanApplicationService) UpdateDraft(id, applicantID uuid.UUID, req *UpdateLoanApplicationRequest) (*models.LoanApplication, error) {
	application, err := s.getOwned(id, applicantID)
	if err != nil {
		return nil, err
	}

	if application.Status != models.ApplicationStatusDraft {
		return nil, apperrors.NewPrecondition("loan_application", application.ID, "update",
			"only draft applications can be edited")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.Purpose != nil {
			application.Purpose = *req.Purpose
		}
		if req.Location != nil {
			application.Location = *req.Location
		}
		if req.LoanStartDate != nil {
			application.LoanStartDate = *req.LoanStartDate
		}
		if req.LoanEndDate != nil {
			application.LoanEndDate = *req.LoanEndDate
		}
		if req.ResponsibleOfficerID != nil {
			application.ResponsibleOfficerID = req.ResponsibleOfficerID
		}
		if !application.LoanEndDate.After(application.LoanStartDate) {
			return apperrors.NewPrecondition("loan_application", application.ID, "update",
				"loan end date must be after the start date")
		}

		if req.Items != nil {
			if err := tx.Where("loan_application_id = ?", application.ID).
				Delete(&models.LoanApplicationItem{}).Error; err != nil {
				return fmt.Errorf("failed to replace items: %w", err)
			}
			application.Items = nil
			for _, item := range req.Items {
				application.Items = append(application.Items, models.LoanApplicationItem{
					LoanApplicationID: application.ID,
					EquipmentType:     item.EquipmentType,
					QuantityRequested: item.QuantityRequested,
					Notes:             item.Notes,
				})
			}
		}

		if err := tx.Save(application).Error; err != nil {
			return fmt.Errorf("failed to update loan application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return application, nil
}

// Submit moves the applicant's draft into the approval workflow.
func (s *LoanApplicationService) Submit(id, applicantID uuid.UUID) (*models.LoanApplication, error) {
	if _, err := s.getOwned(id, applicantID); err != nil {
		return nil, err
	}
	return s.workflow.InitiateLoanWorkflow(id)
}

// DeleteDraft removes a draft and its items. Applications with any loan
// transactions are never deletable, whatever their status.
func (s *LoanApplicationService) DeleteDraft(id, applicantID uuid.UUID) error {
	application, err := s.getOwned(id, applicantID)
	if err != nil {
		return err
	}
	if application.Status != models.ApplicationStatusDraft {
		return apperrors.NewPrecondition("loan_application", application.ID, "delete",
			"only draft applications can be deleted")
	}

	var transactionCount int64
	if err := s.db.Model(&models.LoanTransaction{}).
		Where("loan_application_id = ?", application.ID).
		Count(&transactionCount).Error; err != nil {
		return fmt.Errorf("failed to check transactions: %w", err)
	}
	if transactionCount > 0 {
		return apperrors.NewPrecondition("loan_application", application.ID, "delete",
			"application has loan transactions")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_application_id = ?", application.ID).
			Delete(&models.LoanApplicationItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		if err := tx.Delete(application).Error; err != nil {
			return fmt.Errorf("failed to delete loan application: %w", err)
		}
		return nil
	})
}

// Get loads an application with its items, transactions and approval history.
func (s *LoanApplicationService) Get(id uuid.UUID) (*models.LoanApplication, error) {
	var application models.LoanApplication
	err := s.db.
		Preload("Applicant").
		Preload("ResponsibleOfficer").
		Preload("Items").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("issued_at") }).
		Preload("Transactions.Equipment").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("loan_application", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &application, nil
}

type LoanApplicationFilter struct {
	ApplicantID uuid.UUID
	Status      models.ApplicationStatus
}

func (s *LoanApplicationService) List(filter LoanApplicationFilter, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.LoanApplication{})
	if filter.ApplicantID != uuid.Nil {
		query = query.Where("applicant_id = ?", filter.ApplicantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if params.Search != "" {
		query = query.Where("purpose ILIKE ? OR location ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count loan applications: %w", err)
	}

	var applications []models.LoanApplication
	query = utils.ApplySort(query, params, []string{"created_at", "status", "loan_start_date", "loan_end_date"})
	query = utils.ApplyPagination(query, params)
	if err := query.Preload("Applicant").Preload("Items").Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("failed to list loan applications: %w", err)
	}

	result := utils.CreatePaginationResult(applications, total, params)
	return &result, nil
}

func (s *LoanApplicationService) getOwned(id, applicantID uuid.UUID) (*models.LoanApplication, error) {
	var application models.LoanApplication
	if err := s.db.Preload("Items").First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("loan_application", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if application.ApplicantID != applicantID {
		return nil, apperrors.NewNotFound("loan_application", id)
	}
	return &application, nil
}
