// internal/services/email_application_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

// EmailApplicationService manages email account applications from draft
// through submission. Workflow progression is delegated to ApprovalService.
type EmailApplicationService struct {
	db       *gorm.DB
	workflow *ApprovalService
}

func NewEmailApplicationService(db *gorm.DB, workflow *ApprovalService) *EmailApplicationService {
	return &EmailApplicationService{db: db, workflow: workflow}
}

type CreateEmailApplicationRequest struct {
	Purpose             string     `json:"purpose" validate:"required,min=10,max=2000"`
	ProposedEmail       string     `json:"proposed_email,omitempty" validate:"omitempty,email"`
	GroupEmailRequest   bool       `json:"group_email_request"`
	SupportingOfficerID *uuid.UUID `json:"supporting_officer_id,omitempty"`
}

type UpdateEmailApplicationRequest struct {
	Purpose             *string    `json:"purpose,omitempty" validate:"omitempty,min=10,max=2000"`
	ProposedEmail       *string    `json:"proposed_email,omitempty" validate:"omitempty,email"`
	GroupEmailRequest   *bool      `json:"group_email_request,omitempty"`
	SupportingOfficerID *uuid.UUID `json:"supporting_officer_id,omitempty"`
}

// CreateDraft creates a new draft application for the applicant.
func (s *EmailApplicationService) CreateDraft(applicantID uuid.UUID, req *CreateEmailApplicationRequest) (*models.EmailApplication, error) {
	application := &models.EmailApplication{
		ApplicantID:         applicantID,
		Status:              models.ApplicationStatusDraft,
		Purpose:             req.Purpose,
		ProposedEmail:       req.ProposedEmail,
		GroupEmailRequest:   req.GroupEmailRequest,
		SupportingOfficerID: req.SupportingOfficerID,
	}
	if err := s.db.Create(application).Error; err != nil {
		return nil, fmt.Errorf("failed to create email application: %w", err)
	}
	return application, nil
}

// UpdateDraft edits a draft in place. Only drafts are editable.
func (s *EmailApplicationService) UpdateDraft(id, applicantID uuid.UUID, req *UpdateEmailApplicationRequest) (*models.EmailApplication, error) {
	application, err := s.getOwned(id, applicantID)
	if err != nil {
		return nil, err
	}

	if application.Status != models.ApplicationStatusDraft {
		return nil, apperrors.NewPrecondition("email_application", application.ID, "update",
			"only draft applications can be edited")
	}

	if req.Purpose != nil {
		application.Purpose = *req.Purpose
	}
	if req.ProposedEmail != nil {
		application.ProposedEmail = *req.ProposedEmail
	}
	if req.GroupEmailRequest != nil {
		application.GroupEmailRequest = *req.GroupEmailRequest
	}
	if req.SupportingOfficerID != nil {
		application.SupportingOfficerID = req.SupportingOfficerID
	}

	if err := s.db.Save(application).Error; err != nil {
		return nil, fmt.Errorf("failed to update email application: %w", err)
	}
	return application, nil
}

// Submit moves the applicant's draft into the approval workflow.
func (s *EmailApplicationService) Submit(id, applicantID uuid.UUID) (*models.EmailApplication, error) {
	if _, err := s.getOwned(id, applicantID); err != nil {
		return nil, err
	}
	return s.workflow.InitiateEmailWorkflow(id)
}

// DeleteDraft removes a draft. Submitted applications are part of the audit
// trail and cannot be deleted.
func (s *EmailApplicationService) DeleteDraft(id, applicantID uuid.UUID) error {
	application, err := s.getOwned(id, applicantID)
	if err != nil {
		return err
	}
	if application.Status != models.ApplicationStatusDraft {
		return apperrors.NewPrecondition("email_application", application.ID, "delete",
			"only draft applications can be deleted")
	}
	if err := s.db.Delete(application).Error; err != nil {
		return fmt.Errorf("failed to delete email application: %w", err)
	}
	return nil
}

// Get loads an application with its approval history.
func (s *EmailApplicationService) Get(id uuid.UUID) (*models.EmailApplication, error) {
	var application models.EmailApplication
	err := s.db.
		Preload("Applicant").
		Preload("SupportingOfficer").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("email_application", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &application, nil
}

// ListFilter narrows List; zero values mean no filter.
type EmailApplicationFilter struct {
	ApplicantID uuid.UUID
	Status      models.ApplicationStatus
}

func (s *EmailApplicationService) List(filter EmailApplicationFilter, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.EmailApplication{})
	if filter.ApplicantID != uuid.Nil {
		query = query.Where("applicant_id = ?", filter.ApplicantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if params.Search != "" {
		query = query.Where("purpose ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count email applications: %w", err)
	}

	var applications []models.EmailApplication
	query = utils.ApplySort(query, params, []string{"created_at", "status", "certified_at"})
	query = utils.ApplyPagination(query, params)
	if err := query.Preload("Applicant").Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("failed to list email applications: %w", err)
	}

	result := utils.CreatePaginationResult(applications, total, params)
	return &result, nil
}

func (s *EmailApplicationService) getOwned(id, applicantID uuid.UUID) (*models.EmailApplication, error) {
	var application models.EmailApplication
	if err := s.db.First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("email_application", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if application.ApplicantID != applicantID {
		return nil, apperrors.NewNotFound("email_application", id)
	}
	return &application, nil
}
