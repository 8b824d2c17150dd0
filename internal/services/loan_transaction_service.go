// internal/services/loan_transaction_service.go
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

// LoanTransactionService handles the physical custody legs of a loan:
// issuing equipment to the applicant and accepting it back.
type LoanTransactionService struct {
	db            *gorm.DB
	config        *config.Config
	notifications *NotificationService
}

func NewLoanTransactionService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *LoanTransactionService {
	return &LoanTransactionService{db: db, config: cfg, notifications: notifications}
}

type IssueEquipmentRequest struct {
	EquipmentID        uuid.UUID              `json:"equipment_id" validate:"required"`
	ReceivingOfficerID uuid.UUID              `json:"receiving_officer_id" validate:"required"`
	Accessories        map[string]interface{} `json:"accessories,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
}

type ProcessReturnRequest struct {
	ReturningOfficerID uuid.UUID              `json:"returning_officer_id" validate:"required"`
	Condition          models.ReturnCondition `json:"condition" validate:"required,oneof=good damaged lost"`
	Accessories        map[string]interface{} `json:"accessories,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
}

// IssueEquipment hands one unit to the applicant. The transaction row, the
// equipment status flip and the application status recompute commit together.
func (s *LoanTransactionService) IssueEquipment(applicationID, issuingOfficerID uuid.UUID, req *IssueEquipmentRequest) (*models.LoanTransaction, error) {
	var transaction models.LoanTransaction
	var application models.LoanApplication

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&application, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("loan_application", applicationID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if application.Status != models.ApplicationStatusApproved &&
			application.Status != models.ApplicationStatusPartiallyIssued {
			return apperrors.NewPrecondition("loan_application", application.ID, "issue equipment",
				fmt.Sprintf("application status is %s", application.Status))
		}

		var equipment models.Equipment
		if err := tx.First(&equipment, "id = ?", req.EquipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("equipment", req.EquipmentID)
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !equipment.IsAvailable() {
			return apperrors.NewPrecondition("equipment", equipment.ID, "issue",
				fmt.Sprintf("equipment status is %s", equipment.Status))
		}

		now := time.Now()
		transaction = models.LoanTransaction{
			LoanApplicationID:  application.ID,
			EquipmentID:        equipment.ID,
			Status:             models.TransactionStatusIssued,
			IssuingOfficerID:   issuingOfficerID,
			ReceivingOfficerID: req.ReceivingOfficerID,
			IssuedAt:           now,
			Accessories:        models.JSONB(req.Accessories),
			IssueNotes:         req.Notes,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return fmt.Errorf("failed to create loan transaction: %w", err)
		}

		equipment.Status = models.EquipmentStatusOnLoan
		if err := tx.Save(&equipment).Error; err != nil {
			return fmt.Errorf("failed to update equipment status: %w", err)
		}

		return s.recomputeApplicationStatus(tx, &application)
	})
	if err != nil {
		return nil, err
	}

	s.notifyApplicant(&application, func(applicant *models.User) {
		s.notifications.NotifyEquipmentIssued(applicant, &transaction)
	})

	return &transaction, nil
}

// ProcessReturn accepts one issued unit back. The equipment's next status is
// decided by the configured return-condition policy; the application becomes
// returned only once no issued transactions remain.
func (s *LoanTransactionService) ProcessReturn(transactionID, acceptingOfficerID uuid.UUID, req *ProcessReturnRequest) (*models.LoanTransaction, error) {
	var transaction models.LoanTransaction
	var application models.LoanApplication

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&transaction, "id = ?", transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("loan_transaction", transactionID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if transaction.Status != models.TransactionStatusIssued {
			return apperrors.NewPrecondition("loan_transaction", transaction.ID, "process return",
				fmt.Sprintf("transaction status is %s", transaction.Status))
		}

		now := time.Now()
		transaction.ReturningOfficerID = &req.ReturningOfficerID
		transaction.AcceptingOfficerID = &acceptingOfficerID
		transaction.ReturnedAt = &now
		condition := req.Condition
		transaction.ReturnCondition = &condition
		transaction.ReturnAccessories = models.JSONB(req.Accessories)
		transaction.ReturnNotes = req.Notes

		switch req.Condition {
		case models.ReturnConditionDamaged:
			transaction.Status = models.TransactionStatusDamaged
		case models.ReturnConditionLost:
			transaction.Status = models.TransactionStatusLost
		default:
			transaction.Status = models.TransactionStatusReturned
		}

		if err := tx.Save(&transaction).Error; err != nil {
			return fmt.Errorf("failed to record return: %w", err)
		}

		var equipment models.Equipment
		if err := tx.First(&equipment, "id = ?", transaction.EquipmentID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		equipment.Status = s.equipmentStatusAfterReturn(req.Condition)
		if req.Condition != models.ReturnConditionGood {
			equipment.Condition = string(req.Condition)
		}
		if err := tx.Save(&equipment).Error; err != nil {
			return fmt.Errorf("failed to update equipment status: %w", err)
		}

		if err := tx.Preload("Items").First(&application, "id = ?", transaction.LoanApplicationID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		return s.recomputeApplicationStatus(tx, &application)
	})
	if err != nil {
		return nil, err
	}

	s.notifyApplicant(&application, func(applicant *models.User) {
		s.notifications.NotifyEquipmentReturned(applicant, &transaction)
	})

	return &transaction, nil
}

// equipmentStatusAfterReturn maps the reported condition through the
// configured policy, with sensible defaults for unmapped conditions.
func (s *LoanTransactionService) equipmentStatusAfterReturn(condition models.ReturnCondition) models.EquipmentStatus {
	if status, ok := s.config.Workflow.ReturnConditionPolicy[string(condition)]; ok {
		return models.EquipmentStatus(status)
	}
	logrus.WithField("condition", condition).Warn("Return condition not covered by policy, defaulting to available")
	return models.EquipmentStatusAvailable
}

// recomputeApplicationStatus derives the loan application's status from its
// transaction history. It runs inside the issue/return transaction, after the
// transaction row exists, so at least one row is always counted. The
// application is returned as soon as no transaction remains in issued status,
// even when fewer units than requested were ever handed out.
func (s *LoanTransactionService) recomputeApplicationStatus(tx *gorm.DB, application *models.LoanApplication) error {
	var totalIssued int64
	if err := tx.Model(&models.LoanTransaction{}).
		Where("loan_application_id = ?", application.ID).
		Count(&totalIssued).Error; err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}

	var openIssued int64
	if err := tx.Model(&models.LoanTransaction{}).
		Where("loan_application_id = ? AND status = ?", application.ID, models.TransactionStatusIssued).
		Count(&openIssued).Error; err != nil {
		return fmt.Errorf("failed to count open transactions: %w", err)
	}

	requested := application.TotalRequestedQuantity()

	var next models.ApplicationStatus
	switch {
	case openIssued == 0:
		next = models.ApplicationStatusReturned
	case totalIssued >= int64(requested):
		next = models.ApplicationStatusIssued
	default:
		next = models.ApplicationStatusPartiallyIssued
	}

	if application.Status == next {
		return nil
	}
	application.Status = next
	if err := tx.Save(application).Error; err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return nil
}

func (s *LoanTransactionService) notifyApplicant(application *models.LoanApplication, send func(*models.User)) {
	var applicant models.User
	if err := s.db.First(&applicant, "id = ?", application.ApplicantID).Error; err != nil {
		logrus.WithError(err).WithField("applicant_id", application.ApplicantID).
			Warn("Failed to load applicant for notification")
		return
	}
	send(&applicant)
}

// GetTransaction loads one loan transaction with its equipment.
func (s *LoanTransactionService) GetTransaction(id uuid.UUID) (*models.LoanTransaction, error) {
	var transaction models.LoanTransaction
	if err := s.db.Preload("Equipment").First(&transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("loan_transaction", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &transaction, nil
}

// TransactionsForApplication lists an application's transactions, oldest first.
func (s *LoanTransactionService) TransactionsForApplication(applicationID uuid.UUID) ([]models.LoanTransaction, error) {
	var transactions []models.LoanTransaction
	err := s.db.Preload("Equipment").
		Where("loan_application_id = ?", applicationID).
		Order("issued_at").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
