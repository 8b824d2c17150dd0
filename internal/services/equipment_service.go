// internal/services/equipment_service.go
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

// EquipmentService manages the ICT equipment inventory.
type EquipmentService struct {
	db *gorm.DB
}

func NewEquipmentService(db *gorm.DB) *EquipmentService {
	return &EquipmentService{db: db}
}

type CreateEquipmentRequest struct {
	TagID     string `json:"tag_id" validate:"required,asset_tag"`
	AssetType string `json:"asset_type" validate:"required,max=100"`
	Brand     string `json:"brand,omitempty" validate:"max=100"`
	Model     string `json:"model,omitempty" validate:"max=100"`
	SerialNo  string `json:"serial_no,omitempty" validate:"max=100"`
	Notes     string `json:"notes,omitempty"`
}

type UpdateEquipmentRequest struct {
	AssetType *string                 `json:"asset_type,omitempty" validate:"omitempty,max=100"`
	Brand     *string                 `json:"brand,omitempty" validate:"omitempty,max=100"`
	Model     *string                 `json:"model,omitempty" validate:"omitempty,max=100"`
	SerialNo  *string                 `json:"serial_no,omitempty" validate:"omitempty,max=100"`
	Status    *models.EquipmentStatus `json:"status,omitempty" validate:"omitempty,oneof=available on_loan under_maintenance disposed"`
	Condition *string                 `json:"condition,omitempty" validate:"omitempty,max=50"`
	Notes     *string                 `json:"notes,omitempty"`
}

func (s *EquipmentService) Create(req *CreateEquipmentRequest) (*models.Equipment, error) {
	var existing models.Equipment
	err := s.db.Where("tag_id = ?", req.TagID).First(&existing).Error
	if err == nil {
		return nil, apperrors.NewPrecondition("equipment", existing.ID, "create",
			fmt.Sprintf("tag %s is already registered", req.TagID))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	equipment := &models.Equipment{
		TagID:     req.TagID,
		AssetType: req.AssetType,
		Brand:     req.Brand,
		Model:     req.Model,
		SerialNo:  req.SerialNo,
		Status:    models.EquipmentStatusAvailable,
		Condition: "good",
		Notes:     req.Notes,
	}
	if err := s.db.Create(equipment).Error; err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}
	return equipment, nil
}

func (s *EquipmentService) Update(id uuid.UUID, req *UpdateEquipmentRequest) (*models.Equipment, error) {
	equipment, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	// Units currently on loan keep their status until the return is processed.
	if req.Status != nil && equipment.Status == models.EquipmentStatusOnLoan &&
		*req.Status != models.EquipmentStatusOnLoan {
		return nil, apperrors.NewPrecondition("equipment", equipment.ID, "update status",
			"equipment is on loan; process the return first")
	}

	if req.AssetType != nil {
		equipment.AssetType = *req.AssetType
	}
	if req.Brand != nil {
		equipment.Brand = *req.Brand
	}
	if req.Model != nil {
		equipment.Model = *req.Model
	}
	if req.SerialNo != nil {
		equipment.SerialNo = *req.SerialNo
	}
	if req.Status != nil {
		equipment.Status = *req.Status
	}
	if req.Condition != nil {
		equipment.Condition = *req.Condition
	}
	if req.Notes != nil {
		equipment.Notes = *req.Notes
	}

	if err := s.db.Save(equipment).Error; err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}
	return equipment, nil
}

func (s *EquipmentService) Get(id uuid.UUID) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := s.db.First(&equipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("equipment", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &equipment, nil
}

type EquipmentFilter struct {
	AssetType string
	Status    models.EquipmentStatus
}

func (s *EquipmentService) List(filter EquipmentFilter, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Equipment{})
	if filter.AssetType != "" {
		query = query.Where("asset_type = ?", filter.AssetType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if params.Search != "" {
		query = query.Where("tag_id ILIKE ? OR brand ILIKE ? OR model ILIKE ? OR serial_no ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count equipment: %w", err)
	}

	var equipment []models.Equipment
	query = utils.ApplySort(query, params, []string{"created_at", "tag_id", "asset_type", "status"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}

	result := utils.CreatePaginationResult(equipment, total, params)
	return &result, nil
}

// AvailableByType lists issuable units of one asset type, for the issuance
// screen.
func (s *EquipmentService) AvailableByType(assetType string) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := s.db.
		Where("asset_type = ? AND status = ?", assetType, models.EquipmentStatusAvailable).
		Order("tag_id").
		Find(&equipment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available equipment: %w", err)
	}
	return equipment, nil
}

// Delete retires a unit from inventory. Units with loan history are kept for
// the audit trail and must be disposed instead.
func (s *EquipmentService) Delete(id uuid.UUID) error {
	equipment, err := s.Get(id)
	if err != nil {
		return err
	}
	if equipment.Status == models.EquipmentStatusOnLoan {
		return apperrors.NewPrecondition("equipment", equipment.ID, "delete", "equipment is on loan")
	}

	var transactionCount int64
	if err := s.db.Model(&models.LoanTransaction{}).
		Where("equipment_id = ?", equipment.ID).
		Count(&transactionCount).Error; err != nil {
		return fmt.Errorf("failed to check transactions: %w", err)
	}
	if transactionCount > 0 {
		return apperrors.NewPrecondition("equipment", equipment.ID, "delete",
			"equipment has loan history; mark it disposed instead")
	}

	if err := s.db.Delete(equipment).Error; err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}
	return nil
}
