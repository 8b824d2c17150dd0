// internal/handlers/equipment_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/services"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

type EquipmentHandler struct {
	equipment *services.EquipmentService
}

func NewEquipmentHandler(equipment *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment}
}

// Create handles POST /api/v1/equipment
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req services.CreateEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	equipment, err := h.equipment.Create(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, equipment)
}

// Update handles PUT /api/v1/equipment/:id
func (h *EquipmentHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	equipment, err := h.equipment.Update(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, equipment)
}

// Get handles GET /api/v1/equipment/:id
func (h *EquipmentHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	equipment, err := h.equipment.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, equipment)
}

// List handles GET /api/v1/equipment
func (h *EquipmentHandler) List(c *gin.Context) {
	filter := services.EquipmentFilter{
		AssetType: c.Query("asset_type"),
		Status:    models.EquipmentStatus(c.Query("status")),
	}

	result, err := h.equipment.List(filter, utils.GetPaginationParams(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// Available handles GET /api/v1/equipment/available
func (h *EquipmentHandler) Available(c *gin.Context) {
	assetType := c.Query("asset_type")
	if assetType == "" {
		utils.BadRequestResponse(c, "asset_type query parameter is required", nil)
		return
	}

	equipment, err := h.equipment.AvailableByType(assetType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, equipment)
}

// Delete handles DELETE /api/v1/equipment/:id
func (h *EquipmentHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.equipment.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
