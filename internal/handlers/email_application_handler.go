// internal/handlers/email_application_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/services"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

type EmailApplicationHandler struct {
	applications *services.EmailApplicationService
}

func NewEmailApplicationHandler(applications *services.EmailApplicationService) *EmailApplicationHandler {
	return &EmailApplicationHandler{applications: applications}
}

// Create handles POST /api/v1/email-applications
func (h *EmailApplicationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateEmailApplicationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	application, err := h.applications.CreateDraft(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, application)
}

// Update handles PUT /api/v1/email-applications/:id
func (h *EmailApplicationHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateEmailApplicationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	application, err := h.applications.UpdateDraft(id, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, application)
}

// Submit handles POST /api/v1/email-applications/:id/submit
func (h *EmailApplicationHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	application, err := h.applications.Submit(id, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, application)
}

// Get handles GET /api/v1/email-applications/:id
func (h *EmailApplicationHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	application, err := h.applications.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Applicants see only their own applications; reviewer roles see all.
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	role, _ := utils.GetUserRoleFromContext(c)
	if application.ApplicantID != userID && !isReviewerRole(role) {
		utils.ForbiddenResponse(c, "")
		return
	}

	utils.SuccessResponse(c, application)
}

// List handles GET /api/v1/email-applications
func (h *EmailApplicationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := services.EmailApplicationFilter{
		Status: models.ApplicationStatus(c.Query("status")),
	}
	role, _ := utils.GetUserRoleFromContext(c)
	if !isReviewerRole(role) {
		filter.ApplicantID = userID
	} else if raw := c.Query("applicant_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.ApplicantID = id
		}
	}

	result, err := h.applications.List(filter, utils.GetPaginationParams(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// Delete handles DELETE /api/v1/email-applications/:id
func (h *EmailApplicationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.applications.DeleteDraft(id, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}

func isReviewerRole(role string) bool {
	switch models.UserRole(role) {
	case models.UserRoleApprover, models.UserRoleITAdmin, models.UserRoleBPMStaff, models.UserRoleAdmin:
		return true
	}
	return false
}
