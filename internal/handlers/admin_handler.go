// internal/handlers/admin_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/izzatfirdaus/motac-rms/internal/services"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admin.GetDashboardStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	result, err := h.admin.ListUsers(utils.GetPaginationParams(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// UpdateUser handles PUT /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.admin.UpdateUser(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// RetryProvisioning handles POST /api/v1/admin/email-applications/:id/retry-provisioning
func (h *AdminHandler) RetryProvisioning(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	application, err := h.admin.RetryProvisioning(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, application)
}

// AuditLogs handles GET /api/v1/admin/audit-logs
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	result, err := h.admin.ListAuditLogs(utils.GetPaginationParams(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}
