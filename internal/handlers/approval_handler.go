// internal/handlers/approval_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/izzatfirdaus/motac-rms/internal/services"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

type ApprovalHandler struct {
	approvals *services.ApprovalService
}

func NewApprovalHandler(approvals *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

// Pending handles GET /api/v1/approvals/pending
func (h *ApprovalHandler) Pending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	approvals, err := h.approvals.PendingApprovalsForOfficer(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, approvals)
}

// Get handles GET /api/v1/approvals/:id
func (h *ApprovalHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	approval, err := h.approvals.GetApproval(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, approval)
}

// Decide handles POST /api/v1/approvals/:id/decision
func (h *ApprovalHandler) Decide(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.RecordDecisionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	approval, err := h.approvals.RecordDecision(id, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, approval)
}
