// internal/handlers/attachment_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/izzatfirdaus/motac-rms/internal/services"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

type AttachmentHandler struct {
	storage *services.StorageService
}

func NewAttachmentHandler(storage *services.StorageService) *AttachmentHandler {
	return &AttachmentHandler{storage: storage}
}

// Upload returns the handler for POST /:id/attachments nested under an
// application resource.
func (h *AttachmentHandler) Upload(attachableType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		attachableID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.BadRequestResponse(c, "file form field is required", nil)
			return
		}

		attachment, err := h.storage.UploadAttachment(attachableType, attachableID, userID, fileHeader)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.CreatedResponse(c, attachment)
	}
}

// List returns the handler for GET /:id/attachments nested under an
// application resource.
func (h *AttachmentHandler) List(attachableType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		attachableID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		attachments, err := h.storage.ListAttachments(attachableType, attachableID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.SuccessResponse(c, attachments)
	}
}

// Download handles GET /api/v1/attachments/:id/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	url, err := h.storage.PresignedURL(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"url": url})
}

// Delete handles DELETE /api/v1/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.storage.DeleteAttachment(id, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
