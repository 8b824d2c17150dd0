// internal/handlers/common.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

// respondServiceError maps the service-layer error taxonomy onto HTTP:
// not-found to 404, failed preconditions to 422, configuration gaps to 503,
// upstream failures to 502, anything else to 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		utils.ErrorResponse(c, 404, "NOT_FOUND", err.Error(), nil)
	case apperrors.IsPrecondition(err):
		utils.UnprocessableResponse(c, err.Error())
	case apperrors.IsConfig(err):
		logrus.WithError(err).Error("Configuration error")
		utils.ErrorResponse(c, 503, "CONFIGURATION_ERROR", err.Error(), nil)
	case apperrors.IsExternal(err):
		logrus.WithError(err).Error("External service error")
		utils.ErrorResponse(c, 502, "EXTERNAL_SERVICE_ERROR", err.Error(), nil)
	default:
		logrus.WithError(err).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}

// currentUserID parses the authenticated caller's ID off the context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a UUID path parameter, responding 400 on malformed input.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name+" parameter", nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindAndValidate binds the JSON body and runs struct validation.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return false
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return false
	}
	return true
}
