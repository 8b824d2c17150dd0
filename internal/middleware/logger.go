// internal/middleware/logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/models"
)

// RequestLogger emits one structured log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
		} else if c.Writer.Status() >= 500 {
			entry.Error("Request failed")
		} else {
			entry.Info("Request handled")
		}
	}
}

// AuditTrail records successful mutating requests to the audit log.
// Failures to write audit rows are logged and otherwise ignored.
func AuditTrail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" || c.Writer.Status() >= 400 {
			return
		}

		entry := models.AuditLog{
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: c.FullPath(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
		}
		if raw, exists := c.Get("user_id"); exists {
			if idStr, ok := raw.(string); ok {
				if id, err := uuid.Parse(idStr); err == nil {
					entry.UserID = &id
				}
			}
		}

		if err := db.Create(&entry).Error; err != nil {
			logrus.WithError(err).Warn("Failed to write audit log entry")
		}
	}
}
