// internal/models/attachment.go
package models

import "github.com/google/uuid"

// Attachment is a supporting document uploaded against an application
// (approval letters, event programmes). Stored in S3; this row is metadata.
type Attachment struct {
	BaseModel
	AttachableType string    `json:"attachable_type" gorm:"size:50;not null;index:idx_attachments_attachable"`
	AttachableID   uuid.UUID `json:"attachable_id" gorm:"type:uuid;not null;index:idx_attachments_attachable"`
	UploadedByID   uuid.UUID `json:"uploaded_by_id" gorm:"type:uuid;not null"`
	FileName       string    `json:"file_name" gorm:"size:255;not null"`
	StorageKey     string    `json:"storage_key" gorm:"size:512;not null"`
	URL            string    `json:"url" gorm:"size:1024"`
	Size           int64     `json:"size"`
	MimeType       string    `json:"mime_type" gorm:"size:100"`
}
