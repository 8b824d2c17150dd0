// internal/services/storage_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/config"
	"github.com/izzatfirdaus/motac-rms/internal/models"
)

const maxAttachmentSize = 10 << 20 // 10 MB

var allowedAttachmentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// StorageService uploads application attachments to S3 and tracks their
// metadata rows.
type StorageService struct {
	db       *gorm.DB
	config   *config.Config
	s3Client *s3.S3
	uploader *s3manager.Uploader
}

func NewStorageService(db *gorm.DB, cfg *config.Config) (*StorageService, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		db:       db,
		config:   cfg,
		s3Client: s3.New(sess),
		uploader: s3manager.NewUploader(sess),
	}, nil
}

// UploadAttachment stores the file under attachments/<type>/<id>/ and
// records the metadata row.
func (s *StorageService) UploadAttachment(attachableType string, attachableID, uploadedByID uuid.UUID, fileHeader *multipart.FileHeader) (*models.Attachment, error) {
	if attachableType != models.ApprovableTypeEmail && attachableType != models.ApprovableTypeLoan {
		return nil, apperrors.NewPrecondition("attachment", uuid.Nil, "upload",
			fmt.Sprintf("unsupported attachable type %q", attachableType))
	}
	if fileHeader.Size > maxAttachmentSize {
		return nil, apperrors.NewPrecondition("attachment", uuid.Nil, "upload",
			"file exceeds the 10 MB limit")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !allowedAttachmentTypes[mimeType] {
		return nil, apperrors.NewPrecondition("attachment", uuid.Nil, "upload",
			fmt.Sprintf("file type %q is not allowed", mimeType))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("attachments/%s/%s/%s%s", attachableType, attachableID, uuid.New(), ext)

	result, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return nil, apperrors.NewExternal("s3", "upload failed", err)
	}

	attachment := &models.Attachment{
		AttachableType: attachableType,
		AttachableID:   attachableID,
		UploadedByID:   uploadedByID,
		FileName:       fileHeader.Filename,
		StorageKey:     key,
		URL:            result.Location,
		Size:           fileHeader.Size,
		MimeType:       mimeType,
	}
	if err := s.db.Create(attachment).Error; err != nil {
		// The object is already in S3; the orphan is cleaned up best-effort.
		s.deleteObject(key)
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	return attachment, nil
}

// PresignedURL returns a short-lived download link for an attachment.
func (s *StorageService) PresignedURL(attachmentID uuid.UUID) (string, error) {
	var attachment models.Attachment
	if err := s.db.First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NewNotFound("attachment", attachmentID)
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(attachment.StorageKey),
	})
	url, err := req.Presign(15 * time.Minute)
	if err != nil {
		return "", apperrors.NewExternal("s3", "failed to presign URL", err)
	}
	return url, nil
}

// ListAttachments returns the metadata rows for one application.
func (s *StorageService) ListAttachments(attachableType string, attachableID uuid.UUID) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.
		Where("attachable_type = ? AND attachable_id = ?", attachableType, attachableID).
		Order("created_at").
		Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}

// DeleteAttachment removes the S3 object and its metadata row. Only the
// uploader may delete.
func (s *StorageService) DeleteAttachment(attachmentID, requestedByID uuid.UUID) error {
	var attachment models.Attachment
	if err := s.db.First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("attachment", attachmentID)
		}
		return fmt.Errorf("database error: %w", err)
	}
	if attachment.UploadedByID != requestedByID {
		return apperrors.NewPrecondition("attachment", attachment.ID, "delete",
			"only the uploader can delete an attachment")
	}

	s.deleteObject(attachment.StorageKey)
	if err := s.db.Delete(&attachment).Error; err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

func (s *StorageService) deleteObject(key string) {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to delete S3 object")
	}
}
