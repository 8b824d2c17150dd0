// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/apperrors"
	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

// AdminService backs the administration endpoints: user management,
// dashboard statistics and provisioning retries.
type AdminService struct {
	db           *gorm.DB
	provisioning *ProvisioningService
}

func NewAdminService(db *gorm.DB, provisioning *ProvisioningService) *AdminService {
	return &AdminService{db: db, provisioning: provisioning}
}

type UpdateUserRequest struct {
	Role       *models.UserRole   `json:"role,omitempty" validate:"omitempty,oneof=staff approver it_admin bpm_staff admin"`
	GradeLevel *int               `json:"grade_level,omitempty" validate:"omitempty,min=1,max=60"`
	Status     *models.UserStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Department *string            `json:"department,omitempty" validate:"omitempty,max=255"`
	Position   *string            `json:"position,omitempty" validate:"omitempty,max=255"`
}

func (s *AdminService) UpdateUser(id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.GradeLevel != nil {
		user.GradeLevel = *req.GradeLevel
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Position != nil {
		user.Position = *req.Position
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
		"status":  user.Status,
	}).Info("User updated by administrator")

	return &user, nil
}

func (s *AdminService) ListUsers(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.User{})
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR personal_email ILIKE ? OR department ILIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	query = utils.ApplySort(query, params, []string{"created_at", "first_name", "grade_level", "role"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := utils.CreatePaginationResult(users, total, params)
	return &result, nil
}

// RetryProvisioning re-runs provisioning for a failed email application.
// The application is reset to approved first so the provisioning flow's
// status gate passes.
func (s *AdminService) RetryProvisioning(applicationID uuid.UUID) (*models.EmailApplication, error) {
	var application models.EmailApplication
	if err := s.db.First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("email_application", applicationID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if application.Status != models.ApplicationStatusProvisioningFailed {
		return nil, apperrors.NewPrecondition("email_application", application.ID, "retry provisioning",
			fmt.Sprintf("application status is %s", application.Status))
	}

	if err := s.db.Model(&application).
		Updates(map[string]interface{}{
			"status":           models.ApplicationStatusApproved,
			"rejection_reason": "",
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to reset application: %w", err)
	}

	return s.provisioning.ProvisionAccount(application.ID)
}

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	PendingEmailApplications int64            `json:"pending_email_applications"`
	PendingLoanApplications  int64            `json:"pending_loan_applications"`
	ProvisioningFailures     int64            `json:"provisioning_failures"`
	ActiveLoans              int64            `json:"active_loans"`
	OverdueLoans             int64            `json:"overdue_loans"`
	EquipmentByStatus        map[string]int64 `json:"equipment_by_status"`
	TotalUsers               int64            `json:"total_users"`
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{EquipmentByStatus: map[string]int64{}}
	pendingStatuses := []models.ApplicationStatus{
		models.ApplicationStatusPendingSupport,
		models.ApplicationStatusPendingAdmin,
	}

	if err := s.db.Model(&models.EmailApplication{}).
		Where("status IN ?", pendingStatuses).
		Count(&stats.PendingEmailApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count email applications: %w", err)
	}
	if err := s.db.Model(&models.LoanApplication{}).
		Where("status = ?", models.ApplicationStatusPendingSupport).
		Count(&stats.PendingLoanApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count loan applications: %w", err)
	}
	if err := s.db.Model(&models.EmailApplication{}).
		Where("status = ?", models.ApplicationStatusProvisioningFailed).
		Count(&stats.ProvisioningFailures).Error; err != nil {
		return nil, fmt.Errorf("failed to count provisioning failures: %w", err)
	}
	if err := s.db.Model(&models.LoanApplication{}).
		Where("status IN ?", []models.ApplicationStatus{
			models.ApplicationStatusPartiallyIssued,
			models.ApplicationStatusIssued,
		}).
		Count(&stats.ActiveLoans).Error; err != nil {
		return nil, fmt.Errorf("failed to count active loans: %w", err)
	}
	if err := s.db.Model(&models.LoanApplication{}).
		Where("status IN ? AND loan_end_date < NOW()", []models.ApplicationStatus{
			models.ApplicationStatusPartiallyIssued,
			models.ApplicationStatusIssued,
		}).
		Count(&stats.OverdueLoans).Error; err != nil {
		return nil, fmt.Errorf("failed to count overdue loans: %w", err)
	}
	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	rows := []struct {
		Status string
		Count  int64
	}{}
	if err := s.db.Model(&models.Equipment{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count equipment: %w", err)
	}
	for _, row := range rows {
		stats.EquipmentByStatus[row.Status] = row.Count
	}

	return stats, nil
}

// ListAuditLogs pages through the audit trail, newest first.
func (s *AdminService) ListAuditLogs(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.AuditLog{})
	if params.Search != "" {
		query = query.Where("action ILIKE ? OR resource_type ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	query = utils.ApplySort(query, params, []string{"created_at", "action"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	result := utils.CreatePaginationResult(logs, total, params)
	return &result, nil
}
