// internal/scheduler/scheduler.go
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/config"
	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/services"
)

// Scheduler runs the periodic housekeeping jobs: overdue loan detection,
// overdue reminders and stale approval reminders.
type Scheduler struct {
	cron          *cron.Cron
	db            *gorm.DB
	config        *config.Config
	notifications *services.NotificationService
}

func New(db *gorm.DB, cfg *config.Config, notifications *services.NotificationService) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		db:            db,
		config:        cfg,
		notifications: notifications,
	}
}

func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"mark_overdue_loans", s.config.Scheduler.MarkOverdueLoans, s.MarkOverdueLoans},
		{"send_overdue_reminders", s.config.Scheduler.SendOverdueReminders, s.SendOverdueReminders},
		{"remind_stale_pendings", s.config.Scheduler.RemindStalePendings, s.RemindStalePendings},
	}

	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() {
			logrus.WithField("job", job.name).Debug("Scheduler job starting")
			job.run()
		}); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
	}

	s.cron.Start()
	logrus.Info("Scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Scheduler stopped")
}

// MarkOverdueLoans notifies applicants of loans whose end date has passed
// with equipment still out, stamping each application so it is notified once.
func (s *Scheduler) MarkOverdueLoans() {
	var applications []models.LoanApplication
	err := s.db.
		Where("status IN ? AND loan_end_date < ? AND overdue_notified_at IS NULL",
			[]models.ApplicationStatus{
				models.ApplicationStatusPartiallyIssued,
				models.ApplicationStatusIssued,
			}, time.Now()).
		Preload("Applicant").
		Find(&applications).Error
	if err != nil {
		logrus.WithError(err).Error("Failed to query overdue loans")
		return
	}

	for i := range applications {
		application := &applications[i]
		s.notifications.NotifyLoanOverdue(&application.Applicant, application)

		now := time.Now()
		if err := s.db.Model(application).Update("overdue_notified_at", now).Error; err != nil {
			logrus.WithError(err).WithField("application_id", application.ID).
				Warn("Failed to stamp overdue notification")
		}
	}

	if len(applications) > 0 {
		logrus.WithField("count", len(applications)).Info("Overdue loans marked")
	}
}

// SendOverdueReminders re-notifies applicants of loans that remain overdue a
// day or more after the first notice.
func (s *Scheduler) SendOverdueReminders() {
	cutoff := time.Now().Add(-24 * time.Hour)

	var applications []models.LoanApplication
	err := s.db.
		Where("status IN ? AND overdue_notified_at IS NOT NULL AND overdue_notified_at < ?",
			[]models.ApplicationStatus{
				models.ApplicationStatusPartiallyIssued,
				models.ApplicationStatusIssued,
			}, cutoff).
		Preload("Applicant").
		Find(&applications).Error
	if err != nil {
		logrus.WithError(err).Error("Failed to query loans for overdue reminders")
		return
	}

	for i := range applications {
		application := &applications[i]
		s.notifications.NotifyLoanOverdue(&application.Applicant, application)

		now := time.Now()
		if err := s.db.Model(application).Update("overdue_notified_at", now).Error; err != nil {
			logrus.WithError(err).WithField("application_id", application.ID).
				Warn("Failed to stamp overdue reminder")
		}
	}
}

// RemindStalePendings nudges officers whose approval tasks have sat pending
// longer than the configured age.
func (s *Scheduler) RemindStalePendings() {
	cutoff := time.Now().Add(-time.Duration(s.config.Scheduler.StalePendingAgeHours) * time.Hour)

	rows := []struct {
		OfficerID string
		Count     int64
	}{}
	err := s.db.Model(&models.Approval{}).
		Select("officer_id, count(*) as count").
		Where("status = ? AND created_at < ?", models.ApprovalStatusPending, cutoff).
		Group("officer_id").
		Scan(&rows).Error
	if err != nil {
		logrus.WithError(err).Error("Failed to query stale pending approvals")
		return
	}

	for _, row := range rows {
		var officer models.User
		if err := s.db.First(&officer, "id = ?", row.OfficerID).Error; err != nil {
			logrus.WithError(err).WithField("officer_id", row.OfficerID).
				Warn("Failed to load officer for approval reminder")
			continue
		}
		s.notifications.NotifyApprovalReminder(&officer, row.Count)
	}

	if len(rows) > 0 {
		logrus.WithField("officers", len(rows)).Info("Stale approval reminders sent")
	}
}
