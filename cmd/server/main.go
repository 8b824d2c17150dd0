// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/config"
	"github.com/izzatfirdaus/motac-rms/internal/database"
	"github.com/izzatfirdaus/motac-rms/internal/i18n"
	"github.com/izzatfirdaus/motac-rms/internal/router"
	"github.com/izzatfirdaus/motac-rms/internal/scheduler"
	"github.com/izzatfirdaus/motac-rms/internal/services"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	setupLogging(cfg)
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	if err := i18n.Initialize(cfg.I18n.LocalesPath); err != nil {
		logrus.WithError(err).Warn("Failed to load translations, falling back to keys")
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.SeedInitialData(db); err != nil {
		logrus.WithError(err).Fatal("Failed to seed initial data")
	}

	svc := buildServices(cfg, db)

	sched := scheduler.New(db, cfg, svc.Notification)
	if err := sched.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start scheduler")
	}
	defer sched.Stop()

	engine := router.Setup(cfg, db, svc)
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Forced shutdown")
	}
}

func buildServices(cfg *config.Config, db *gorm.DB) *router.Services {
	users := services.NewUserService(db)
	notifications := services.NewNotificationService(db, cfg)
	mailbox := services.NewHTTPMailboxClient(cfg.Provisioning)
	provisioning := services.NewProvisioningService(db, cfg, mailbox, users, notifications)
	approvals := services.NewApprovalService(db, cfg, users, provisioning, notifications)
	transactions := services.NewLoanTransactionService(db, cfg, notifications)

	svc := &router.Services{
		Auth:             services.NewAuthService(db, cfg),
		Users:            users,
		EmailApplication: services.NewEmailApplicationService(db, approvals),
		LoanApplication:  services.NewLoanApplicationService(db, approvals),
		Approval:         approvals,
		Equipment:        services.NewEquipmentService(db),
		LoanTransaction:  transactions,
		Notification:     notifications,
		Admin:            services.NewAdminService(db, provisioning),
	}

	// Attachment storage is optional: without S3 credentials the upload
	// endpoints are simply not registered.
	if cfg.AWS.S3Bucket != "" {
		storage, err := services.NewStorageService(db, cfg)
		if err != nil {
			logrus.WithError(err).Warn("Attachment storage disabled")
		} else {
			svc.Storage = storage
		}
	}

	return svc
}

func setupLogging(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
	}
}
