// internal/router/router.go
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/izzatfirdaus/motac-rms/internal/config"
	"github.com/izzatfirdaus/motac-rms/internal/handlers"
	"github.com/izzatfirdaus/motac-rms/internal/middleware"
	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/services"
)

// Services bundles the service layer for route wiring.
type Services struct {
	Auth             *services.AuthService
	Users            *services.UserService
	EmailApplication *services.EmailApplicationService
	LoanApplication  *services.LoanApplicationService
	Approval         *services.ApprovalService
	Equipment        *services.EquipmentService
	LoanTransaction  *services.LoanTransactionService
	Notification     *services.NotificationService
	Storage          *services.StorageService
	Admin            *services.AdminService
}

func Setup(cfg *config.Config, db *gorm.DB, svc *Services) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Locale(cfg.I18n.DefaultLocale))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Frontend.BaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"X-Total-Count", "X-Page", "X-Per-Page", "X-Total-Pages"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(20, 40))

	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Users)
	emailHandler := handlers.NewEmailApplicationHandler(svc.EmailApplication)
	loanHandler := handlers.NewLoanApplicationHandler(svc.LoanApplication, svc.LoanTransaction)
	approvalHandler := handlers.NewApprovalHandler(svc.Approval)
	equipmentHandler := handlers.NewEquipmentHandler(svc.Equipment)
	transactionHandler := handlers.NewLoanTransactionHandler(svc.LoanTransaction)
	notificationHandler := handlers.NewNotificationHandler(svc.Notification)
	adminHandler := handlers.NewAdminHandler(svc.Admin)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
	}

	authed := v1.Group("")
	authed.Use(middleware.AuthRequired())
	authed.Use(middleware.AuditTrail(db))
	{
		emailApps := authed.Group("/email-applications")
		{
			emailApps.POST("", emailHandler.Create)
			emailApps.GET("", emailHandler.List)
			emailApps.GET("/:id", emailHandler.Get)
			emailApps.PUT("/:id", emailHandler.Update)
			emailApps.DELETE("/:id", emailHandler.Delete)
			emailApps.POST("/:id/submit", emailHandler.Submit)
		}

		loanApps := authed.Group("/loan-applications")
		{
			loanApps.POST("", loanHandler.Create)
			loanApps.GET("", loanHandler.List)
			loanApps.GET("/:id", loanHandler.Get)
			loanApps.PUT("/:id", loanHandler.Update)
			loanApps.DELETE("/:id", loanHandler.Delete)
			loanApps.POST("/:id/submit", loanHandler.Submit)
			loanApps.GET("/:id/transactions", loanHandler.Transactions)
			loanApps.POST("/:id/issue",
				middleware.RequireRole(models.UserRoleBPMStaff),
				transactionHandler.Issue)
		}

		approvals := authed.Group("/approvals")
		approvals.Use(middleware.RequireRole(
			models.UserRoleApprover, models.UserRoleITAdmin, models.UserRoleBPMStaff, models.UserRoleStaff))
		{
			approvals.GET("/pending", approvalHandler.Pending)
			approvals.GET("/:id", approvalHandler.Get)
			approvals.POST("/:id/decision", approvalHandler.Decide)
		}

		equipment := authed.Group("/equipment")
		{
			equipment.GET("", equipmentHandler.List)
			equipment.GET("/available",
				middleware.RequireRole(models.UserRoleBPMStaff),
				equipmentHandler.Available)
			equipment.GET("/:id", equipmentHandler.Get)
			equipment.POST("",
				middleware.RequireRole(models.UserRoleBPMStaff),
				equipmentHandler.Create)
			equipment.PUT("/:id",
				middleware.RequireRole(models.UserRoleBPMStaff),
				equipmentHandler.Update)
			equipment.DELETE("/:id",
				middleware.RequireRole(models.UserRoleBPMStaff),
				equipmentHandler.Delete)
		}

		transactions := authed.Group("/loan-transactions")
		{
			transactions.GET("/:id", transactionHandler.Get)
			transactions.POST("/:id/return",
				middleware.RequireRole(models.UserRoleBPMStaff),
				transactionHandler.Return)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		if svc.Storage != nil {
			attachmentHandler := handlers.NewAttachmentHandler(svc.Storage)
			authed.POST("/email-applications/:id/attachments", attachmentHandler.Upload(models.ApprovableTypeEmail))
			authed.GET("/email-applications/:id/attachments", attachmentHandler.List(models.ApprovableTypeEmail))
			authed.POST("/loan-applications/:id/attachments", attachmentHandler.Upload(models.ApprovableTypeLoan))
			authed.GET("/loan-applications/:id/attachments", attachmentHandler.List(models.ApprovableTypeLoan))

			attachments := authed.Group("/attachments")
			{
				attachments.GET("/:id/download", attachmentHandler.Download)
				attachments.DELETE("/:id", attachmentHandler.Delete)
			}
		}

		authed.POST("/email-applications/:id/retry-provisioning",
			middleware.RequireRole(models.UserRoleITAdmin),
			adminHandler.RetryProvisioning)

		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRole(models.UserRoleAdmin))
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id", adminHandler.UpdateUser)
			admin.GET("/audit-logs", adminHandler.AuditLogs)
		}
	}

	return r
}
