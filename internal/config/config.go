// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Email        EmailConfig
	Provisioning ProvisioningConfig
	Workflow     WorkflowConfig
	Scheduler    SchedulerConfig
	AWS          AWSConfig
	I18n         I18nConfig
	Frontend     FrontendConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// ProvisioningConfig drives the external mailbox-creation adapter.
type ProvisioningConfig struct {
	EndpointURL        string
	APIKey             string
	TimeoutSeconds     int
	EmailDomain        string
	TempPasswordLength int
	// Application statuses from which provisioning may be started.
	AllowedStatuses []string
}

// WorkflowConfig drives approver selection and the return-condition policy.
type WorkflowConfig struct {
	MinApproverGradeLevel int
	// Maps a reported return condition to the equipment status it implies.
	ReturnConditionPolicy map[string]string
}

type SchedulerConfig struct {
	MarkOverdueLoans     string
	SendOverdueReminders string
	RemindStalePendings  string
	StalePendingAgeHours int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "motac_rms"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("FROM_EMAIL", "noreply@motac.gov.my"),
			FromName:       getEnv("FROM_NAME", "MOTAC Resource Management"),
		},
		Provisioning: ProvisioningConfig{
			EndpointURL:        getEnv("PROVISIONING_ENDPOINT_URL", ""),
			APIKey:             getEnv("PROVISIONING_API_KEY", ""),
			TimeoutSeconds:     getEnvAsInt("PROVISIONING_TIMEOUT_SECONDS", 30),
			EmailDomain:        getEnv("PROVISIONING_EMAIL_DOMAIN", "motac.gov.my"),
			TempPasswordLength: getEnvAsInt("PROVISIONING_TEMP_PASSWORD_LENGTH", 12),
			AllowedStatuses:    getEnvAsSlice("PROVISIONING_ALLOWED_STATUSES", []string{"approved"}),
		},
		Workflow: WorkflowConfig{
			MinApproverGradeLevel: getEnvAsInt("WORKFLOW_MIN_APPROVER_GRADE", 41),
			ReturnConditionPolicy: map[string]string{
				"good":    getEnv("RETURN_POLICY_GOOD", "available"),
				"damaged": getEnv("RETURN_POLICY_DAMAGED", "under_maintenance"),
				"lost":    getEnv("RETURN_POLICY_LOST", "disposed"),
			},
		},
		Scheduler: SchedulerConfig{
			MarkOverdueLoans:     getEnv("CRON_MARK_OVERDUE_LOANS", "0 0 1 * * *"),
			SendOverdueReminders: getEnv("CRON_SEND_OVERDUE_REMINDERS", "0 0 8 * * *"),
			RemindStalePendings:  getEnv("CRON_REMIND_STALE_PENDINGS", "0 30 8 * * MON-FRI"),
			StalePendingAgeHours: getEnvAsInt("SCHEDULER_STALE_PENDING_AGE_HOURS", 72),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "ap-southeast-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "motac-rms-documents"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Provisioning.TempPasswordLength < 8 {
		return fmt.Errorf("provisioning temp password length must be at least 8")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
