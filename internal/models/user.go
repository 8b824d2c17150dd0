// internal/models/user.go
package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	FirstName    string     `json:"first_name" gorm:"size:100;not null"`
	LastName     string     `json:"last_name" gorm:"size:100;not null"`
	PersonalEmail string    `json:"personal_email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'staff';index"`
	GradeLevel   int        `json:"grade_level" gorm:"not null;default:0;index"`
	Department   string     `json:"department" gorm:"size:150"`
	Position     string     `json:"position" gorm:"size:150"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`

	// Assigned by the provisioning flow once an email application completes.
	MotacEmail     *string    `json:"motac_email,omitempty" gorm:"uniqueIndex;size:255"`
	MotacUserID    *string    `json:"motac_user_id,omitempty" gorm:"size:100"`
	LastLoginAt    *time.Time `json:"last_login_at"`

	// Relationships
	EmailApplications []EmailApplication `json:"email_applications,omitempty" gorm:"foreignKey:ApplicantID"`
	LoanApplications  []LoanApplication  `json:"loan_applications,omitempty" gorm:"foreignKey:ApplicantID"`
	Approvals         []Approval         `json:"approvals,omitempty" gorm:"foreignKey:OfficerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
