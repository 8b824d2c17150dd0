// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Access control
	KeyAccessDenied = "access.denied"

	// Email applications
	KeyEmailAppCreated   = "email_application.created"
	KeyEmailAppSubmitted = "email_application.submitted"
	KeyEmailAppNotFound  = "email_application.not_found"

	// Loan applications
	KeyLoanAppCreated   = "loan_application.created"
	KeyLoanAppSubmitted = "loan_application.submitted"
	KeyLoanAppNotFound  = "loan_application.not_found"
	KeyLoanAppDeleted   = "loan_application.deleted"

	// Approvals
	KeyApprovalRecorded = "approval.recorded"
	KeyApprovalNotFound = "approval.not_found"

	// Equipment
	KeyEquipmentCreated  = "equipment.created"
	KeyEquipmentNotFound = "equipment.not_found"

	// Transactions
	KeyTransactionIssued   = "transaction.issued"
	KeyTransactionReturned = "transaction.returned"
	KeyTransactionNotFound = "transaction.not_found"

	// Provisioning
	KeyProvisioningStarted = "provisioning.started"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
