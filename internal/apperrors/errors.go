// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PreconditionError reports a business-rule violation caused by the caller:
// the target record is not in a state that permits the requested operation,
// or the operation is not assigned to the acting user. Nothing was mutated.
type PreconditionError struct {
	Entity    string
	EntityID  uuid.UUID
	Attempted string
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s: %s", e.Entity, e.EntityID, e.Attempted, e.Reason)
}

func NewPrecondition(entity string, id uuid.UUID, attempted, reason string) *PreconditionError {
	return &PreconditionError{Entity: entity, EntityID: id, Attempted: attempted, Reason: reason}
}

// ConfigError reports a missing linkage or eligible actor that leaves the
// workflow unable to proceed. Operator intervention is required.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "workflow configuration error: " + e.Reason
}

func NewConfig(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// ExternalServiceError reports a failure from an external collaborator
// (the mailbox provisioning API). The failure is recorded on the affected
// record before this error is surfaced.
type ExternalServiceError struct {
	Service string
	Reason  string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Reason)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func NewExternal(service, reason string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Reason: reason, Err: err}
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// Classification helpers for handler-level status mapping.

func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsExternal(err error) bool {
	var ee *ExternalServiceError
	return errors.As(err, &ee)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
