// internal/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	id := uuid.New()

	precondition := NewPrecondition("loan_application", id, "issue equipment", "not approved")
	assert.True(t, IsPrecondition(precondition))
	assert.False(t, IsNotFound(precondition))

	config := NewConfig("no approver at or above grade %d", 41)
	assert.True(t, IsConfig(config))
	assert.Contains(t, config.Error(), "41")

	upstream := errors.New("connection refused")
	external := NewExternal("mailbox provisioning", "call failed", upstream)
	assert.True(t, IsExternal(external))
	assert.ErrorIs(t, external, upstream)

	notFound := NewNotFound("equipment", id)
	assert.True(t, IsNotFound(notFound))
	assert.Contains(t, notFound.Error(), id.String())
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	id := uuid.New()
	wrapped := fmt.Errorf("while issuing: %w", NewPrecondition("equipment", id, "issue", "on loan"))
	assert.True(t, IsPrecondition(wrapped))
}
