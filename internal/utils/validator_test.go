// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmailAddress(t *testing.T) {
	assert.True(t, ValidateEmailAddress("ali-hassan@motac.gov.my"))
	assert.True(t, ValidateEmailAddress("unit.mailbox@motac.gov.my"))
	assert.False(t, ValidateEmailAddress(""))
	assert.False(t, ValidateEmailAddress("not an address"))
	assert.False(t, ValidateEmailAddress("missing-domain@"))
}

func TestAssetTagValidation(t *testing.T) {
	type tagged struct {
		TagID string `validate:"required,asset_tag"`
	}

	assert.NoError(t, ValidateStruct(tagged{TagID: "MOTAC/LPT/00123"}))
	assert.NoError(t, ValidateStruct(tagged{TagID: "BPM/PROJ/7"}))
	assert.Error(t, ValidateStruct(tagged{TagID: "motac/lpt/00123"}))
	assert.Error(t, ValidateStruct(tagged{TagID: "MOTAC-LPT-00123"}))
	assert.Error(t, ValidateStruct(tagged{TagID: ""}))
}
