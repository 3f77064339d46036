package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "gatepass/pkg/domain-errors"
)

func TestCheckStringLength(t *testing.T) {
	assert.NoError(t, CheckStringLength("metadata_base", strings.Repeat("a", MaxMetadataBaseLength), MaxMetadataBaseLength))

	err := CheckStringLength("pass_cost", strings.Repeat("9", MaxAmountDigits+1), MaxAmountDigits)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "pass_cost exceeds max length of 78")
}
