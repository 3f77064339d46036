package validation

import (
	"fmt"

	dErrors "gatepass/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (16 KB).
	// Every request body in the API is a single small JSON object.
	MaxBodySize = 16 * 1024
)

// String element length limits
const (
	// MaxAddressLength is a 0x-prefixed 20-byte hex address.
	MaxAddressLength = 42

	// MaxAmountDigits is the decimal width of the largest uint256.
	MaxAmountDigits = 78

	// MaxMetadataBaseLength bounds the metadata URI prefix.
	MaxMetadataBaseLength = 2048
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
