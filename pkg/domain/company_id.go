// Package domain holds typed identifiers shared across modules. Typed IDs
// make cross-wiring a compile error and keep validation at the trust
// boundary: once a CompanyID exists, it has passed the checksum.
package domain

import (
	"strings"

	dErrors "pankas/pkg/domain-errors"
)

// CompanyID is a validated 9-digit Israeli company identifier. The ninth
// digit is a checksum over the first eight. Construct via ParseCompanyID;
// the zero value is not valid.
type CompanyID string

func (id CompanyID) String() string { return string(id) }

// ParseCompanyID validates raw input into a CompanyID. Dashes and spaces
// are stripped first since callers paste formatted numbers. Total: never
// panics, returns CodeInvalidIdentifier for anything that fails.
func ParseCompanyID(raw string) (CompanyID, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, raw)

	if len(cleaned) != 9 {
		return "", dErrors.New(dErrors.CodeInvalidIdentifier, "company identifier must be 9 digits")
	}
	digits := make([]int, 9)
	for i, r := range cleaned {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeInvalidIdentifier, "company identifier must contain only digits")
		}
		digits[i] = int(r - '0')
	}

	if checkDigit(digits) != digits[8] {
		return "", dErrors.New(dErrors.CodeInvalidIdentifier, "company identifier checksum failed")
	}
	return CompanyID(cleaned), nil
}

// checkDigit computes the expected ninth digit: alternating weights 1 and 2
// over the first eight digits, folding two-digit products.
func checkDigit(digits []int) int {
	sum := 0
	for i := 0; i < 8; i++ {
		product := digits[i] * ((i % 2) + 1)
		if product > 9 {
			product = product/10 + product%10
		}
		sum += product
	}
	return (10 - sum%10) % 10
}

// CompanyTypePrefix returns the leading digits that drive company-type
// classification when the companies registry supplies no explicit type.
// Two digits for the 5x corporate range, one digit otherwise.
func (id CompanyID) CompanyTypePrefix() string {
	s := string(id)
	if len(s) < 2 {
		return s
	}
	if s[0] == '5' {
		return s[:2]
	}
	return s[:1]
}
