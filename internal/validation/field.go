package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNameLen    = 2
	maxNameLen    = 100
	maxEmailLen   = 254
	minPhoneLen   = 6
	maxPhoneLen   = 20
	maxAddressLen = 200
	maxCompanyLen = 150
	maxNotesLen   = 1000
	maxProductLen = 200

	// maxRepeatRun is the longest run of one character a name may contain.
	maxRepeatRun = 4

	MinAmount   = 0.01
	MaxAmount   = 999999.99
	MinQuantity = 1
	MaxQuantity = 1000
)

var (
	nameRegex   = regexp.MustCompile(`^[\p{L}][\p{L} '’-]*$`)
	phoneRegex  = regexp.MustCompile(`^\+?[0-9 ()\-]+$`)
	postalRegex = regexp.MustCompile(`^[0-9]{5}$`)
	emailRegex  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]{2,}$`)
	oibRegex    = regexp.MustCompile(`^[0-9]{11}$`)
)

// FieldResult is the outcome of validating one logical field. Validators
// never fail by returning an error; every failure mode is a message in
// Errors and Valid is true exactly when Errors is empty.
type FieldResult struct {
	Valid     bool
	Sanitized string
	Errors    []string
}

func fieldResult(sanitized string, errs []string) FieldResult {
	return FieldResult{Valid: len(errs) == 0, Sanitized: sanitized, Errors: errs}
}

// ValidateName checks a personal or company contact name: required, at
// least two characters, letters (including diacritics), spaces, hyphens and
// apostrophes only. Runs of five or more identical characters are rejected
// as keyboard garbage.
func ValidateName(raw string) FieldResult {
	trimmed := strings.TrimSpace(raw)
	sanitized := Sanitize(raw)
	var errs []string

	switch {
	case trimmed == "":
		errs = append(errs, "name is required")
	case utf8.RuneCountInString(trimmed) < minNameLen:
		errs = append(errs, fmt.Sprintf("name must be at least %d characters", minNameLen))
	case utf8.RuneCountInString(trimmed) > maxNameLen:
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", maxNameLen))
	case ContainsThreat(trimmed):
		errs = append(errs, "name contains disallowed content")
	case !nameRegex.MatchString(trimmed):
		errs = append(errs, "name may only contain letters, spaces, hyphens and apostrophes")
	case hasRepeatRun(trimmed, maxRepeatRun+1):
		errs = append(errs, "name contains too many repeated characters")
	}

	return fieldResult(sanitized, errs)
}

// ValidateEmail lower-cases in addition to the standard sanitization.
func ValidateEmail(raw string) FieldResult {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	sanitized := Sanitize(trimmed)
	var errs []string

	switch {
	case trimmed == "":
		errs = append(errs, "email is required")
	case len(trimmed) > maxEmailLen:
		errs = append(errs, fmt.Sprintf("email must be at most %d characters", maxEmailLen))
	case ContainsThreat(trimmed):
		errs = append(errs, "email contains disallowed content")
	case !emailRegex.MatchString(trimmed):
		errs = append(errs, "email address is not valid")
	}

	return fieldResult(sanitized, errs)
}

func ValidatePhone(raw string) FieldResult {
	trimmed := strings.TrimSpace(raw)
	sanitized := Sanitize(raw)
	var errs []string

	switch {
	case trimmed == "":
		errs = append(errs, "phone number is required")
	case len(trimmed) < minPhoneLen:
		errs = append(errs, fmt.Sprintf("phone number must be at least %d characters", minPhoneLen))
	case len(trimmed) > maxPhoneLen:
		errs = append(errs, fmt.Sprintf("phone number must be at most %d characters", maxPhoneLen))
	case ContainsThreat(trimmed):
		errs = append(errs, "phone number contains disallowed content")
	case !phoneRegex.MatchString(trimmed):
		errs = append(errs, "phone number may only contain digits, spaces, parentheses, hyphens and a plus sign")
	}

	return fieldResult(sanitized, errs)
}

// ValidateAddress covers free-form street addresses. Structure is not
// enforced beyond length and threat screening; addresses vary too much.
func ValidateAddress(raw string) FieldResult {
	trimmed := strings.TrimSpace(raw)
	sanitized := Sanitize(raw)
	var errs []string

	switch {
	case trimmed == "":
		errs = append(errs, "address is required")
	case utf8.RuneCountInString(trimmed) > maxAddressLen:
		errs = append(errs, fmt.Sprintf("address must be at most %d characters", maxAddressLen))
	case ContainsThreat(trimmed):
		errs = append(errs, "address contains disallowed content")
	}

	return fieldResult(sanitized, errs)
}

func ValidatePostalCode(raw string) FieldResult {
	trimmed := strings.TrimSpace(raw)
	sanitized := Sanitize(raw)
	var errs []string

	switch {
	case trimmed == "":
		errs = append(errs, "postal code is required")
	case ContainsThreat(trimmed):
		errs = append(errs, "postal code contains disallowed content")
	case !postalRegex.MatchString(trimmed):
		errs = append(errs, "postal code must be exactly 5 digits")
	}

	return fieldResult(sanitized, errs)
}

// ValidateCompanyName covers registered business names, which legally carry
// dots, digits and ampersands ("Kovač d.o.o.", "3M d.d."). Only length and
// threat screening apply.
func ValidateCompanyName(raw string) FieldResult {
	trimmed := strings.TrimSpace(raw)
	sanitized := Sanitize(raw)
	var errs []string

	switch {
	case trimmed == "":
		errs = append(errs, "company name is required")
	case utf8.RuneCountInString(trimmed) < minNameLen:
		errs = append(errs, fmt.Sprintf("company name must be at least %d characters", minNameLen))
	case utf8.RuneCountInString(trimmed) > maxCompanyLen:
		errs = append(errs, fmt.Sprintf("company name must be at most %d characters", maxCompanyLen))
	case ContainsThreat(trimmed):
		errs = append(errs, "company name contains disallowed content")
	}

	return fieldResult(sanitized, errs)
}

// ValidateOIB validates the Croatian personal/company identification
// number: 11 digits where the last digit is a checksum over the first ten.
func ValidateOIB(raw string) FieldResult {
	trimmed := strings.TrimSpace(raw)
	sanitized := Sanitize(raw)
	var errs []string

	switch {
	case trimmed == "":
		errs = append(errs, "OIB is required")
	case !oibRegex.MatchString(trimmed):
		errs = append(errs, "OIB must be exactly 11 digits")
	case !oibChecksumValid(trimmed):
		errs = append(errs, "OIB checksum is not valid")
	}

	return fieldResult(sanitized, errs)
}

// oibChecksumValid implements the weighted checksum: sum digit[i]*(10-i)
// over the first ten digits, remainder mod 11; check digit is the remainder
// when below 2, otherwise 11 minus the remainder. A remainder of 10 has no
// check digit (11-10 would collide with remainder 1), so no valid OIB
// produces it.
func oibChecksumValid(oib string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		sum += int(oib[i]-'0') * (10 - i)
	}
	remainder := sum % 11
	if remainder == 10 {
		return false
	}
	check := remainder
	if remainder >= 2 {
		check = 11 - remainder
	}
	return check == int(oib[10]-'0')
}

// ValidateNotes validates optional free text. An empty value is valid.
func ValidateNotes(raw string) FieldResult {
	trimmed := strings.TrimSpace(raw)
	sanitized := Sanitize(raw)
	var errs []string

	switch {
	case trimmed == "":
		// optional
	case utf8.RuneCountInString(trimmed) > maxNotesLen:
		errs = append(errs, fmt.Sprintf("notes must be at most %d characters", maxNotesLen))
	case ContainsThreat(trimmed):
		errs = append(errs, "notes contain disallowed content")
	}

	return fieldResult(sanitized, errs)
}

func ValidateProductName(raw string) FieldResult {
	trimmed := strings.TrimSpace(raw)
	sanitized := Sanitize(raw)
	var errs []string

	switch {
	case trimmed == "":
		errs = append(errs, "product name is required")
	case utf8.RuneCountInString(trimmed) > maxProductLen:
		errs = append(errs, fmt.Sprintf("product name must be at most %d characters", maxProductLen))
	case ContainsThreat(trimmed):
		errs = append(errs, "product name contains disallowed content")
	}

	return fieldResult(sanitized, errs)
}

// AmountResult is the numeric counterpart of FieldResult; Sanitized is the
// amount rounded to two decimals.
type AmountResult struct {
	Valid     bool
	Sanitized float64
	Errors    []string
}

// ValidateAmount checks a monetary amount against [min, max] and rounds it
// to two decimals.
func ValidateAmount(value, min, max float64) AmountResult {
	var errs []string

	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		errs = append(errs, "amount must be a number")
	case value < min:
		errs = append(errs, fmt.Sprintf("amount must be at least %.2f", min))
	case value > max:
		errs = append(errs, fmt.Sprintf("amount must be at most %.2f", max))
	}

	return AmountResult{Valid: len(errs) == 0, Sanitized: Round2(value), Errors: errs}
}

func ValidateQuantity(value int) AmountResult {
	var errs []string

	switch {
	case value < MinQuantity:
		errs = append(errs, fmt.Sprintf("quantity must be at least %d", MinQuantity))
	case value > MaxQuantity:
		errs = append(errs, fmt.Sprintf("quantity must be at most %d", MaxQuantity))
	}

	return AmountResult{Valid: len(errs) == 0, Sanitized: float64(value), Errors: errs}
}

// Round2 rounds to two decimal places, the precision every persisted amount
// uses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func hasRepeatRun(s string, n int) bool {
	run := 0
	var prev rune
	for i, r := range s {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}
