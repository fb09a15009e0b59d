// Package validation holds the pure string checks shared by the services.
//
// Every function is total: a nil or empty input simply returns false (or
// true for IsBlank). Nothing here logs or returns errors; callers branch on
// the boolean and build their own apperror.
//
// RE2 NOTE:
// Go's regexp package has no look-ahead, so the password rule ("at least one
// digit, one lowercase, one uppercase, one symbol") is checked character by
// character instead of with a single pattern.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the wire format of calendar dates (ISO-8601, no time part).
const DateLayout = "2006-01-02"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

	// Optional "+country", optional "(area)" or bare area digits, then 3-4 + 4 digits.
	phonePattern = regexp.MustCompile(`^(\+\d{1,3}( )?)?((\(\d{1,3}\))|\d{1,3})[- .]?\d{3,4}[- .]?\d{4}$`)
)

// passwordSymbols is the punctuation set that satisfies the "symbol" rule.
const passwordSymbols = `!@#$%^&*()-_=+\|[{]};:'",<.>/?`

// IsBlank reports whether s is nil, empty, or only whitespace.
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// IsBlankString is IsBlank for plain strings.
func IsBlankString(s string) bool {
	return strings.TrimSpace(s) == ""
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword requires MinPasswordLength characters, a digit, a lowercase
// letter, an uppercase letter and one symbol from passwordSymbols.
func IsValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}
	if strings.ContainsAny(password, "\n\r") {
		return false
	}

	var digit, lower, upper, symbol bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return digit && lower && upper && symbol
}

func IsValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

// IsValidDate reports whether s is a real calendar date in DateLayout.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
