package util

import (
	"regexp"
)

var (
	emailRegex       = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	numericCodeRegex = regexp.MustCompile(`^\d{4,8}$`)
)

func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsNumericCode reports whether s looks like a one-time code: four to eight digits.
func IsNumericCode(s string) bool {
	return numericCodeRegex.MatchString(s)
}
