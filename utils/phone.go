package utils

import "strings"

// NormalizePhoneNumber strips spaces, dashes, dots and parentheses so the
// stored value is bare digits with an optional leading +.
func NormalizePhoneNumber(phoneNumber string) string {
	var out strings.Builder
	for i, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			out.WriteRune(r)
		} else if r == '+' && i == 0 {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// ValidatePhoneNumber accepts 7 to 15 digits with an optional leading +.
func ValidatePhoneNumber(phoneNumber string) bool {
	normalized := strings.TrimPrefix(NormalizePhoneNumber(phoneNumber), "+")
	if len(normalized) < 7 || len(normalized) > 15 {
		return false
	}
	for _, r := range normalized {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
