// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// FilterEmails keeps the well-formed addresses, trimmed, in order.
func FilterEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.TrimSpace(e); ValidateEmail(e) {
			out = append(out, e)
		}
	}
	return out
}

// SanitizeInput trims a spreadsheet cell and removes null bytes and non-breaking spaces.
func SanitizeInput(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.ReplaceAll(input, "\u00a0", " ")
	return strings.TrimSpace(input)
}
