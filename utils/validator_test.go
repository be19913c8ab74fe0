package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterEmails(t *testing.T) {
	got := FilterEmails([]string{" editor@example.com ", "not-an-email", "", "ops@example.org"})
	assert.Equal(t, []string{"editor@example.com", "ops@example.org"}, got)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "電玩通", SanitizeInput(" 電玩通\x00 "))
	assert.Equal(t, "", SanitizeInput("   "))
}
