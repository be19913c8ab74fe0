package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositiveInt(t *testing.T) {
	for _, in := range []string{"", "abc", "-5", "0", "3.5", "12abc", " "} {
		assert.Nil(t, ParsePositiveInt(in), "input %q", in)
	}
	got := ParsePositiveInt(" 148 ")
	require.NotNil(t, got)
	assert.Equal(t, 148, *got)
}

func TestParsePositiveFloat(t *testing.T) {
	for _, in := range []string{"", "free", "0", "-1.5", "NaN", "Inf"} {
		assert.Nil(t, ParsePositiveFloat(in), "input %q", in)
	}
	got := ParsePositiveFloat("9.90")
	require.NotNil(t, got)
	assert.InDelta(t, 9.9, *got, 1e-9)
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString("   "))
	require.NotNil(t, OptionalString(" x "))
	assert.Equal(t, "x", *OptionalString(" x "))
	assert.Equal(t, "", StringValue(nil))
}
