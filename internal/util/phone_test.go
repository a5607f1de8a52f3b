package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15551234567", "+15551234567"},
		{"+15551234567", "+15551234567"},
		{"+1 (555) 123-4567", "+15551234567"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeE164(tt.in))
		})
	}
}

func TestWaID(t *testing.T) {
	assert.Equal(t, "15551234567", WaID("+1 555 123 4567"))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*******4567", MaskPhone("+15551234567"))
	assert.Equal(t, "****", MaskPhone("123"))
}

func TestIsNumericCode(t *testing.T) {
	assert.True(t, IsNumericCode("1234"))
	assert.True(t, IsNumericCode("12345678"))
	assert.False(t, IsNumericCode("123"))
	assert.False(t, IsNumericCode("123456789"))
	assert.False(t, IsNumericCode("12a456"))
}
