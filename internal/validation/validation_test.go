package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(nil))
	assert.True(t, IsBlank(strPtr("")))
	assert.True(t, IsBlank(strPtr("   \t\n")))
	assert.False(t, IsBlank(strPtr(" x ")))

	assert.True(t, IsBlankString(""))
	assert.False(t, IsBlankString("a"))
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ana@x.com", true},
		{"first.last+tag@sub.example.org", true},
		{"under_score@domain.fr", true},
		{"", false},
		{"plainaddress", false},
		{"@no-local.com", false},
		{"no-tld@domain", false},
		{"two..dots@domain.com", false},
		{"space in@domain.com", false},
		{"toolongtld@domain.abcdefgh", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes", "Secur3!ty", true},
		{"exactly eight", "Aa1!aaaa", true},
		{"bracket symbol", "Passw0rd[", true},
		{"too short", "Aa1!aaa", false},
		{"no digit", "Password!", false},
		{"no lowercase", "PASSWORD1!", false},
		{"no uppercase", "password1!", false},
		{"no symbol", "Password12", false},
		{"symbol outside the set", "Password1~", false},
		{"newline rejected", "Passw0rd!\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPassword(tt.password))
		})
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"1234567890", true},
		{"123-456-7890", true},
		{"(123) 456-7890", true},
		{"(123)456-7890", true},
		{"+1 123.456.7890", true},
		{"+212 61-234-5678", true},
		{"+33 612 345 678", false},
		{"+212 612-3456", true},
		{"+212 612-345", false},
		{"12-34", false},
		{"phone", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPhoneNumber(tt.phone))
		})
	}
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2025-03-14"))
	assert.True(t, IsValidDate("2024-02-29"))
	assert.False(t, IsValidDate("2023-02-29"))
	assert.False(t, IsValidDate("14/03/2025"))
	assert.False(t, IsValidDate(""))
}
