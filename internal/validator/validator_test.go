package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Kebch#2026"))
	assert.Error(t, ValidatePassword("Ab1!"))
	assert.Error(t, ValidatePassword("alllowercase1!"))
	assert.Error(t, ValidatePassword("NoDigitsHere!"))
	assert.Error(t, ValidatePassword("NoSpecial123"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("buyer@example.dz"))
	assert.Error(t, ValidateEmail("a@b"))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestValidateFullName(t *testing.T) {
	assert.NoError(t, ValidateFullName("Amine Benali"))
	assert.NoError(t, ValidateFullName("أمين بن علي"))
	assert.Error(t, ValidateFullName("Al"))
	assert.Error(t, ValidateFullName("R2D2 Unit"))
}

func TestPhoneNumber(t *testing.T) {
	testCases := []struct {
		input string
		valid bool
		norm  string
	}{
		{"0555123456", true, "0555123456"},
		{"+213 555 12 34 56", true, "0555123456"},
		{"00213-661-12-34-56", true, "0661123456"},
		{"0770 12 34 56", true, "0770123456"},
		{"0455123456", false, "0455123456"},
		{"055512345", false, "055512345"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.norm, NormalizePhoneNumber(tc.input))
		if tc.valid {
			assert.NoError(t, ValidatePhoneNumber(tc.input), tc.input)
		} else {
			assert.Error(t, ValidatePhoneNumber(tc.input), tc.input)
		}
	}
}

func TestValidateNationalID(t *testing.T) {
	assert.NoError(t, ValidateNationalID("109990001234567812"))
	assert.NoError(t, ValidateNationalID("1099 9000 1234 5678 12"))
	assert.Error(t, ValidateNationalID("12345"))
	assert.Error(t, ValidateNationalID("10999000123456781A"))
}

func TestValidateImageURL(t *testing.T) {
	assert.NoError(t, ValidateImageURL("https://i.ibb.co/abc/sheep.jpg"))
	assert.Error(t, ValidateImageURL("http://i.ibb.co/abc/sheep.jpg"))
	assert.Error(t, ValidateImageURL("javascript:alert(1)"))
}
