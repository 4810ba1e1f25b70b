package validator

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	hasDigit     = regexp.MustCompile(`[0-9]`)
	hasLower     = regexp.MustCompile(`[a-z]`)
	hasUpper     = regexp.MustCompile(`[A-Z]`)
	hasSpecial   = regexp.MustCompile(`[\W_]`)
	isNationalID = regexp.MustCompile(`^[0-9]{18}$`)
	isMobile     = regexp.MustCompile(`^0[567][0-9]{8}$`)
)

func ValidateString(value string, minLength int, maxLength int) error {
	n := utf8.RuneCountInString(value)
	if n < minLength || n > maxLength {
		return fmt.Errorf("must contain from %d to %d characters", minLength, maxLength)
	}

	return nil
}

func ValidatePassword(value string) (err error) {
	// Define a general value rule that covers all conditions
	err = errors.New("value must be between 8 and 30 characters long, contain at least one digit, one lowercase letter, one uppercase letter, and one special character")

	if len(value) < 8 || len(value) > 30 {
		return
	}

	if !hasDigit.MatchString(value) {
		return
	}

	if !hasLower.MatchString(value) {
		return
	}

	if !hasUpper.MatchString(value) {
		return
	}

	if !hasSpecial.MatchString(value) {
		return
	}

	return nil
}

func ValidateEmail(value string) error {
	if err := ValidateString(value, 6, 200); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("is not a valid email address")
	}

	return nil
}

func ValidateFullName(value string) error {
	if err := ValidateString(value, 3, 100); err != nil {
		return err
	}

	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '-' && r != '\'' {
			return fmt.Errorf("must contain only letters or spaces")
		}
	}

	return nil
}

// NormalizePhoneNumber turns "+213 555-12-34-56" into the national form "0555123456".
func NormalizePhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.NewReplacer(" ", "", "-", "", ".", "").Replace(phone)

	switch {
	case strings.HasPrefix(phone, "+213"):
		phone = "0" + strings.TrimPrefix(phone, "+213")
	case strings.HasPrefix(phone, "00213"):
		phone = "0" + strings.TrimPrefix(phone, "00213")
	}

	return phone
}

// ValidatePhoneNumber accepts Algerian mobile numbers (Mobilis, Djezzy, Ooredoo).
func ValidatePhoneNumber(value string) error {
	if !isMobile.MatchString(NormalizePhoneNumber(value)) {
		return fmt.Errorf("must be an Algerian mobile number starting with 05, 06 or 07")
	}

	return nil
}

// ValidateNationalID checks the 18-digit national identification number (NIN).
func ValidateNationalID(value string) error {
	normalized := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(strings.TrimSpace(value))
	if !isNationalID.MatchString(normalized) {
		return fmt.Errorf("must contain exactly 18 digits")
	}

	return nil
}

// ValidateImageURL accepts only absolute https links, as returned by the image hosts.
func ValidateImageURL(value string) error {
	if !strings.HasPrefix(value, "https://") || len(value) > 1024 {
		return fmt.Errorf("must be an https URL")
	}

	return nil
}
