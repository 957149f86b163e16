package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail checks length and RFC 5322 syntax of a bare address
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	// display names like "Bob <bob@example.com>" are not accepted
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address")
	}

	return nil
}
