package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	digitsRe   = regexp.MustCompile(`^[0-9]+$`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	numberRe   = regexp.MustCompile(`[0-9]`)
	specialRe  = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>_\-+=\[\]\\/;` + "`" + `~]`)
)

// ValidateEmail checks basic email shape.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateUsername enforces alphanumeric usernames up to 15 characters.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username cannot be empty")
	}
	if len(username) > 15 {
		return errors.New("username must not exceed 15 characters")
	}
	if !usernameRe.MatchString(username) {
		return errors.New("username must contain only letters and numbers")
	}
	return nil
}

// ValidateNationalID enforces a 6-10 digit national id number.
func ValidateNationalID(id string) error {
	if id == "" {
		return errors.New("national id number cannot be empty")
	}
	if !digitsRe.MatchString(id) {
		return errors.New("national id number must contain only digits")
	}
	if len(id) < 6 || len(id) > 10 {
		return errors.New("national id number must have between 6 and 10 digits")
	}
	return nil
}

// ValidatePhone enforces a digits-only phone number up to 10 digits.
func ValidatePhone(phone string) error {
	if phone == "" {
		return errors.New("phone cannot be empty")
	}
	if !digitsRe.MatchString(phone) {
		return errors.New("phone must contain only digits")
	}
	if len(phone) > 10 {
		return errors.New("phone must be between 1 and 10 digits")
	}
	return nil
}

// ValidateAddress enforces a non-empty address up to 30 characters.
func ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return errors.New("address cannot be empty")
	}
	if len(address) > 30 {
		return errors.New("address must not exceed 30 characters")
	}
	return nil
}

// ValidateBirthDate rejects future dates and ages above 150 years.
func ValidateBirthDate(birth time.Time) error {
	now := time.Now().UTC()
	if birth.After(now) {
		return errors.New("birth date cannot be in the future")
	}
	if birth.Before(now.AddDate(-150, 0, 0)) {
		return errors.New("age cannot exceed 150 years")
	}
	return nil
}

// ValidatePassword enforces password strength: at least 8 characters with
// one uppercase letter, one number and one special character.
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if len(password) < 8 {
		return errors.New("password must contain at least 8 characters")
	}
	if !upperRe.MatchString(password) {
		return errors.New("password must include at least one uppercase letter")
	}
	if !numberRe.MatchString(password) {
		return errors.New("password must include at least one number")
	}
	if !specialRe.MatchString(password) {
		return errors.New("password must include at least one special character")
	}
	return nil
}
