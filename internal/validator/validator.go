package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidISBN     = errors.New("invalid isbn")
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	isbnRegex     = regexp.MustCompile(`^(\d{9}[\dX]|\d{13})$`)
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

// NormalizeISBN strips hyphens and spaces and upper-cases the ISBN-10 check
// digit.
func NormalizeISBN(isbn string) string {
	isbn = strings.ToUpper(isbn)
	return strings.NewReplacer("-", "", " ", "").Replace(isbn)
}

// ValidateISBN accepts ISBN-10 or ISBN-13 digits after normalization. The
// check digit is not verified.
func ValidateISBN(isbn string) error {
	if !isbnRegex.MatchString(NormalizeISBN(isbn)) {
		return ErrInvalidISBN
	}
	return nil
}
