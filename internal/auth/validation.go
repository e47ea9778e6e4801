package auth

import (
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrWeakPassword is returned for passwords shorter than MinPasswordLength
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrInvalidUsername is returned for blank usernames or ones containing whitespace
	ErrInvalidUsername = errors.New("username must be non-empty and contain no whitespace")
)

// MinPasswordLength is the shortest accepted staff password
const MinPasswordLength = 8

// ValidatePassword checks the staff password policy
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// ValidateUsername checks that a username is usable as a login
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" || strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return ErrInvalidUsername
	}
	return nil
}
