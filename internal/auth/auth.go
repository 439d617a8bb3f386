package auth

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// Password policy: 8-12 characters with at least one uppercase letter, one
// lowercase letter, one digit and one special character.
var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash reports whether password matches the stored bcrypt hash.
// bcrypt handles the embedded salt itself.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword checks the signup password policy. The returned error
// message is safe to show to the client.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 12 {
		return errors.New("Password must be between 8 and 12 characters long.")
	}
	if !upperRe.MatchString(password) {
		return errors.New("Password must contain at least one uppercase letter.")
	}
	if !lowerRe.MatchString(password) {
		return errors.New("Password must contain at least one lowercase letter.")
	}
	if !digitRe.MatchString(password) {
		return errors.New("Password must contain at least one number.")
	}
	if !specialRe.MatchString(password) {
		return errors.New("Password must contain at least one special character.")
	}
	return nil
}

// ValidateEmail does a light sanity check on an email address.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return errors.New("A valid email address is required.")
	}
	return nil
}
