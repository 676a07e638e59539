package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/dwitter-backend/internal/pkg/errors"
)

const MaxUsernameLength = 150

// NormalizeUsername trims surrounding whitespace. Usernames stay case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername accepts 1-150 letters, digits and @ . + - _ characters.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("a username is required: %w", errors.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username longer than %d characters: %w", MaxUsernameLength, errors.ErrInvalidArgument)
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '@', '.', '+', '-', '_':
			continue
		}
		return fmt.Errorf("username contains invalid character %q: %w", r, errors.ErrInvalidArgument)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("a password is required: %w", errors.ErrInvalidArgument)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hashed, password string) bool {
	if hashed == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
