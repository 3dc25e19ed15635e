package utils

import (
	"errors"
	"strings"
)

func ValidateUsername(username string) error {
	if len(username) == 0 || len(username) > 50 {
		return errors.New("username must be between 1 and 50 characters")
	}
	if strings.ContainsAny(username, " \t\n") {
		return errors.New("username cannot contain whitespace")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) == 0 {
		return errors.New("password cannot be empty")
	}
	// bcrypt ignores input past 72 bytes
	if len(password) > 72 {
		return errors.New("password must be at most 72 characters")
	}
	return nil
}

func ValidateTaskTitle(title string) error {
	if len(title) == 0 || len(title) > 255 {
		return errors.New("title must be between 1 and 255 characters")
	}
	return nil
}
