package session

import (
	"regexp"
	"strings"

	"github.com/idilsaglam/grocer/internal/api"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func looksLikeEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &api.ValidationError{Message: "please fill in all fields"}
	}
	if !looksLikeEmail(email) {
		return &api.ValidationError{Message: "please enter a valid email address"}
	}
	return nil
}

func validateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return &api.ValidationError{Message: "please fill in all fields"}
	}
	if len(strings.TrimSpace(name)) < 2 {
		return &api.ValidationError{Message: "name must be at least 2 characters long"}
	}
	if !looksLikeEmail(email) {
		return &api.ValidationError{Message: "please enter a valid email address"}
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return &api.ValidationError{Message: "password must be at least 6 characters long"}
	}
	return nil
}
