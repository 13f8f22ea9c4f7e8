package security

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var teamNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_'.]+$`)

// ValidationService centralizes request input validation. All errors it
// returns are safe to show to clients.
type ValidationService struct {
	config *SecurityConfig
}

// NewValidationService creates a validation service.
func NewValidationService(config *SecurityConfig) *ValidationService {
	return &ValidationService{config: config}
}

// ValidateEmail checks email format (RFC 5322) and length.
func (v *ValidationService) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > v.config.MaxEmailLength {
		return fmt.Errorf("email must be %d characters or less", v.config.MaxEmailLength)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the registration password policy. Length is the
// only requirement; composition rules are not part of the contract.
func (v *ValidationService) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < v.config.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", v.config.MinPasswordLength)
	}
	if len(password) > 128 {
		return fmt.Errorf("password must be less than 128 characters")
	}
	return nil
}

// ValidatePersonName checks a first or last name value.
func (v *ValidationService) ValidatePersonName(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if utf8.RuneCountInString(value) > v.config.MaxNameLength {
		return fmt.Errorf("%s must be %d characters or less", fieldName, v.config.MaxNameLength)
	}
	return nil
}

// ValidateTeamName checks team name length and characters.
func (v *ValidationService) ValidateTeamName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("team name is required")
	}
	if utf8.RuneCountInString(name) > v.config.MaxNameLength {
		return fmt.Errorf("team name must be %d characters or less", v.config.MaxNameLength)
	}
	if !teamNamePattern.MatchString(name) {
		return fmt.Errorf("team name contains invalid characters")
	}
	return nil
}

// ValidateRequired checks that a required field is present and not blank.
func (v *ValidationService) ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateLength checks a string's rune count against bounds.
func (v *ValidationService) ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s must be %d characters or less", fieldName, max)
	}
	return nil
}

// SanitizeString strips control characters (except newline and tab) and trims
// surrounding whitespace. Applied to free-text scouting fields before storage.
func (v *ValidationService) SanitizeString(input string) string {
	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(input)
}
