package validator

import (
	"regexp"
	"strings"
)

// Regex patterns for donor registration input
var (
	// Email pattern - RFC 5322 simplified
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

	// Phone pattern: 10-15 digits
	PhonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

	// Blood group pattern: A+, A-, B+, B-, AB+, AB-, O+, O-
	BloodGroupPattern = regexp.MustCompile(`^(A|B|AB|O)[+-]$`)

	// Name pattern: 2-100 chars, Unicode letters, spaces, dots, hyphens, apostrophes
	NamePattern = regexp.MustCompile(`^[\p{L} .'-]{2,100}$`)
)

// IsValidEmail validates email format
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return EmailPattern.MatchString(email)
}

// IsValidPhone validates phone number (10-15 digits)
func IsValidPhone(phone string) bool {
	if phone == "" {
		return false
	}
	return PhonePattern.MatchString(strings.TrimSpace(phone))
}

// IsValidBloodGroup validates blood group notation
func IsValidBloodGroup(bloodGroup string) bool {
	if bloodGroup == "" {
		return false
	}
	return BloodGroupPattern.MatchString(strings.TrimSpace(bloodGroup))
}

// IsValidName validates donor name
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	return NamePattern.MatchString(strings.TrimSpace(name))
}

// GetEmailError returns a user-friendly error message for email
func GetEmailError(email string) string {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "Email is required"
	}
	if !IsValidEmail(trimmed) {
		return "Invalid email format. Example: donor@example.com"
	}
	return ""
}

// GetPhoneError returns a user-friendly error message for phone
func GetPhoneError(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return "Phone is required"
	}
	if !IsValidPhone(trimmed) {
		return "Invalid phone number. Must be 10-15 digits"
	}
	return ""
}

// GetBloodGroupError returns a user-friendly error message for blood group
func GetBloodGroupError(bloodGroup string) string {
	trimmed := strings.TrimSpace(bloodGroup)
	if trimmed == "" {
		return "Blood group is required"
	}
	if !IsValidBloodGroup(trimmed) {
		return "Invalid blood group. Must be one of A+, A-, B+, B-, AB+, AB-, O+, O-"
	}
	return ""
}

// GetNameError returns a user-friendly error message for name
func GetNameError(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "Name is required"
	}
	if len(trimmed) < 2 {
		return "Name must be at least 2 characters"
	}
	if len(trimmed) > 100 {
		return "Name must not exceed 100 characters"
	}
	if !IsValidName(trimmed) {
		return "Name may only contain letters, spaces, dots, hyphens and apostrophes"
	}
	return ""
}

// GetRequiredError returns an error message for a blank required field
func GetRequiredError(field, value string) string {
	if strings.TrimSpace(value) == "" {
		return field + " is required"
	}
	return ""
}
