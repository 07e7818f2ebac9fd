package shared

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+\.x]+$`)
)

// RequireString rejects blank values and values longer than max bytes.
// The error code is INVALID_<FIELD>.
func RequireString(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return NewDomainError("INVALID_"+strings.ToUpper(field), field+" cannot be empty")
	}
	return CheckLength(field, value, max)
}

// CheckLength rejects values longer than max bytes
func CheckLength(field, value string, max int) error {
	if len(strings.TrimSpace(value)) > max {
		return NewDomainError("INVALID_"+strings.ToUpper(field), field+" is too long")
	}
	return nil
}

// CheckEmail accepts an empty value or a well-formed address
func CheckEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > 200 || !emailRegex.MatchString(email) {
		return NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// CheckPhone accepts an empty value or digits with common separators
func CheckPhone(phone string) error {
	if phone == "" {
		return nil
	}
	if len(phone) > 50 || !phoneRegex.MatchString(phone) {
		return NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}
