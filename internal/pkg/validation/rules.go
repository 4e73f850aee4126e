package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 1
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// IsValidEmail reports whether the value looks like an email address.
func IsValidEmail(value string) bool {
	return CompiledPatterns.Email.MatchString(value)
}

// IsValidPassword reports whether the password satisfies the password policy.
func IsValidPassword(value string) bool {
	return len(value) >= PasswordMinLength
}

// IsValidName reports whether a display name part is within bounds.
func IsValidName(value string) bool {
	return len(value) >= NameMinLength && len(value) <= NameMaxLength
}

// IsValidVisibility reports whether the value is a known post visibility tier.
func IsValidVisibility(tier int) bool {
	return tier >= 0 && tier <= 2
}
