package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength bounds individual and owner identifiers.
const MaxIDLength = 128

// ValidateIndividualID validates an individual identifier received from a
// client or command line. Identifiers are opaque to the engine, so only
// characters that break keys, file names or log lines are rejected:
//   - No empty ids
//   - No control characters or null bytes
//   - No whitespace at either end
//   - Maximum length of MaxIDLength
func ValidateIndividualID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "individual id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "individual id too long (max %d characters)", MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "individual id contains invalid control characters")
		}
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidID, "individual id has leading or trailing whitespace")
	}
	return nil
}

// ValidateOwner validates an owner/collection name. Owners end up in cache
// keys and SQL parameters, so path-like sequences are rejected as well.
func ValidateOwner(owner string) error {
	if owner == "" {
		return New(ErrCodeInvalidInput, "owner cannot be empty")
	}
	if len(owner) > MaxIDLength {
		return New(ErrCodeInvalidInput, "owner too long (max %d characters)", MaxIDLength)
	}
	for _, r := range owner {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "owner contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(owner, pattern) {
			return New(ErrCodeInvalidInput, "owner contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateFormat checks an artifact format against the supported set.
func ValidateFormat(format string, supported map[string]bool) error {
	if !supported[format] {
		return New(ErrCodeInvalidFormat, "invalid format: %q", format)
	}
	return nil
}
