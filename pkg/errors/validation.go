package errors

import (
	"strings"
	"unicode"
)

// MaxPersonIDLength bounds person IDs accepted from external input.
const MaxPersonIDLength = 256

// ValidatePersonID validates a person ID received from a request or flag.
// Engines tolerate any string; this guards the transport surfaces.
//
// The validation rules:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 characters
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPersonID, "person id cannot be empty")
	}

	if len(id) > MaxPersonIDLength {
		return New(ErrCodeInvalidPersonID, "person id too long (max %d characters)", MaxPersonIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPersonID, "person id contains invalid control characters")
		}
	}

	return nil
}

// ValidateUnionKey validates a collapse key of the form
// "<personId>:<spouseId|single>". The split happens at the last colon.
func ValidateUnionKey(key string) error {
	i := strings.LastIndex(key, ":")
	if i <= 0 || i == len(key)-1 {
		return New(ErrCodeInvalidInput, "invalid union key %q (want <person>:<spouse|single>)", key)
	}
	if err := ValidatePersonID(key[:i]); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid union key %q", key)
	}
	if err := ValidatePersonID(key[i+1:]); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid union key %q", key)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}

// ValidateRedisURL validates a Redis connection URL.
// It ensures the URL has a redis or rediss scheme.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "redis URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "redis URL must use redis or rediss scheme")
	}

	return nil
}
