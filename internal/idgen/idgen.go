// Package idgen provides random ID generation for sessions, audit records,
// and request correlation.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// New generates a random UUIDv4 string.
func New() string {
	return uuid.NewString()
}

// WithPrefix generates a random ID with a prefix (e.g. "aud_", "req_").
// The UUID dashes are stripped to keep the ID compact.
func WithPrefix(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RequestID generates an ID suitable for the X-Request-ID header.
func RequestID() string {
	return uuid.NewString()
}
