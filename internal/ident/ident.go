// Package ident generates the lowercase hex identifiers used as row ids,
// session ids, salts and one-time codes.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

const (
	Length      = 32
	ShortLength = 6
)

// New returns a fresh 32-char lowercase hex identifier.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Short returns a fresh 6-char identifier.
func Short() string {
	return New()[:ShortLength]
}

func IsValid(id string) bool {
	return isHexOfLength(id, Length)
}

func IsValidShort(code string) bool {
	return isHexOfLength(code, ShortLength)
}

func isHexOfLength(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
