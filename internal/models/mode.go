package models

import (
	"fmt"
	"strings"
)

// Mode selects where the symmetric key comes from.
type Mode string

const (
	// ModeKey uses a supplied or generated 256-bit key.
	ModeKey Mode = "key"

	// ModePassword derives the key from a password and a random salt.
	ModePassword Mode = "password"
)

// Container header sizes per mode.
const (
	NonceSize = 12
	SaltSize  = 16
	TagSize   = 16

	KeyHeaderSize      = NonceSize
	PasswordHeaderSize = SaltSize + NonceSize
)

// ParseMode converts a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "key", "key-based", "key_based":
		return ModeKey, nil
	case "password", "pass", "password-based", "password_based":
		return ModePassword, nil
	default:
		return "", fmt.Errorf("unknown mode %q: must be key or password", s)
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeKey || m == ModePassword
}

// HeaderSize returns the number of header bytes preceding the ciphertext.
func (m Mode) HeaderSize() int {
	if m == ModePassword {
		return PasswordHeaderSize
	}
	return KeyHeaderSize
}

func (m Mode) String() string {
	return string(m)
}
