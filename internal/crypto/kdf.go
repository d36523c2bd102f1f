package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey derives an AES-256 key from a password using PBKDF2-HMAC-SHA256
// with DefaultIterations rounds. The password is used as raw UTF-8 bytes.
func DeriveKey(password string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}

	key := pbkdf2.Key(
		[]byte(password),
		salt,
		DefaultIterations,
		KeySize,
		sha256.New,
	)

	return key, nil
}
