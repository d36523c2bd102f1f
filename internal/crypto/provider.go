package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

const (
	// Key sizes
	KeySize   = 32 // AES-256
	NonceSize = models.NonceSize
	TagSize   = models.TagSize

	// PBKDF2 parameters
	DefaultIterations = 100000
	SaltSize          = models.SaltSize
)

// Errors
var (
	ErrInvalidKey   = errors.New("invalid key size")
	ErrInvalidNonce = errors.New("invalid nonce size")
	ErrInvalidSalt  = errors.New("invalid salt size")
)

// CryptoProvider handles all cryptographic operations.
type CryptoProvider struct{}

// NewProvider creates a crypto provider.
func NewProvider() Provider {
	return CryptoProvider{}
}

// Seal encrypts plaintext using AES-GCM.
func (CryptoProvider) Seal(key, nonce, plaintext []byte) ([]byte, error) {
	return Seal(key, nonce, plaintext)
}

// Open decrypts ciphertext using AES-GCM.
func (CryptoProvider) Open(key, nonce, ciphertext []byte) ([]byte, error) {
	return Open(key, nonce, ciphertext)
}

// DeriveKey derives a key from a password and salt.
func (CryptoProvider) DeriveKey(password string, salt []byte) ([]byte, error) {
	return DeriveKey(password, salt)
}

// ParseKey decodes a user-supplied key.
func (CryptoProvider) ParseKey(input string) ([]byte, error) {
	return ParseKey(input)
}

// GenerateKey creates a random key.
func (CryptoProvider) GenerateKey() (*GeneratedKey, error) {
	return GenerateKey()
}

// NewNonce generates a random nonce.
func (CryptoProvider) NewNonce() ([]byte, error) {
	return RandomBytes(NonceSize)
}

// NewSalt generates a random salt.
func (CryptoProvider) NewSalt() ([]byte, error) {
	return RandomBytes(SaltSize)
}

// RandomBytes reads n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate random bytes: %w", err)
	}
	return b, nil
}

// ClearBytes zeroes a byte slice holding key material.
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
