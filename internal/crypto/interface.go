package crypto

// Provider defines the interface for cryptographic operations.
type Provider interface {
	// Seal encrypts plaintext with AES-256-GCM and appends the tag.
	Seal(key, nonce, plaintext []byte) ([]byte, error)

	// Open verifies the tag and decrypts.
	Open(key, nonce, ciphertext []byte) ([]byte, error)

	// DeriveKey stretches a password into a 256-bit key.
	DeriveKey(password string, salt []byte) ([]byte, error)

	// ParseKey decodes a hex or base64 key string.
	ParseKey(input string) ([]byte, error)

	// GenerateKey returns a fresh random key in all encodings.
	GenerateKey() (*GeneratedKey, error)

	// NewNonce returns a fresh random GCM nonce.
	NewNonce() ([]byte, error)

	// NewSalt returns a fresh random KDF salt.
	NewSalt() ([]byte, error)
}
