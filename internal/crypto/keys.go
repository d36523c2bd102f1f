package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

// hexKeyLength is the length of a 256-bit key in hex.
const hexKeyLength = KeySize * 2

// GeneratedKey holds a fresh key with its display encodings.
type GeneratedKey struct {
	Key    []byte
	Hex    string
	Base64 string
}

// GenerateKey draws a random 256-bit key.
func GenerateKey() (*GeneratedKey, error) {
	key, err := RandomBytes(KeySize)
	if err != nil {
		return nil, err
	}

	return EncodeKey(key), nil
}

// EncodeKey returns key alongside its hex and base64 forms.
func EncodeKey(key []byte) *GeneratedKey {
	return &GeneratedKey{
		Key:    key,
		Hex:    hex.EncodeToString(key),
		Base64: base64.StdEncoding.EncodeToString(key),
	}
}

// ParseKey decodes a key given in hex or base64.
//
// A string of exactly 64 hex digits is always treated as hex, even when it is
// also valid base64. Anything else is decoded as standard base64.
func ParseKey(input string) ([]byte, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &models.MissingCredentialError{Credential: "key"}
	}

	var (
		key []byte
		err error
	)
	if len(input) == hexKeyLength && isHex(input) {
		key, err = hex.DecodeString(input)
	} else {
		key, err = base64.StdEncoding.DecodeString(input)
	}
	if err != nil {
		return nil, &models.FormatError{
			Field:  "key",
			Reason: "invalid key format, provide a hex or base64 key",
			Err:    err,
		}
	}

	if len(key) != KeySize {
		return nil, &models.FormatError{
			Field:  "key",
			Reason: "key must be 256 bits (32 bytes)",
		}
	}

	return key, nil
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
