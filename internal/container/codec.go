// Package container defines the on-disk layout of encrypted files and their
// metadata sidecar records.
package container

import (
	"fmt"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

// Container is a decoded encrypted artifact.
type Container struct {
	Mode       models.Mode
	Salt       []byte // Password mode only
	Nonce      []byte
	Ciphertext []byte // Includes the GCM tag
}

// Params are header values sourced from a metadata record rather than the
// container bytes.
type Params struct {
	Salt  []byte
	Nonce []byte
}

// Encode lays out a container.
//
//	key mode:      nonce(12) || ciphertext+tag
//	password mode: salt(16) || nonce(12) || ciphertext+tag
func Encode(mode models.Mode, nonce, salt, ciphertext []byte) ([]byte, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("encode container: unknown mode %q", mode)
	}
	if len(nonce) != models.NonceSize {
		return nil, &models.FormatError{
			Field:  "nonce",
			Reason: fmt.Sprintf("must be %d bytes, got %d", models.NonceSize, len(nonce)),
		}
	}

	out := make([]byte, 0, mode.HeaderSize()+len(ciphertext))
	switch mode {
	case models.ModePassword:
		if len(salt) != models.SaltSize {
			return nil, &models.FormatError{
				Field:  "salt",
				Reason: fmt.Sprintf("must be %d bytes, got %d", models.SaltSize, len(salt)),
			}
		}
		out = append(out, salt...)
	case models.ModeKey:
		if len(salt) != 0 {
			return nil, &models.FormatError{Field: "salt", Reason: "not used in key mode"}
		}
	}

	out = append(out, nonce...)
	out = append(out, ciphertext...)

	return out, nil
}

// Decode splits container bytes into header fields and ciphertext.
//
// When external is non-nil its nonce (and salt, in password mode) are used
// instead of the header bytes. The header is skipped either way since it is
// physically present in the file.
func Decode(mode models.Mode, data []byte, external *Params) (*Container, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("decode container: unknown mode %q", mode)
	}

	header := mode.HeaderSize()
	if minimum := header + models.TagSize; len(data) < minimum {
		return nil, &models.FormatError{
			Field:  "container",
			Reason: fmt.Sprintf("too short: %d bytes, need at least %d for %s mode", len(data), minimum, mode),
		}
	}

	c := &Container{
		Mode:       mode,
		Ciphertext: data[header:],
	}

	if external != nil {
		if err := external.validate(mode); err != nil {
			return nil, err
		}
		c.Nonce = external.Nonce
		if mode == models.ModePassword {
			c.Salt = external.Salt
		}
		return c, nil
	}

	if mode == models.ModePassword {
		c.Salt = data[:models.SaltSize]
	}
	c.Nonce = data[header-models.NonceSize : header]

	return c, nil
}

func (p *Params) validate(mode models.Mode) error {
	if len(p.Nonce) != models.NonceSize {
		return &models.FormatError{
			Field:  "nonce",
			Reason: fmt.Sprintf("must be %d bytes, got %d", models.NonceSize, len(p.Nonce)),
		}
	}
	if mode == models.ModePassword && len(p.Salt) != models.SaltSize {
		return &models.FormatError{
			Field:  "salt",
			Reason: fmt.Sprintf("must be %d bytes, got %d", models.SaltSize, len(p.Salt)),
		}
	}
	return nil
}
