package engine

import (
	"github.com/TheMichaelB/filecrypt/internal/container"
	"github.com/TheMichaelB/filecrypt/internal/models"
)

// Credentials tell Decrypt where the key or password comes from.
type Credentials struct {
	metadata *container.Metadata
	override string
}

// FromMetadata takes the key or password, and the nonce and salt when the
// record carries them, from a metadata record.
func FromMetadata(md *container.Metadata) Credentials {
	return Credentials{metadata: md}
}

// Manual uses a caller-supplied key string or password. Nonce and salt are
// read from the container header.
func Manual(secret string) Credentials {
	return Credentials{override: secret}
}

// WithSecret supplies the key or password explicitly while keeping the
// record's nonce and salt. Used for records written without a password.
func (c Credentials) WithSecret(secret string) Credentials {
	c.override = secret
	return c
}

func (c Credentials) secret(mode models.Mode) string {
	if c.override != "" {
		return c.override
	}
	if c.metadata == nil {
		return ""
	}
	if mode == models.ModePassword {
		return c.metadata.Password
	}
	return c.metadata.KeyInput()
}
