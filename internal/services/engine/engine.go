// Package engine turns plaintext into containers plus metadata and back.
//
// An Engine holds no mutable state. One value may serve any number of
// goroutines. It never logs and never touches the filesystem.
package engine

import (
	"fmt"
	"strings"

	"github.com/TheMichaelB/filecrypt/internal/container"
	"github.com/TheMichaelB/filecrypt/internal/crypto"
	"github.com/TheMichaelB/filecrypt/internal/models"
)

// Engine performs AES-256-GCM encryption in key or password mode.
type Engine struct {
	crypto        crypto.Provider
	embedPassword bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithoutPasswordInMetadata keeps the password out of password-mode
// metadata. Decrypting such a record needs the password supplied again.
func WithoutPasswordInMetadata() Option {
	return func(e *Engine) {
		e.embedPassword = false
	}
}

// WithPasswordInMetadata sets whether password-mode metadata embeds the
// password.
func WithPasswordInMetadata(embed bool) Option {
	return func(e *Engine) {
		e.embedPassword = embed
	}
}

// WithProvider replaces the crypto provider.
func WithProvider(p crypto.Provider) Option {
	return func(e *Engine) {
		e.crypto = p
	}
}

// New creates an engine. By default password-mode metadata embeds the
// password, matching the files produced by earlier releases.
func New(opts ...Option) *Engine {
	e := &Engine{
		crypto:        crypto.NewProvider(),
		embedPassword: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EncryptRequest describes one encryption.
type EncryptRequest struct {
	Mode models.Mode

	// Secret is the key string (hex or base64) in key mode, or the password
	// in password mode. An empty key-mode secret generates a new key.
	Secret string

	// Names recorded in the metadata.
	InputName  string
	OutputName string
}

// Result is the output of Encrypt.
type Result struct {
	Container []byte
	Metadata  *container.Metadata
}

// Encrypt seals plaintext and builds the matching metadata record.
func (e *Engine) Encrypt(plaintext []byte, req EncryptRequest) (*Result, error) {
	switch req.Mode {
	case models.ModeKey:
		return e.encryptWithKey(plaintext, req)
	case models.ModePassword:
		return e.encryptWithPassword(plaintext, req)
	default:
		return nil, fmt.Errorf("encrypt: unknown mode %q", req.Mode)
	}
}

func (e *Engine) encryptWithKey(plaintext []byte, req EncryptRequest) (*Result, error) {
	var key []byte
	if strings.TrimSpace(req.Secret) != "" {
		parsed, err := e.crypto.ParseKey(req.Secret)
		if err != nil {
			return nil, err
		}
		key = parsed
	} else {
		generated, err := e.crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
		key = generated.Key
	}

	nonce, err := e.crypto.NewNonce()
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed, err := e.crypto.Seal(key, nonce, plaintext)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	data, err := container.Encode(models.ModeKey, nonce, nil, sealed)
	if err != nil {
		return nil, err
	}

	encoded := crypto.EncodeKey(key)
	md := container.NewKeyMetadata(req.InputName, req.OutputName, encoded.Hex, encoded.Base64, nonce)

	return &Result{Container: data, Metadata: md}, nil
}

func (e *Engine) encryptWithPassword(plaintext []byte, req EncryptRequest) (*Result, error) {
	if req.Secret == "" {
		return nil, &models.MissingCredentialError{Credential: "password"}
	}

	salt, err := e.crypto.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key, err := e.crypto.DeriveKey(req.Secret, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer crypto.ClearBytes(key)

	nonce, err := e.crypto.NewNonce()
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed, err := e.crypto.Seal(key, nonce, plaintext)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	data, err := container.Encode(models.ModePassword, nonce, salt, sealed)
	if err != nil {
		return nil, err
	}

	password := ""
	if e.embedPassword {
		password = req.Secret
	}
	md := container.NewPasswordMetadata(req.InputName, req.OutputName, salt, nonce, password)

	return &Result{Container: data, Metadata: md}, nil
}

// Decrypt opens a container. The mode is supplied out of band since the
// container has no header identifying it.
func (e *Engine) Decrypt(data []byte, mode models.Mode, cred Credentials) ([]byte, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("decrypt: unknown mode %q", mode)
	}

	var external *container.Params
	if cred.metadata != nil {
		p, err := cred.metadata.Params(mode)
		if err != nil {
			return nil, err
		}
		external = p
	}

	c, err := container.Decode(mode, data, external)
	if err != nil {
		return nil, err
	}

	key, err := e.resolveKey(c, cred)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(key)

	return e.crypto.Open(key, c.Nonce, c.Ciphertext)
}

func (e *Engine) resolveKey(c *container.Container, cred Credentials) ([]byte, error) {
	secret := cred.secret(c.Mode)

	switch c.Mode {
	case models.ModeKey:
		if secret == "" {
			return nil, &models.MissingCredentialError{Credential: "key"}
		}
		return e.crypto.ParseKey(secret)

	case models.ModePassword:
		if secret == "" {
			return nil, &models.MissingCredentialError{Credential: "password"}
		}
		key, err := e.crypto.DeriveKey(secret, c.Salt)
		if err != nil {
			return nil, fmt.Errorf("derive key: %w", err)
		}
		return key, nil
	}

	return nil, fmt.Errorf("decrypt: unknown mode %q", c.Mode)
}
