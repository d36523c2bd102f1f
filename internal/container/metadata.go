package container

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

// Metadata is the sidecar record written next to a container. It carries
// everything needed to reverse one encryption.
//
// In password mode the password itself is stored in plaintext, so a metadata
// file must be protected exactly like the password.
type Metadata struct {
	InputFile  string `json:"input_file"`
	OutputFile string `json:"output_file"`

	// Key mode
	KeyHex    string `json:"key_hex,omitempty"`
	KeyBase64 string `json:"key_base64,omitempty"`

	// Password mode
	Salt string `json:"salt,omitempty"`

	Nonce string `json:"nonce,omitempty"`

	// Password is omitted when the engine is built without password embedding.
	Password string `json:"password,omitempty"`
}

// NewKeyMetadata builds the record for a key-mode encryption.
func NewKeyMetadata(inputFile, outputFile string, keyHex, keyBase64 string, nonce []byte) *Metadata {
	return &Metadata{
		InputFile:  inputFile,
		OutputFile: outputFile,
		KeyHex:     keyHex,
		KeyBase64:  keyBase64,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
	}
}

// NewPasswordMetadata builds the record for a password-mode encryption.
func NewPasswordMetadata(inputFile, outputFile string, salt, nonce []byte, password string) *Metadata {
	return &Metadata{
		InputFile:  inputFile,
		OutputFile: outputFile,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Password:   password,
	}
}

// ParseMetadata decodes a JSON metadata record.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &models.FormatError{Field: "metadata", Reason: "invalid JSON", Err: err}
	}
	return &m, nil
}

// Marshal encodes the record as indented JSON.
func (m *Metadata) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return buf.Bytes(), nil
}

// Mode infers the encryption mode from the fields present.
func (m *Metadata) Mode() models.Mode {
	if m.Salt != "" || m.Password != "" {
		return models.ModePassword
	}
	return models.ModeKey
}

// KeyInput returns the stored key, preferring the base64 field over hex.
func (m *Metadata) KeyInput() string {
	if m.KeyBase64 != "" {
		return m.KeyBase64
	}
	return m.KeyHex
}

// HasPassword reports whether the record embeds a password.
func (m *Metadata) HasPassword() bool {
	return m.Password != ""
}

// WithoutPassword returns a copy with the password removed.
func (m *Metadata) WithoutPassword() *Metadata {
	c := *m
	c.Password = ""
	return &c
}

// Params returns the header values carried by the record, or nil when the
// record does not carry a complete set for mode. In password mode both salt
// and nonce must be present.
func (m *Metadata) Params(mode models.Mode) (*Params, error) {
	if m.Nonce == "" {
		return nil, nil
	}
	if mode == models.ModePassword && m.Salt == "" {
		return nil, nil
	}

	nonce, err := decodeField("nonce", m.Nonce, models.NonceSize)
	if err != nil {
		return nil, err
	}
	p := &Params{Nonce: nonce}

	if mode == models.ModePassword {
		salt, err := decodeField("salt", m.Salt, models.SaltSize)
		if err != nil {
			return nil, err
		}
		p.Salt = salt
	}

	return p, nil
}

func decodeField(name, value string, size int) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, &models.FormatError{Field: name, Reason: "invalid base64", Err: err}
	}
	if len(b) != size {
		return nil, &models.FormatError{
			Field:  name,
			Reason: fmt.Sprintf("must be %d bytes, got %d", size, len(b)),
		}
	}
	return b, nil
}
