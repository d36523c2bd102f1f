package container_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/filecrypt/internal/container"
	"github.com/TheMichaelB/filecrypt/internal/models"
)

var (
	testSalt  = bytes.Repeat([]byte{0x5a}, models.SaltSize)
	testNonce = bytes.Repeat([]byte{0xa5}, models.NonceSize)
	testBody  = []byte("ciphertext-with-sixteen-byte-tag")
)

func TestEncode(t *testing.T) {
	t.Run("key mode layout", func(t *testing.T) {
		out, err := container.Encode(models.ModeKey, testNonce, nil, testBody)
		require.NoError(t, err)

		assert.Len(t, out, models.NonceSize+len(testBody))
		assert.Equal(t, testNonce, out[:12])
		assert.Equal(t, testBody, out[12:])
	})

	t.Run("password mode layout", func(t *testing.T) {
		out, err := container.Encode(models.ModePassword, testNonce, testSalt, testBody)
		require.NoError(t, err)

		assert.Len(t, out, models.SaltSize+models.NonceSize+len(testBody))
		assert.Equal(t, testSalt, out[:16])
		assert.Equal(t, testNonce, out[16:28])
		assert.Equal(t, testBody, out[28:])
	})

	tests := []struct {
		name  string
		mode  models.Mode
		nonce []byte
		salt  []byte
	}{
		{"short nonce", models.ModeKey, testNonce[:8], nil},
		{"salt in key mode", models.ModeKey, testNonce, testSalt},
		{"missing salt", models.ModePassword, testNonce, nil},
		{"long salt", models.ModePassword, testNonce, append(testSalt, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := container.Encode(tt.mode, tt.nonce, tt.salt, testBody)
			assert.ErrorIs(t, err, models.ErrFormat)
		})
	}

	t.Run("unknown mode", func(t *testing.T) {
		_, err := container.Encode(models.Mode("rsa"), testNonce, nil, testBody)
		assert.Error(t, err)
	})
}

func TestDecodeFromHeader(t *testing.T) {
	t.Run("key mode", func(t *testing.T) {
		data, err := container.Encode(models.ModeKey, testNonce, nil, testBody)
		require.NoError(t, err)

		c, err := container.Decode(models.ModeKey, data, nil)
		require.NoError(t, err)
		assert.Equal(t, models.ModeKey, c.Mode)
		assert.Nil(t, c.Salt)
		assert.Equal(t, testNonce, c.Nonce)
		assert.Equal(t, testBody, c.Ciphertext)
	})

	t.Run("password mode", func(t *testing.T) {
		data, err := container.Encode(models.ModePassword, testNonce, testSalt, testBody)
		require.NoError(t, err)

		c, err := container.Decode(models.ModePassword, data, nil)
		require.NoError(t, err)
		assert.Equal(t, testSalt, c.Salt)
		assert.Equal(t, testNonce, c.Nonce)
		assert.Equal(t, testBody, c.Ciphertext)
	})

	t.Run("header and tag only", func(t *testing.T) {
		data := make([]byte, models.KeyHeaderSize+models.TagSize)
		c, err := container.Decode(models.ModeKey, data, nil)
		require.NoError(t, err)
		assert.Len(t, c.Ciphertext, models.TagSize)
	})
}

func TestDecodeExternalParams(t *testing.T) {
	otherNonce := bytes.Repeat([]byte{0x11}, models.NonceSize)
	otherSalt := bytes.Repeat([]byte{0x22}, models.SaltSize)

	t.Run("key mode skips header", func(t *testing.T) {
		data, err := container.Encode(models.ModeKey, testNonce, nil, testBody)
		require.NoError(t, err)

		c, err := container.Decode(models.ModeKey, data, &container.Params{Nonce: otherNonce})
		require.NoError(t, err)
		assert.Equal(t, otherNonce, c.Nonce)
		assert.Equal(t, testBody, c.Ciphertext)
	})

	t.Run("password mode skips header", func(t *testing.T) {
		data, err := container.Encode(models.ModePassword, testNonce, testSalt, testBody)
		require.NoError(t, err)

		c, err := container.Decode(models.ModePassword, data, &container.Params{Salt: otherSalt, Nonce: otherNonce})
		require.NoError(t, err)
		assert.Equal(t, otherSalt, c.Salt)
		assert.Equal(t, otherNonce, c.Nonce)
		assert.Equal(t, testBody, c.Ciphertext)
	})

	t.Run("bad external nonce", func(t *testing.T) {
		data, err := container.Encode(models.ModeKey, testNonce, nil, testBody)
		require.NoError(t, err)

		_, err = container.Decode(models.ModeKey, data, &container.Params{Nonce: otherNonce[:4]})
		assert.ErrorIs(t, err, models.ErrFormat)
	})

	t.Run("missing external salt", func(t *testing.T) {
		data, err := container.Encode(models.ModePassword, testNonce, testSalt, testBody)
		require.NoError(t, err)

		_, err = container.Decode(models.ModePassword, data, &container.Params{Nonce: otherNonce})
		assert.ErrorIs(t, err, models.ErrFormat)
	})
}

func TestDecodeTooShort(t *testing.T) {
	tests := []struct {
		name     string
		mode     models.Mode
		size     int
		external *container.Params
	}{
		{"empty key mode", models.ModeKey, 0, nil},
		{"11 bytes key mode", models.ModeKey, 11, nil},
		{"header only key mode", models.ModeKey, models.KeyHeaderSize, nil},
		{"one short of tag key mode", models.ModeKey, models.KeyHeaderSize + models.TagSize - 1, nil},
		{"27 bytes password mode", models.ModePassword, 27, nil},
		{"one short of tag password mode", models.ModePassword, models.PasswordHeaderSize + models.TagSize - 1, nil},
		{"short with external params", models.ModeKey, 20, &container.Params{Nonce: testNonce}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := container.Decode(tt.mode, make([]byte, tt.size), tt.external)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrFormat)
			assert.Contains(t, err.Error(), "too short")
		})
	}
}
