package crypto_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/filecrypt/internal/crypto"
	"github.com/TheMichaelB/filecrypt/internal/crypto/testdata"
	"github.com/TheMichaelB/filecrypt/internal/models"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestSealKnownAnswer(t *testing.T) {
	tc := testdata.GCMTestCase15

	key := mustHex(t, tc.Key)
	nonce := mustHex(t, tc.Nonce)
	plaintext := mustHex(t, tc.Plaintext)

	sealed, err := crypto.Seal(key, nonce, plaintext)
	require.NoError(t, err)
	assert.Equal(t, tc.Ciphertext, hex.EncodeToString(sealed))

	opened, err := crypto.Open(key, nonce, sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestProvider_Seal(t *testing.T) {
	provider := crypto.NewProvider()

	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	nonce := make([]byte, crypto.NonceSize)

	t.Run("appends tag", func(t *testing.T) {
		plaintext := []byte("Hello, World!")
		sealed, err := provider.Seal(key, nonce, plaintext)
		require.NoError(t, err)
		assert.Len(t, sealed, len(plaintext)+crypto.TagSize)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		a, err := provider.Seal(key, nonce, []byte("same"))
		require.NoError(t, err)
		b, err := provider.Seal(key, nonce, []byte("same"))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := provider.Seal([]byte("short"), nonce, []byte("x"))
		assert.ErrorIs(t, err, crypto.ErrInvalidKey)
		assert.Contains(t, err.Error(), "got 5")
	})

	t.Run("invalid nonce size", func(t *testing.T) {
		_, err := provider.Seal(key, make([]byte, 16), []byte("x"))
		assert.ErrorIs(t, err, crypto.ErrInvalidNonce)
	})
}

func TestProvider_Open(t *testing.T) {
	provider := crypto.NewProvider()

	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	nonce, err := provider.NewNonce()
	require.NoError(t, err)

	t.Run("decrypt with valid key and ciphertext", func(t *testing.T) {
		plaintext := []byte("Hello, World!")
		sealed, err := provider.Seal(key, nonce, plaintext)
		require.NoError(t, err)

		result, err := provider.Open(key, nonce, sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, result)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := provider.Open([]byte("short"), nonce, make([]byte, 32))
		assert.ErrorIs(t, err, crypto.ErrInvalidKey)
	})

	t.Run("ciphertext shorter than tag", func(t *testing.T) {
		_, err := provider.Open(key, nonce, []byte("short"))
		assert.ErrorIs(t, err, models.ErrAuthentication)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		sealed, err := provider.Seal(key, nonce, []byte("sensitive data"))
		require.NoError(t, err)

		sealed[len(sealed)-1] ^= 0xFF

		_, err = provider.Open(key, nonce, sealed)
		assert.ErrorIs(t, err, models.ErrAuthentication)
	})

	t.Run("wrong nonce", func(t *testing.T) {
		sealed, err := provider.Seal(key, nonce, []byte("sensitive data"))
		require.NoError(t, err)

		other := append([]byte(nil), nonce...)
		other[0] ^= 0x01

		_, err = provider.Open(key, other, sealed)
		assert.ErrorIs(t, err, models.ErrAuthentication)
	})
}

func TestContainerVectorsOpen(t *testing.T) {
	for _, vector := range testdata.ContainerVectors {
		t.Run(vector.Name, func(t *testing.T) {
			data := mustHex(t, vector.Container)

			var key []byte
			header := models.KeyHeaderSize
			if vector.Mode == "password" {
				header = models.PasswordHeaderSize
				salt := data[:crypto.SaltSize]
				assert.Equal(t, vector.Salt, hex.EncodeToString(salt))

				var err error
				key, err = crypto.DeriveKey(vector.Password, salt)
				require.NoError(t, err)
			} else {
				key = mustHex(t, vector.Key)
			}

			nonce := data[header-crypto.NonceSize : header]
			assert.Equal(t, vector.Nonce, hex.EncodeToString(nonce))

			plaintext, err := crypto.Open(key, nonce, data[header:])
			require.NoError(t, err)
			assert.Equal(t, vector.Plaintext, string(plaintext))
		})
	}
}

func TestRandomSources(t *testing.T) {
	provider := crypto.NewProvider()

	nonce, err := provider.NewNonce()
	require.NoError(t, err)
	assert.Len(t, nonce, crypto.NonceSize)

	salt, err := provider.NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, crypto.SaltSize)
}

func TestClearBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	crypto.ClearBytes(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
}
