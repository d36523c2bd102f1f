package crypto_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/filecrypt/internal/crypto"
	"github.com/TheMichaelB/filecrypt/internal/crypto/testdata"
)

func TestKeyDerivationVectors(t *testing.T) {
	for _, vector := range testdata.KDFVectors {
		t.Run(vector.Name, func(t *testing.T) {
			salt := mustHex(t, vector.Salt)

			key, err := crypto.DeriveKey(vector.Password, salt)
			require.NoError(t, err)
			assert.Equal(t, vector.Key, hex.EncodeToString(key))
		})
	}
}

func TestDeriveKey(t *testing.T) {
	salt := mustHex(t, "000102030405060708090a0b0c0d0e0f")

	t.Run("deterministic", func(t *testing.T) {
		key1, err := crypto.DeriveKey("pw123", salt)
		require.NoError(t, err)
		key2, err := crypto.DeriveKey("pw123", salt)
		require.NoError(t, err)

		assert.Len(t, key1, crypto.KeySize)
		assert.Equal(t, key1, key2)
	})

	t.Run("password changes key", func(t *testing.T) {
		key1, err := crypto.DeriveKey("pw123", salt)
		require.NoError(t, err)
		key2, err := crypto.DeriveKey("pw124", salt)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("salt changes key", func(t *testing.T) {
		other := append([]byte(nil), salt...)
		other[15] ^= 0x01

		key1, err := crypto.DeriveKey("pw123", salt)
		require.NoError(t, err)
		key2, err := crypto.DeriveKey("pw123", other)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("wrong salt size", func(t *testing.T) {
		_, err := crypto.DeriveKey("pw123", make([]byte, 32))
		assert.ErrorIs(t, err, crypto.ErrInvalidSalt)
	})
}
