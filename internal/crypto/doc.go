// Package crypto provides the primitives behind filecrypt containers.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key, supplied (hex or base64), generated, or derived
//   - 12-byte random nonce per encryption
//   - 16-byte tag appended to the ciphertext
//   - no associated data
//
// Key derivation uses PBKDF2-HMAC-SHA256 with a 16-byte random salt and
// 100,000 iterations.
//
// Because nothing is bound as associated data, only the plaintext is
// authenticated. The salt and nonce positions in a container are not, so a
// spliced header is detected only indirectly, when the tag fails to verify
// under the resulting key and nonce. Adding associated data would change the
// container format and is deliberately not done.
package crypto
