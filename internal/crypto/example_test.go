package crypto_test

import (
	"encoding/hex"
	"fmt"

	"github.com/TheMichaelB/filecrypt/internal/crypto"
)

func ExampleDeriveKey() {
	salt, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")

	key, err := crypto.DeriveKey("pw123", salt)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Key length: %d bytes\n", len(key))
	fmt.Printf("Key: %x\n", key)
	// Output: Key length: 32 bytes
	// Key: 4fde8118fb6ba51b0ec80517271432abc8352db06ce05be94c589e5475366d25
}

func ExampleSeal() {
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i % 256)
	}
	nonce := make([]byte, crypto.NonceSize)

	plaintext := []byte("Secret message")
	sealed, err := crypto.Seal(key, nonce, plaintext)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Sealed length: %d bytes\n", len(sealed))
	fmt.Printf("Format is ciphertext (%d) + tag (%d)\n", len(plaintext), crypto.TagSize)
	// Output: Sealed length: 30 bytes
	// Format is ciphertext (14) + tag (16)
}

func ExampleOpen() {
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i % 256)
	}
	nonce, _ := hex.DecodeString("a0a1a2a3a4a5a6a7a8a9aaab")
	sealed, _ := hex.DecodeString("8e7d10412ab469edeb6fa84bae4731a07dbf70c564")

	plaintext, err := crypto.Open(key, nonce, sealed)
	if err != nil {
		fmt.Printf("Decryption failed: %v\n", err)
		return
	}

	fmt.Printf("Decrypted: %s\n", plaintext)
	// Output: Decrypted: hello
}

func ExampleParseKey() {
	fromHex, _ := crypto.ParseKey("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	fromB64, _ := crypto.ParseKey("AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=")

	fmt.Println(len(fromHex), string(fromHex) == string(fromB64))

	_, err := crypto.ParseKey("c2hvcnQ=")
	fmt.Println(err)
	// Output: 32 true
	// key: key must be 256 bits (32 bytes)
}

func ExampleValidateKeySize() {
	validKey := make([]byte, crypto.KeySize)
	err := crypto.ValidateKeySize(validKey)
	fmt.Printf("Valid key error: %v\n", err)

	invalidKey := make([]byte, 16)
	err = crypto.ValidateKeySize(invalidKey)
	fmt.Printf("Invalid key error: %v\n", err != nil)
	// Output: Valid key error: <nil>
	// Invalid key error: true
}
