package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/TheMichaelB/filecrypt/internal/crypto"
)

// MockProvider mocks crypto.Provider. Methods without an expectation fall
// through to the real provider, so tests only stub what they care about.
type MockProvider struct {
	mock.Mock
	real crypto.Provider
}

// NewMockProvider creates a provider mock backed by the real implementation.
func NewMockProvider() *MockProvider {
	return &MockProvider{real: crypto.NewProvider()}
}

func (m *MockProvider) stubbed(method string) bool {
	for _, call := range m.ExpectedCalls {
		if call.Method == method {
			return true
		}
	}
	return false
}

func (m *MockProvider) Seal(key, nonce, plaintext []byte) ([]byte, error) {
	if !m.stubbed("Seal") {
		return m.real.Seal(key, nonce, plaintext)
	}
	args := m.Called(key, nonce, plaintext)
	return bytesArg(args, 0), args.Error(1)
}

func (m *MockProvider) Open(key, nonce, ciphertext []byte) ([]byte, error) {
	if !m.stubbed("Open") {
		return m.real.Open(key, nonce, ciphertext)
	}
	args := m.Called(key, nonce, ciphertext)
	return bytesArg(args, 0), args.Error(1)
}

func (m *MockProvider) DeriveKey(password string, salt []byte) ([]byte, error) {
	if !m.stubbed("DeriveKey") {
		return m.real.DeriveKey(password, salt)
	}
	args := m.Called(password, salt)
	return bytesArg(args, 0), args.Error(1)
}

func (m *MockProvider) ParseKey(input string) ([]byte, error) {
	if !m.stubbed("ParseKey") {
		return m.real.ParseKey(input)
	}
	args := m.Called(input)
	return bytesArg(args, 0), args.Error(1)
}

func (m *MockProvider) GenerateKey() (*crypto.GeneratedKey, error) {
	if !m.stubbed("GenerateKey") {
		return m.real.GenerateKey()
	}
	args := m.Called()
	if key := args.Get(0); key != nil {
		return key.(*crypto.GeneratedKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) NewNonce() ([]byte, error) {
	if !m.stubbed("NewNonce") {
		return m.real.NewNonce()
	}
	args := m.Called()
	return bytesArg(args, 0), args.Error(1)
}

func (m *MockProvider) NewSalt() ([]byte, error) {
	if !m.stubbed("NewSalt") {
		return m.real.NewSalt()
	}
	args := m.Called()
	return bytesArg(args, 0), args.Error(1)
}

func bytesArg(args mock.Arguments, i int) []byte {
	if v := args.Get(i); v != nil {
		return v.([]byte)
	}
	return nil
}
