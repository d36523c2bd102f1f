package state

import (
	"sync"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

// MockStore provides an in-memory journal for testing.
type MockStore struct {
	mu      sync.RWMutex
	entries []*models.JournalEntry

	// RecordErr, when set, fails every Record.
	RecordErr error
}

// NewMockStore creates a mock journal.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Record appends a copy of the entry.
func (m *MockStore) Record(entry *models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecordErr != nil {
		return m.RecordErr
	}

	prepare(entry)
	c := *entry
	m.entries = append(m.entries, &c)
	return nil
}

// List returns copies, newest first.
func (m *MockStore) List(limit int) ([]*models.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.JournalEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		c := *m.entries[i]
		out = append(out, &c)
	}
	return out, nil
}

// Clear removes every entry.
func (m *MockStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// Close closes the store (no-op for mock).
func (m *MockStore) Close() error {
	return nil
}

// Helper methods for testing

// Entries returns all entries in insertion order.
func (m *MockStore) Entries() []models.JournalEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.JournalEntry, len(m.entries))
	for i, e := range m.entries {
		out[i] = *e
	}
	return out
}
