// Package state keeps the local history of encrypt and decrypt operations.
package state

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
)

// Store persists journal entries.
type Store interface {
	// Record appends an entry, assigning an ID and timestamp when unset.
	Record(entry *models.JournalEntry) error

	// List returns the newest entries first. limit <= 0 returns all.
	List(limit int) ([]*models.JournalEntry, error)

	// Clear removes every entry.
	Clear() error

	// Close releases resources.
	Close() error
}

// Errors
var (
	ErrJournalCorrupt  = errors.New("journal file is corrupt")
	ErrJournalDisabled = errors.New("journal is disabled, set journal.path")
)

// CurrentSchemaVersion for migrations.
const CurrentSchemaVersion = 1

// Open picks a store by file extension: .json selects the JSON file store,
// anything else SQLite.
func Open(path string, logger *events.Logger) (Store, error) {
	if path == "" {
		return nil, ErrJournalDisabled
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONStore(path, logger)
	}
	return NewSQLiteStore(path, logger)
}

// prepare fills the ID and timestamp of a new entry.
func prepare(entry *models.JournalEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
}
