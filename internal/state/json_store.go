package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
)

// JSONStore implements file-based journal storage for builds without cgo.
type JSONStore struct {
	path   string
	logger *events.Logger

	mu sync.Mutex
}

// journalFile is the on-disk layout.
type journalFile struct {
	SchemaVersion int                    `json:"schema_version"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Entries       []*models.JournalEntry `json:"entries"`
	Checksum      string                 `json:"checksum,omitempty"`
}

// NewJSONStore creates a JSON-based journal store at path.
func NewJSONStore(path string, logger *events.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	return &JSONStore{
		path:   path,
		logger: logger.WithField("component", "json_journal"),
	}, nil
}

// Record appends an entry.
func (s *JSONStore) Record(entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)

	entries, err := s.load()
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"id":        entry.ID,
		"operation": string(entry.Operation),
		"entries":   len(entries) + 1,
	}).Debug("Recording operation")

	return s.save(append(entries, entry))
}

// List returns the newest entries first.
func (s *JSONStore) List(limit int) ([]*models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	// Stored oldest first, equal timestamps keep insertion order.
	reversed := make([]*models.JournalEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	sort.SliceStable(reversed, func(i, j int) bool {
		return reversed[i].Timestamp.After(reversed[j].Timestamp)
	})

	if limit > 0 && len(reversed) > limit {
		reversed = reversed[:limit]
	}
	return reversed, nil
}

// Clear removes every entry.
func (s *JSONStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Clearing journal")

	for _, path := range []string{s.path, s.path + ".backup"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear journal: %w", err)
		}
	}

	return nil
}

// Close releases resources.
func (s *JSONStore) Close() error {
	return nil
}

// load reads the journal, falling back to the backup on corruption.
func (s *JSONStore) load() ([]*models.JournalEntry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal file: %w", err)
	}

	entries, err := decodeJournal(data)
	if err != nil {
		s.logger.WithError(err).Warn("Journal unreadable, trying backup")

		backup, backupErr := os.ReadFile(s.path + ".backup")
		if backupErr != nil {
			return nil, ErrJournalCorrupt
		}
		entries, backupErr = decodeJournal(backup)
		if backupErr != nil {
			return nil, ErrJournalCorrupt
		}
		s.logger.Warn("Loaded journal from backup due to corruption")
	}

	return entries, nil
}

func decodeJournal(data []byte) ([]*models.JournalEntry, error) {
	var file journalFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	if file.Checksum != "" {
		calculated, err := checksum(file)
		if err != nil {
			return nil, err
		}
		if calculated != file.Checksum {
			return nil, fmt.Errorf("checksum mismatch")
		}
	}

	return file.Entries, nil
}

// checksum hashes the file with the checksum field empty.
func checksum(file journalFile) (string, error) {
	file.Checksum = ""
	data, err := json.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("marshal journal for checksum: %w", err)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// save writes the journal atomically after backing up the previous file.
func (s *JSONStore) save(entries []*models.JournalEntry) error {
	file := journalFile{
		SchemaVersion: CurrentSchemaVersion,
		UpdatedAt:     time.Now().UTC(),
		Entries:       entries,
	}

	sum, err := checksum(file)
	if err != nil {
		return err
	}
	file.Checksum = sum

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.path+".backup"); err != nil {
			s.logger.WithError(err).Warn("Failed to create backup")
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename journal file: %w", err)
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
