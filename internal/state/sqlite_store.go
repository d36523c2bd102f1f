package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
)

// SQLiteStore implements SQLite-based journal storage.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger
}

// NewSQLiteStore creates a SQLite journal store.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_journal"),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return store, nil
}

// initialize creates tables and indexes.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS operations (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT NOT NULL UNIQUE,
        operation TEXT NOT NULL,
        mode TEXT NOT NULL,
        input TEXT NOT NULL,
        output TEXT,
        size INTEGER NOT NULL DEFAULT 0,
        success BOOLEAN NOT NULL,
        error_code TEXT,
        created_at TIMESTAMP NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_operations_created ON operations(created_at);

    CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER PRIMARY KEY
    );

    INSERT OR IGNORE INTO schema_info (version) VALUES (?);
    `

	if _, err := s.db.Exec(schema, CurrentSchemaVersion); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Record inserts an entry.
func (s *SQLiteStore) Record(entry *models.JournalEntry) error {
	prepare(entry)

	s.logger.WithFields(map[string]interface{}{
		"id":        entry.ID,
		"operation": string(entry.Operation),
	}).Debug("Recording operation")

	_, err := s.db.Exec(`
        INSERT INTO operations (id, operation, mode, input, output, size, success, error_code, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, entry.ID, string(entry.Operation), string(entry.Mode), entry.Input,
		nullString(entry.Output), entry.Size, entry.Success, nullString(entry.ErrorCode), entry.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}

	return nil
}

// List returns the newest entries first.
func (s *SQLiteStore) List(limit int) ([]*models.JournalEntry, error) {
	query := `
        SELECT id, operation, mode, input, output, size, success, error_code, created_at
        FROM operations
        ORDER BY created_at DESC, seq DESC
    `
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		var (
			e                 models.JournalEntry
			op, mode          string
			output, errorCode sql.NullString
			createdAt         time.Time
		)
		if err := rows.Scan(&e.ID, &op, &mode, &e.Input, &output, &e.Size, &e.Success, &errorCode, &createdAt); err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}

		e.Operation = models.Operation(op)
		e.Mode = models.Mode(mode)
		e.Output = output.String
		e.ErrorCode = errorCode.String
		e.Timestamp = createdAt.UTC()
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}

	return entries, nil
}

// Clear removes every entry.
func (s *SQLiteStore) Clear() error {
	s.logger.Info("Clearing journal")

	if _, err := s.db.Exec("DELETE FROM operations"); err != nil {
		return fmt.Errorf("delete operations: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
