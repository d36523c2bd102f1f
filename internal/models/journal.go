package models

import (
	"fmt"
	"time"
)

// Operation names a journaled action.
type Operation string

const (
	OperationEncrypt Operation = "encrypt"
	OperationDecrypt Operation = "decrypt"
)

// JournalEntry records one encrypt or decrypt. It never holds key material,
// passwords or file contents.
type JournalEntry struct {
	ID        string    `json:"id"`
	Operation Operation `json:"operation"`
	Mode      Mode      `json:"mode"`
	Input     string    `json:"input"`
	Output    string    `json:"output,omitempty"`
	Size      int64     `json:"size"`
	Success   bool      `json:"success"`
	ErrorCode string    `json:"error_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewJournalEntry builds an entry from the outcome of an operation.
func NewJournalEntry(op Operation, mode Mode, input, output string, size int64, err error) *JournalEntry {
	return &JournalEntry{
		Operation: op,
		Mode:      mode,
		Input:     input,
		Output:    output,
		Size:      size,
		Success:   err == nil,
		ErrorCode: ErrorCode(err),
		Timestamp: time.Now().UTC(),
	}
}

// Status returns "ok" or the error code.
func (e *JournalEntry) Status() string {
	if e.Success {
		return "ok"
	}
	return e.ErrorCode
}

// String formats the entry for a history listing.
func (e *JournalEntry) String() string {
	target := e.Output
	if target == "" {
		target = "-"
	}
	return fmt.Sprintf("%s %-7s %-8s %s -> %s [%s]",
		e.Timestamp.Local().Format("2006-01-02 15:04:05"),
		e.Operation, e.Mode, e.Input, target, e.Status())
}
