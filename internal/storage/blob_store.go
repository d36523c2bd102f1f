package storage

import (
	"os"
	"time"
)

// BlobStore reads plaintext and container files and writes encryption
// artifacts.
type BlobStore interface {
	// Write saves data to a file path atomically.
	Write(path string, data []byte, mode os.FileMode) error

	// Read retrieves file contents, refusing files over the size limit.
	Read(path string) ([]byte, error)

	// ReadLimit retrieves file contents, refusing files over limit bytes.
	ReadLimit(path string, limit int64) ([]byte, error)

	// Delete removes a file.
	Delete(path string) error

	// Exists checks if a file exists.
	Exists(path string) (bool, error)

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// EnsureDir creates a directory if it doesn't exist.
	EnsureDir(path string) error

	// ListDir returns directory contents.
	ListDir(path string) ([]FileInfo, error)

	// MaxFileSize returns the read limit in bytes.
	MaxFileSize() int64
}

// FileInfo contains file metadata.
type FileInfo struct {
	Path       string
	Size       int64
	Mode       os.FileMode
	ModTime    time.Time
	IsDir      bool
	IsSymlink  bool
	LinkTarget string
}

// ConflictStrategy defines how to handle an existing output file.
type ConflictStrategy int

const (
	// ConflictOverwrite replaces existing files.
	ConflictOverwrite ConflictStrategy = iota

	// ConflictError returns an error on conflict.
	ConflictError
)

// ParseConflictStrategy converts a flag value.
func ParseConflictStrategy(s string) (ConflictStrategy, bool) {
	switch s {
	case "", "overwrite":
		return ConflictOverwrite, true
	case "error", "fail":
		return ConflictError, true
	default:
		return ConflictOverwrite, false
	}
}

// MaxMetadataSize caps reads of metadata sidecars.
const MaxMetadataSize int64 = 64 * 1024

// Permissions for written artifacts. Metadata can hold a key or password.
const (
	ContainerFileMode os.FileMode = 0644
	MetadataFileMode  os.FileMode = 0600
	PlaintextFileMode os.FileMode = 0600
)
