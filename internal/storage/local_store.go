package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
)

// DefaultMaxFileSize is the read limit applied when none is configured.
const DefaultMaxFileSize = 16 * 1024 * 1024

// ErrExists is returned by Write under ConflictError.
var ErrExists = errors.New("file already exists")

// LocalStore implements file system operations.
//
// A store created with NewLocalStore is confined to its base directory. One
// created with NewWorkdirStore resolves paths against the working directory
// and accepts any path the user can reach.
type LocalStore struct {
	baseDir          string
	confined         bool
	conflictStrategy ConflictStrategy
	logger           *events.Logger

	// Security settings
	allowSymlinks bool
	maxPathLength int
	maxFileSize   int64
}

// NewLocalStore creates a store confined to baseDir.
func NewLocalStore(baseDir string, logger *events.Logger) (*LocalStore, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}

	return &LocalStore{
		baseDir:          absPath,
		confined:         true,
		conflictStrategy: ConflictOverwrite,
		logger:           logger.WithField("component", "local_store"),
		allowSymlinks:    false,
		maxPathLength:    260, // Windows compatibility
		maxFileSize:      DefaultMaxFileSize,
	}, nil
}

// NewWorkdirStore creates an unconfined store for command-line paths.
// Symlinked inputs are followed since the user named them explicitly.
func NewWorkdirStore(logger *events.Logger) *LocalStore {
	return &LocalStore{
		conflictStrategy: ConflictOverwrite,
		logger:           logger.WithField("component", "local_store"),
		allowSymlinks:    true,
		maxPathLength:    4096,
		maxFileSize:      DefaultMaxFileSize,
	}
}

// SetConflictStrategy sets the conflict resolution strategy.
func (s *LocalStore) SetConflictStrategy(strategy ConflictStrategy) {
	s.conflictStrategy = strategy
}

// SetMaxFileSize sets the maximum file size limit.
func (s *LocalStore) SetMaxFileSize(size int64) {
	s.maxFileSize = size
}

// MaxFileSize returns the read limit in bytes.
func (s *LocalStore) MaxFileSize() int64 {
	return s.maxFileSize
}

// Write saves data to a file atomically.
func (s *LocalStore) Write(path string, data []byte, mode os.FileMode) error {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return &models.StorageError{Op: "write", Path: path, Err: err}
	}

	s.logger.WithFields(map[string]interface{}{
		"path": path,
		"size": len(data),
		"mode": fmt.Sprintf("%#o", mode),
	}).Debug("Writing file")

	parentDir := filepath.Dir(safePath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return &models.StorageError{Op: "create parent directory", Path: path, Err: err}
	}

	if s.conflictStrategy == ConflictError {
		if _, err := os.Lstat(safePath); err == nil {
			return &models.StorageError{Op: "write", Path: path, Err: ErrExists}
		}
	}

	// Write atomically using temp file
	tempPath := fmt.Sprintf("%s.tmp.%d", safePath, time.Now().UnixNano())

	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if err != nil {
		return &models.StorageError{Op: "create temp file", Path: path, Err: err}
	}

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return &models.StorageError{Op: "write temp file", Path: path, Err: err}
	}

	if err := tempFile.Sync(); err != nil {
		return &models.StorageError{Op: "sync file", Path: path, Err: err}
	}

	if err := tempFile.Close(); err != nil {
		return &models.StorageError{Op: "close temp file", Path: path, Err: err}
	}

	// OpenFile applies the umask, the artifact mode must hold exactly.
	if err := os.Chmod(tempPath, mode); err != nil {
		return &models.StorageError{Op: "chmod temp file", Path: path, Err: err}
	}

	if err := os.Rename(tempPath, safePath); err != nil {
		return &models.StorageError{Op: "rename temp file", Path: path, Err: err}
	}

	success = true
	return nil
}

// Read retrieves file contents. Files larger than the size limit are
// rejected with models.ErrTooLarge before any data is read.
func (s *LocalStore) Read(path string) ([]byte, error) {
	return s.ReadLimit(path, s.maxFileSize)
}

// ReadLimit is Read with a caller-chosen limit in bytes.
func (s *LocalStore) ReadLimit(path string, limit int64) ([]byte, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return nil, &models.StorageError{Op: "read", Path: path, Err: err}
	}

	stat, err := os.Lstat(safePath)
	if err != nil {
		return nil, &models.StorageError{Op: "read", Path: path, Err: err}
	}

	if stat.Mode()&os.ModeSymlink != 0 {
		if !s.allowSymlinks {
			return nil, &models.StorageError{Op: "read", Path: path, Err: errors.New("symlinks not allowed")}
		}
		if stat, err = os.Stat(safePath); err != nil {
			return nil, &models.StorageError{Op: "read", Path: path, Err: err}
		}
	}

	if stat.IsDir() {
		return nil, &models.StorageError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}

	if stat.Size() > limit {
		return nil, &models.StorageError{Op: "read", Path: path, Err: tooLarge(stat.Size(), limit)}
	}

	file, err := os.Open(safePath)
	if err != nil {
		return nil, &models.StorageError{Op: "read", Path: path, Err: err}
	}
	defer file.Close()

	// The file may grow between Stat and ReadAll.
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, &models.StorageError{Op: "read", Path: path, Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &models.StorageError{Op: "read", Path: path, Err: tooLarge(int64(len(data)), limit)}
	}

	return data, nil
}

// Delete removes a file.
func (s *LocalStore) Delete(path string) error {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return &models.StorageError{Op: "delete", Path: path, Err: err}
	}

	s.logger.WithField("path", path).Debug("Deleting file")

	if err := os.Remove(safePath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return &models.StorageError{Op: "delete", Path: path, Err: err}
	}

	if s.confined {
		s.cleanEmptyDirs(filepath.Dir(safePath))
	}

	return nil
}

// Exists checks if a file exists.
func (s *LocalStore) Exists(path string) (bool, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return false, &models.StorageError{Op: "stat", Path: path, Err: err}
	}

	_, err = os.Stat(safePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &models.StorageError{Op: "stat", Path: path, Err: err}
}

// Stat returns file information.
func (s *LocalStore) Stat(path string) (FileInfo, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return FileInfo{}, &models.StorageError{Op: "stat", Path: path, Err: err}
	}

	stat, err := os.Lstat(safePath)
	if err != nil {
		return FileInfo{}, &models.StorageError{Op: "stat", Path: path, Err: err}
	}

	info := FileInfo{
		Path:      path,
		Size:      stat.Size(),
		Mode:      stat.Mode(),
		ModTime:   stat.ModTime(),
		IsDir:     stat.IsDir(),
		IsSymlink: stat.Mode()&os.ModeSymlink != 0,
	}

	if info.IsSymlink {
		if target, err := os.Readlink(safePath); err == nil {
			info.LinkTarget = target
		}
	}

	return info, nil
}

// EnsureDir creates a directory if it doesn't exist.
func (s *LocalStore) EnsureDir(path string) error {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return &models.StorageError{Op: "mkdir", Path: path, Err: err}
	}

	if err := os.MkdirAll(safePath, 0755); err != nil {
		return &models.StorageError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// ListDir returns directory contents.
func (s *LocalStore) ListDir(path string) ([]FileInfo, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return nil, &models.StorageError{Op: "list", Path: path, Err: err}
	}

	entries, err := os.ReadDir(safePath)
	if err != nil {
		return nil, &models.StorageError{Op: "list", Path: path, Err: err}
	}

	var files []FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:      filepath.Join(path, entry.Name()),
			Size:      info.Size(),
			Mode:      info.Mode(),
			ModTime:   info.ModTime(),
			IsDir:     info.IsDir(),
			IsSymlink: info.Mode()&os.ModeSymlink != 0,
		})
	}

	return files, nil
}

func tooLarge(size, limit int64) error {
	return fmt.Errorf("%w: %d bytes (max: %d)", models.ErrTooLarge, size, limit)
}

// sanitizePath validates and normalizes a file path.
func (s *LocalStore) sanitizePath(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains null bytes")
	}

	cleaned := filepath.Clean(filepath.FromSlash(path))

	if !s.confined {
		fullPath, err := filepath.Abs(cleaned)
		if err != nil {
			return "", fmt.Errorf("resolve path: %w", err)
		}
		if len(fullPath) > s.maxPathLength {
			return "", fmt.Errorf("path too long: %d characters (max: %d)", len(fullPath), s.maxPathLength)
		}
		return fullPath, nil
	}

	// Check for directory traversal
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path: contains '..'")
	}

	// Absolute paths are taken as relative to the base
	cleaned = strings.TrimPrefix(cleaned, string(filepath.Separator))

	fullPath := filepath.Join(s.baseDir, cleaned)

	if !strings.HasPrefix(fullPath, s.baseDir+string(filepath.Separator)) && fullPath != s.baseDir {
		return "", fmt.Errorf("path escapes base directory")
	}

	if len(fullPath) > s.maxPathLength {
		return "", fmt.Errorf("path too long: %d characters (max: %d)", len(fullPath), s.maxPathLength)
	}

	if err := validatePlatformPath(cleaned); err != nil {
		return "", err
	}

	return fullPath, nil
}

// validatePlatformPath checks platform-specific path restrictions.
func validatePlatformPath(path string) error {
	if runtime.GOOS != "windows" {
		return nil
	}

	reserved := []string{"CON", "PRN", "AUX", "NUL", "COM1", "COM2", "COM3", "COM4",
		"COM5", "COM6", "COM7", "COM8", "COM9", "LPT1", "LPT2", "LPT3",
		"LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9"}

	for _, part := range strings.Split(path, string(filepath.Separator)) {
		upperName := strings.ToUpper(strings.TrimSuffix(part, filepath.Ext(part)))
		for _, r := range reserved {
			if upperName == r {
				return fmt.Errorf("invalid path: contains reserved name '%s'", part)
			}
		}

		for _, char := range `<>:"|?*` {
			if strings.ContainsRune(part, char) {
				return fmt.Errorf("invalid path: contains character '%c'", char)
			}
		}
	}

	return nil
}

// cleanEmptyDirs removes empty parent directories up to the base.
func (s *LocalStore) cleanEmptyDirs(dirPath string) {
	for dirPath != s.baseDir && strings.HasPrefix(dirPath, s.baseDir) {
		entries, err := os.ReadDir(dirPath)
		if err != nil || len(entries) > 0 {
			break
		}

		if err := os.Remove(dirPath); err != nil {
			break
		}

		dirPath = filepath.Dir(dirPath)
	}
}
