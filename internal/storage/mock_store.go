package storage

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

// MockStore provides an in-memory BlobStore for testing.
type MockStore struct {
	mu          sync.RWMutex
	files       map[string][]byte
	modes       map[string]os.FileMode
	dirs        map[string]bool
	maxFileSize int64
	conflict    ConflictStrategy

	// WriteErr, when set, fails every Write.
	WriteErr error
}

// NewMockStore creates a mock blob store.
func NewMockStore() *MockStore {
	return &MockStore{
		files:       make(map[string][]byte),
		modes:       make(map[string]os.FileMode),
		dirs:        make(map[string]bool),
		maxFileSize: DefaultMaxFileSize,
	}
}

// SetMaxFileSize sets the read limit.
func (m *MockStore) SetMaxFileSize(size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxFileSize = size
}

// SetConflictStrategy sets the conflict resolution strategy.
func (m *MockStore) SetConflictStrategy(strategy ConflictStrategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflict = strategy
}

// MaxFileSize returns the read limit in bytes.
func (m *MockStore) MaxFileSize() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxFileSize
}

// Write saves data to a file.
func (m *MockStore) Write(p string, data []byte, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return &models.StorageError{Op: "write", Path: p, Err: m.WriteErr}
	}

	if _, exists := m.files[p]; exists && m.conflict == ConflictError {
		return &models.StorageError{Op: "write", Path: p, Err: ErrExists}
	}

	m.files[p] = append([]byte(nil), data...)
	m.modes[p] = mode
	return nil
}

// Read retrieves file contents.
func (m *MockStore) Read(p string) ([]byte, error) {
	return m.ReadLimit(p, m.MaxFileSize())
}

// ReadLimit retrieves file contents, refusing data over limit bytes.
func (m *MockStore) ReadLimit(p string, limit int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[p]
	if !ok {
		return nil, &models.StorageError{Op: "read", Path: p, Err: os.ErrNotExist}
	}

	if int64(len(data)) > limit {
		return nil, &models.StorageError{
			Op:   "read",
			Path: p,
			Err:  fmt.Errorf("%w: %d bytes (max: %d)", models.ErrTooLarge, len(data), limit),
		}
	}

	return append([]byte(nil), data...), nil
}

// Delete removes a file.
func (m *MockStore) Delete(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, p)
	delete(m.modes, p)
	return nil
}

// Exists checks if a file exists.
func (m *MockStore) Exists(p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.files[p]
	return exists || m.dirs[p], nil
}

// Stat returns file information.
func (m *MockStore) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if data, ok := m.files[p]; ok {
		return FileInfo{
			Path:    p,
			Size:    int64(len(data)),
			Mode:    m.modes[p],
			ModTime: time.Now(),
		}, nil
	}

	if m.dirs[p] {
		return FileInfo{
			Path:    p,
			Mode:    os.ModeDir | 0755,
			ModTime: time.Now(),
			IsDir:   true,
		}, nil
	}

	return FileInfo{}, &models.StorageError{Op: "stat", Path: p, Err: os.ErrNotExist}
}

// EnsureDir creates a directory.
func (m *MockStore) EnsureDir(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirs[p] = true
	return nil
}

// ListDir returns the direct children of dir, sorted by path.
func (m *MockStore) ListDir(dir string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.dirs[dir] {
		return nil, &models.StorageError{Op: "list", Path: dir, Err: os.ErrNotExist}
	}

	var files []FileInfo
	for filePath, data := range m.files {
		if isChild(dir, filePath) {
			files = append(files, FileInfo{
				Path:    filePath,
				Size:    int64(len(data)),
				Mode:    m.modes[filePath],
				ModTime: time.Now(),
			})
		}
	}

	for dirPath := range m.dirs {
		if dirPath != dir && isChild(dir, dirPath) {
			files = append(files, FileInfo{
				Path:    dirPath,
				Mode:    os.ModeDir | 0755,
				ModTime: time.Now(),
				IsDir:   true,
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isChild(dir, p string) bool {
	if dir == "" || dir == "." {
		return !strings.Contains(p, "/")
	}
	return path.Dir(p) == strings.TrimSuffix(dir, "/")
}

// Helper methods for testing

// FileExists checks if a file exists (helper for tests).
func (m *MockStore) FileExists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.files[p]
	return exists
}

// FileMode returns the mode a file was written with.
func (m *MockStore) FileMode(p string) os.FileMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modes[p]
}

// Paths returns every stored file path, sorted.
func (m *MockStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clear removes all files and directories.
func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files = make(map[string][]byte)
	m.modes = make(map[string]os.FileMode)
	m.dirs = make(map[string]bool)
}
