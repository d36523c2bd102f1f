package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LogEntry represents a captured log entry for testing.
type LogEntry struct {
	Level   string                 `json:"level"`
	Message string                 `json:"msg"`
	Fields  map[string]interface{} `json:"-"`
}

// TestHelpers provides common test helper functions.
type TestHelpers struct {
	t       *testing.T
	tempDir string
}

// NewTestHelpers creates test helpers.
func NewTestHelpers(t *testing.T) *TestHelpers {
	t.Helper()
	return &TestHelpers{
		t:       t,
		tempDir: t.TempDir(),
	}
}

// TempDir returns the temporary directory for this test.
func (h *TestHelpers) TempDir() string {
	return h.tempDir
}

// Path joins name onto the temporary directory.
func (h *TestHelpers) Path(name string) string {
	return filepath.Join(h.tempDir, name)
}

// CreateTempFile creates a temporary file with content.
func (h *TestHelpers) CreateTempFile(name, content string) string {
	return h.CreateTempBinaryFile(name, []byte(content))
}

// CreateTempBinaryFile creates a temporary binary file.
func (h *TestHelpers) CreateTempBinaryFile(name string, content []byte) string {
	h.t.Helper()

	path := h.Path(name)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(h.t, os.WriteFile(path, content, 0644))

	return path
}

// AssertFileExists checks that a file exists.
func (h *TestHelpers) AssertFileExists(path string) {
	h.t.Helper()
	_, err := os.Stat(path)
	assert.NoError(h.t, err, "File should exist: %s", path)
}

// AssertFileContent checks file content matches expected.
func (h *TestHelpers) AssertFileContent(path string, expected []byte) {
	h.t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(h.t, err)
	assert.Equal(h.t, expected, content)
}

// AssertFileMode checks the permission bits of a file.
func (h *TestHelpers) AssertFileMode(path string, mode os.FileMode) {
	h.t.Helper()
	info, err := os.Stat(path)
	require.NoError(h.t, err)
	assert.Equal(h.t, mode, info.Mode().Perm(), "mode of %s", path)
}

// AssertFileNotExists checks that a file does not exist.
func (h *TestHelpers) AssertFileNotExists(path string) {
	h.t.Helper()
	_, err := os.Stat(path)
	assert.True(h.t, os.IsNotExist(err), "File should not exist: %s", path)
}

// TestContext creates a test context with reasonable timeout.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// LogOutput captures JSON log lines for assertions.
type LogOutput struct {
	mu      sync.RWMutex
	entries []LogEntry
	raw     strings.Builder
}

// NewLogOutput creates a new log output capturer.
func NewLogOutput() *LogOutput {
	return &LogOutput{}
}

// Write implements io.Writer. Each call carries one log line.
func (lo *LogOutput) Write(p []byte) (int, error) {
	lo.mu.Lock()
	defer lo.mu.Unlock()

	lo.raw.Write(p)

	var entry LogEntry
	if err := json.Unmarshal(p, &entry); err == nil {
		var fields map[string]interface{}
		_ = json.Unmarshal(p, &fields)
		entry.Fields = fields
		lo.entries = append(lo.entries, entry)
	}
	return len(p), nil
}

// Entries returns captured log entries.
func (lo *LogOutput) Entries() []LogEntry {
	lo.mu.RLock()
	defer lo.mu.RUnlock()

	entries := make([]LogEntry, len(lo.entries))
	copy(entries, lo.entries)
	return entries
}

// String returns everything written so far.
func (lo *LogOutput) String() string {
	lo.mu.RLock()
	defer lo.mu.RUnlock()
	return lo.raw.String()
}

// HasMessage checks if any entry has the message.
func (lo *LogOutput) HasMessage(message string) bool {
	for _, entry := range lo.Entries() {
		if entry.Message == message {
			return true
		}
	}
	return false
}

// Find returns the first entry with the message.
func (lo *LogOutput) Find(message string) (LogEntry, bool) {
	for _, entry := range lo.Entries() {
		if entry.Message == message {
			return entry, true
		}
	}
	return LogEntry{}, false
}

// SkipIfShort skips test if testing.Short() is true.
func SkipIfShort(t *testing.T, reason string) {
	if testing.Short() {
		t.Skipf("Skipping test in short mode: %s", reason)
	}
}
