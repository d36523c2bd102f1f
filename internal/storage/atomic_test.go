package storage_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
	"github.com/TheMichaelB/filecrypt/internal/storage"
)

func TestAtomicWrites(t *testing.T) {
	tmpDir := t.TempDir()
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	store, err := storage.NewLocalStore(tmpDir, logger)
	require.NoError(t, err)

	t.Run("concurrent writes different files", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 10)

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()

				path := fmt.Sprintf("concurrent-%d.txt.enc", n)
				data := fmt.Sprintf("content-%d", n)

				if err := store.Write(path, []byte(data), storage.ContainerFileMode); err != nil {
					errs <- err
				}
			}(i)
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			t.Errorf("Write error: %v", err)
		}

		for i := 0; i < 10; i++ {
			path := fmt.Sprintf("concurrent-%d.txt.enc", i)
			data, err := store.Read(path)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("content-%d", i), string(data))
		}
	})

	t.Run("metadata written owner-only", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("POSIX permissions")
		}

		err := store.Write("report.pdf.enc.meta", []byte(`{"password":"pw"}`), storage.MetadataFileMode)
		require.NoError(t, err)

		info, err := store.Stat("report.pdf.enc.meta")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode.Perm())
	})

	t.Run("write failure cleanup", func(t *testing.T) {
		err := store.EnsureDir("blocker")
		require.NoError(t, err)

		// A directory already holds the name
		err = store.Write("blocker", []byte("data"), 0644)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeStorage, models.ErrorCode(err))

		files, err := store.ListDir("")
		require.NoError(t, err)

		for _, file := range files {
			assert.False(t, strings.Contains(file.Path, ".tmp."),
				"Found temp file: %s", file.Path)
		}
	})
}

func TestReadSizeLimit(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := storage.NewLocalStore(tmpDir, events.Discard())
	require.NoError(t, err)

	assert.Equal(t, int64(storage.DefaultMaxFileSize), store.MaxFileSize())
	store.SetMaxFileSize(1024)

	require.NoError(t, store.Write("small.txt", bytes.Repeat([]byte("a"), 1024), 0644))
	require.NoError(t, store.Write("large.txt", bytes.Repeat([]byte("b"), 1025), 0644))

	data, err := store.Read("small.txt")
	require.NoError(t, err)
	assert.Len(t, data, 1024)

	_, err = store.Read("large.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTooLarge)
	assert.Equal(t, models.ErrCodeSizeLimit, models.ErrorCode(err))
	assert.Contains(t, err.Error(), "1025 bytes")
}

func TestReadErrors(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := storage.NewLocalStore(tmpDir, events.Discard())
	require.NoError(t, err)

	t.Run("missing file", func(t *testing.T) {
		_, err := store.Read("absent.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))

		var storageErr *models.StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, "read", storageErr.Op)
		assert.Equal(t, "absent.txt", storageErr.Path)
	})

	t.Run("directory", func(t *testing.T) {
		require.NoError(t, store.EnsureDir("folder"))
		_, err := store.Read("folder")
		assert.Error(t, err)
	})
}

func TestDirectoryOperations(t *testing.T) {
	tmpDir := t.TempDir()
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	store, err := storage.NewLocalStore(tmpDir, logger)
	require.NoError(t, err)

	t.Run("create nested directories", func(t *testing.T) {
		err := store.EnsureDir("a/b/c/d/e")
		assert.NoError(t, err)

		for _, dir := range []string{"a", "a/b", "a/b/c", "a/b/c/d", "a/b/c/d/e"} {
			info, err := store.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir)
		}
	})

	t.Run("list directory", func(t *testing.T) {
		require.NoError(t, store.Write("batch/one.txt", []byte("1"), 0644))
		require.NoError(t, store.Write("batch/two.txt", []byte("22"), 0644))
		require.NoError(t, store.EnsureDir("batch/nested"))

		files, err := store.ListDir("batch")
		require.NoError(t, err)
		require.Len(t, files, 3)

		byName := make(map[string]storage.FileInfo)
		for _, f := range files {
			byName[filepath.Base(f.Path)] = f
		}
		assert.Equal(t, int64(2), byName["two.txt"].Size)
		assert.True(t, byName["nested"].IsDir)
		assert.Equal(t, filepath.Join("batch", "one.txt"), byName["one.txt"].Path)
	})

	t.Run("clean empty directories", func(t *testing.T) {
		err := store.Write("cleanup/sub/file.txt", []byte("data"), 0644)
		require.NoError(t, err)

		err = store.Delete("cleanup/sub/file.txt")
		require.NoError(t, err)

		exists, _ := store.Exists("cleanup/sub")
		assert.False(t, exists)
		exists, _ = store.Exists("cleanup")
		assert.False(t, exists)
	})

	t.Run("delete missing file", func(t *testing.T) {
		assert.NoError(t, store.Delete("never-existed.txt"))
	})
}

func TestWorkdirStore(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	store := storage.NewWorkdirStore(events.Discard())

	t.Run("relative paths resolve against working directory", func(t *testing.T) {
		require.NoError(t, store.Write("plain.txt", []byte("hello"), 0644))
		assert.FileExists(t, filepath.Join(dir, "plain.txt"))
	})

	t.Run("parent paths allowed", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
		t.Chdir(filepath.Join(dir, "sub"))

		data, err := store.Read("../plain.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("absolute paths kept", func(t *testing.T) {
		abs := filepath.Join(dir, "abs.txt")
		require.NoError(t, store.Write(abs, []byte("x"), 0644))
		assert.FileExists(t, abs)
	})

	t.Run("symlinks followed", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("Symlink test requires Unix-like OS")
		}

		link := filepath.Join(dir, "link.txt")
		require.NoError(t, os.Symlink(filepath.Join(dir, "plain.txt"), link))

		data, err := store.Read(link)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})
}
