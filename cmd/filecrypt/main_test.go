package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/filecrypt/internal/config"
	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
	"github.com/TheMichaelB/filecrypt/internal/state"
)

// runCLI executes the root command with fresh flag state.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()

	jsonOutput, quiet, cfgFile, logLevel, onConflict = false, true, "", "", "overwrite"
	encryptMode, encryptKey, encryptPassword, encryptOutput = "", "", "", ""
	decryptMeta, decryptMode, decryptKey, decryptPassword, decryptOutput = "", "", "", "", ""
	historyLimit, historyClear = 20, false
	keygenFormat = ""
	journal = nil

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	shutdown()
	return err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "filecrypt.json")
	data := `{
  "journal": {"path": "journal.json"},
  "log": {"level": "error", "format": "text", "color": false}
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))
	return path
}

func TestCLIRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(passwordEnv, "")
	cfgPath := writeConfig(t, dir)

	plaintext := []byte("quarterly numbers\n")
	require.NoError(t, os.WriteFile("report.csv", plaintext, 0644))
	require.NoError(t, os.WriteFile("notes.txt", []byte("notes"), 0644))

	t.Run("key mode with generated key", func(t *testing.T) {
		require.NoError(t, runCLI(t, "encrypt", "report.csv", "--config", cfgPath))

		assert.FileExists(t, "report.csv.enc")
		assert.FileExists(t, "report.csv.enc.meta")

		require.NoError(t, os.Remove("report.csv"))
		require.NoError(t, runCLI(t, "decrypt", "report.csv.enc", "--config", cfgPath))

		got, err := os.ReadFile("report.csv")
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	})

	t.Run("password mode with embedded password", func(t *testing.T) {
		require.NoError(t, runCLI(t, "encrypt", "notes.txt", "--password", "s3cret", "--output", "vault", "--config", cfgPath))

		assert.FileExists(t, "vault.enc")
		assert.FileExists(t, "vault.enc.meta")

		require.NoError(t, os.Remove("notes.txt"))
		require.NoError(t, runCLI(t, "decrypt", "vault.enc", "--config", cfgPath))

		got, err := os.ReadFile("notes.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("notes"), got)
	})

	t.Run("wrong mode fails", func(t *testing.T) {
		err := runCLI(t, "decrypt", "vault.enc", "--mode", "key", "--meta", "report.csv.enc.meta", "--config", cfgPath)
		assert.ErrorIs(t, err, models.ErrAuthentication)
	})

	t.Run("history is recorded", func(t *testing.T) {
		require.NoError(t, runCLI(t, "history", "--config", cfgPath))

		store, err := state.NewJSONStore(filepath.Join(dir, "journal.json"), events.Discard())
		require.NoError(t, err)
		entries, err := store.List(0)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		assert.False(t, entries[0].Success)
		assert.Equal(t, models.ErrCodeAuth, entries[0].ErrorCode)
	})
}

func TestCLIErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgPath := writeConfig(t, dir)

	t.Run("missing input", func(t *testing.T) {
		err := runCLI(t, "encrypt", "nope.txt", "--config", cfgPath)
		assert.Equal(t, models.ErrCodeStorage, models.ErrorCode(err))
	})

	t.Run("bad config", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"engine": {"default_mode": "rot13"}}`), 0600))

		err := runCLI(t, "encrypt", "x", "--config", bad)
		assert.ErrorIs(t, err, models.ErrInvalidConfig)
	})

	t.Run("keygen bad format", func(t *testing.T) {
		err := runCLI(t, "keygen", "--format", "pem")
		assert.Error(t, err)
	})

	t.Run("config init refuses overwrite", func(t *testing.T) {
		require.NoError(t, runCLI(t, "config", "init", "generated.json"))

		loaded, err := config.NewLoader("generated.json").Load()
		require.NoError(t, err)
		assert.Equal(t, config.DefaultConfig().Storage, loaded.Storage)

		assert.Error(t, runCLI(t, "config", "init", "generated.json"))
	})
}

func TestSelectMode(t *testing.T) {
	cfg = config.DefaultConfig()

	tests := []struct {
		name     string
		mode     string
		key      string
		password string
		want     models.Mode
		wantErr  bool
	}{
		{"config default", "", "", "", models.ModeKey, false},
		{"explicit", "password", "", "", models.ModePassword, false},
		{"key implies key mode", "", "abc", "", models.ModeKey, false},
		{"password implies password mode", "", "", "pw", models.ModePassword, false},
		{"key in password mode", "password", "abc", "", "", true},
		{"password in key mode", "key", "", "pw", "", true},
		{"unknown mode", "rot13", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectMode(tt.mode, tt.key, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1,023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{16 * 1024 * 1024, "16.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.n))
	}
}

func TestLogLevelFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgPath := writeConfig(t, dir)

	flag := rootCmd.PersistentFlags().Lookup("log-level")
	t.Cleanup(func() { flag.Changed = false })

	require.NoError(t, runCLI(t, "config", "show", "--log-level", "warn", "--quiet=false", "--config", cfgPath))
	assert.Equal(t, "warn", cfg.Log.Level)
}
