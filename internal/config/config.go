package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

// Config holds all application configuration.
type Config struct {
	// Encryption defaults
	Engine EngineConfig `json:"engine" mapstructure:"engine"`

	// Input and output handling
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Batch processing
	Workers WorkersConfig `json:"workers" mapstructure:"workers"`

	// Operation history
	Journal JournalConfig `json:"journal" mapstructure:"journal"`

	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`
}

// EngineConfig for encryption behavior.
type EngineConfig struct {
	DefaultMode string `json:"default_mode" mapstructure:"default_mode" validate:"oneof=key password"`

	// Store the password in password-mode metadata. Turning this off means
	// decrypting needs the password again.
	EmbedPassword bool `json:"embed_password" mapstructure:"embed_password"`
}

// StorageConfig for reading inputs and writing artifacts.
type StorageConfig struct {
	MaxFileSize   int64  `json:"max_file_size" mapstructure:"max_file_size" validate:"gt=0"`       // Bytes
	EncryptSuffix string `json:"encrypt_suffix" mapstructure:"encrypt_suffix" validate:"required"` // Appended to encrypted outputs
	MetaSuffix    string `json:"meta_suffix" mapstructure:"meta_suffix" validate:"required"`       // Appended to the container name
	OutputDir     string `json:"output_dir" mapstructure:"output_dir"`                             // Empty = next to the input
}

// WorkersConfig for batch encrypt and decrypt.
type WorkersConfig struct {
	Parallel int `json:"parallel" mapstructure:"parallel" validate:"gte=1"`
}

// JournalConfig for the local operation history.
type JournalConfig struct {
	Path string `json:"path" mapstructure:"path"` // SQLite file, empty = disabled
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" mapstructure:"format" validate:"oneof=text json"`
	File   string `json:"file" mapstructure:"file"`   // Log file path (empty = stderr)
	Color  bool   `json:"color" mapstructure:"color"` // Colored level labels on terminals
}

// DefaultMaxFileSize is the default input size limit (16 MiB).
const DefaultMaxFileSize = 16 * 1024 * 1024

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			DefaultMode:   string(models.ModeKey),
			EmbedPassword: true,
		},
		Storage: StorageConfig{
			MaxFileSize:   DefaultMaxFileSize,
			EncryptSuffix: ".enc",
			MetaSuffix:    ".meta",
		},
		Workers: WorkersConfig{
			Parallel: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidConfig, describe(err))
	}

	if !strings.HasPrefix(c.Storage.EncryptSuffix, ".") {
		return fmt.Errorf("%w: storage.encrypt_suffix must start with a dot", models.ErrInvalidConfig)
	}

	if !strings.HasPrefix(c.Storage.MetaSuffix, ".") {
		return fmt.Errorf("%w: storage.meta_suffix must start with a dot", models.ErrInvalidConfig)
	}

	if c.Storage.EncryptSuffix == c.Storage.MetaSuffix {
		return fmt.Errorf("%w: storage.encrypt_suffix and storage.meta_suffix must differ", models.ErrInvalidConfig)
	}

	return nil
}

// Mode returns the configured default mode.
func (c *Config) Mode() models.Mode {
	return models.Mode(c.Engine.DefaultMode)
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	var dirs []string

	if c.Storage.OutputDir != "" {
		dirs = append(dirs, c.Storage.OutputDir)
	}

	if c.Journal.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Journal.Path))
	}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// describe turns validator output into config key paths.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", keyPath(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return strings.Join(msgs, "; ")
}

var keyNames = map[string]string{
	"DefaultMode":   "default_mode",
	"EmbedPassword": "embed_password",
	"MaxFileSize":   "max_file_size",
	"EncryptSuffix": "encrypt_suffix",
	"MetaSuffix":    "meta_suffix",
	"OutputDir":     "output_dir",
}

// keyPath maps "Config.Log.Level" to "log.level".
func keyPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if name, ok := keyNames[p]; ok {
			parts[i] = name
		} else {
			parts[i] = strings.ToLower(p)
		}
	}
	return strings.Join(parts, ".")
}
