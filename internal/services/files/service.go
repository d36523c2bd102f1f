// Package files runs encryptions and decryptions against files on disk:
// reading inputs, naming outputs, writing metadata sidecars and recording
// each operation in the journal.
package files

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/TheMichaelB/filecrypt/internal/config"
	"github.com/TheMichaelB/filecrypt/internal/container"
	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
	"github.com/TheMichaelB/filecrypt/internal/services/engine"
	"github.com/TheMichaelB/filecrypt/internal/state"
	"github.com/TheMichaelB/filecrypt/internal/storage"
)

// DefaultDecryptedName is used when no better output name can be derived.
const DefaultDecryptedName = "decrypted_file"

// Service manages file encryption operations.
type Service struct {
	engine  *engine.Engine
	store   storage.BlobStore
	journal state.Store
	logger  *events.Logger

	defaultMode   models.Mode
	encryptSuffix string
	metaSuffix    string
	outputDir     string
	parallel      int
}

// NewService creates a file service. journal may be nil to disable history.
func NewService(eng *engine.Engine, store storage.BlobStore, journal state.Store, cfg *config.Config, logger *events.Logger) *Service {
	parallel := cfg.Workers.Parallel
	if parallel < 1 {
		parallel = 1
	}

	return &Service{
		engine:        eng,
		store:         store,
		journal:       journal,
		logger:        logger.WithField("service", "files"),
		defaultMode:   cfg.Mode(),
		encryptSuffix: cfg.Storage.EncryptSuffix,
		metaSuffix:    cfg.Storage.MetaSuffix,
		outputDir:     cfg.Storage.OutputDir,
		parallel:      parallel,
	}
}

// EncryptOptions describes one file encryption.
type EncryptOptions struct {
	Input  string
	Output string      // Empty = <input><encrypt suffix>
	Mode   models.Mode // Empty = configured default
	Secret string      // Key string or password
}

// EncryptResult is the outcome of EncryptFile.
type EncryptResult struct {
	Input    string
	Output   string
	MetaPath string
	Mode     models.Mode
	Size     int64
	Metadata *container.Metadata
}

// DecryptOptions describes one file decryption.
type DecryptOptions struct {
	Input    string
	MetaPath string      // Sidecar; discovered next to Input when empty and no secret given
	Mode     models.Mode // Empty = inferred from metadata, else configured default
	Secret   string      // Key string or password
	Output   string      // Empty = derived
}

// DecryptResult is the outcome of DecryptFile.
type DecryptResult struct {
	Input    string
	Output   string
	Mode     models.Mode
	Size     int64
	MetaUsed string
}

// EncryptFile encrypts one file and writes the container and its metadata.
func (s *Service) EncryptFile(ctx context.Context, opts EncryptOptions) (*EncryptResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = s.defaultMode
	}

	output := s.encryptOutput(opts.Input, opts.Output)
	logger := s.loggerFor(ctx).WithFields(map[string]interface{}{
		"input": opts.Input,
		"mode":  string(mode),
	})

	start := time.Now()
	result, err := s.encryptFile(opts, mode, output)

	size := int64(0)
	if result != nil {
		size = result.Size
	}
	s.record(models.NewJournalEntry(models.OperationEncrypt, mode, opts.Input, output, size, err))

	if err != nil {
		logger.WithError(err).WithField("code", models.ErrorCode(err)).Error("Encryption failed")
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"output":   result.Output,
		"size":     result.Size,
		"duration": time.Since(start).String(),
	}).Info("File encrypted")

	return result, nil
}

func (s *Service) encryptFile(opts EncryptOptions, mode models.Mode, output string) (*EncryptResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	data, err := s.store.Read(opts.Input)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Encrypt(data, engine.EncryptRequest{
		Mode:       mode,
		Secret:     opts.Secret,
		InputName:  filepath.Base(opts.Input),
		OutputName: filepath.Base(output),
	})
	if err != nil {
		return nil, err
	}

	mdData, err := res.Metadata.Marshal()
	if err != nil {
		return nil, err
	}

	metaPath := output + s.metaSuffix

	if err := s.store.Write(output, res.Container, storage.ContainerFileMode); err != nil {
		return nil, err
	}

	if err := s.store.Write(metaPath, mdData, storage.MetadataFileMode); err != nil {
		// A container without its metadata may be unrecoverable in key mode.
		_ = s.store.Delete(output)
		return nil, err
	}

	return &EncryptResult{
		Input:    opts.Input,
		Output:   output,
		MetaPath: metaPath,
		Mode:     mode,
		Size:     int64(len(data)),
		Metadata: res.Metadata,
	}, nil
}

// DecryptFile decrypts one container and writes the plaintext.
func (s *Service) DecryptFile(ctx context.Context, opts DecryptOptions) (*DecryptResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := s.loggerFor(ctx).WithField("input", opts.Input)

	start := time.Now()
	result, mode, err := s.decryptFile(opts)

	var (
		output string
		size   int64
	)
	if result != nil {
		output = result.Output
		size = result.Size
	}
	s.record(models.NewJournalEntry(models.OperationDecrypt, mode, opts.Input, output, size, err))

	if err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"mode": string(mode),
			"code": models.ErrorCode(err),
		}).Error("Decryption failed")
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"output":   result.Output,
		"mode":     string(result.Mode),
		"size":     result.Size,
		"metadata": result.MetaUsed != "",
		"duration": time.Since(start).String(),
	}).Info("File decrypted")

	return result, nil
}

func (s *Service) decryptFile(opts DecryptOptions) (*DecryptResult, models.Mode, error) {
	mode := opts.Mode

	md, metaPath, err := s.loadMetadata(opts)
	if err != nil {
		if mode == "" {
			mode = s.defaultMode
		}
		return nil, mode, err
	}

	if mode == "" {
		if md != nil {
			mode = md.Mode()
		} else {
			mode = s.defaultMode
		}
	}
	if !mode.Valid() {
		return nil, mode, fmt.Errorf("unknown mode %q", mode)
	}

	data, err := s.store.ReadLimit(opts.Input, s.containerLimit())
	if err != nil {
		return nil, mode, err
	}

	var cred engine.Credentials
	if md != nil {
		cred = engine.FromMetadata(md)
		if opts.Secret != "" {
			cred = cred.WithSecret(opts.Secret)
		}
	} else {
		cred = engine.Manual(opts.Secret)
	}

	plaintext, err := s.engine.Decrypt(data, mode, cred)
	if err != nil {
		return nil, mode, err
	}

	output := s.decryptOutput(opts.Input, opts.Output, md)
	if err := s.store.Write(output, plaintext, storage.PlaintextFileMode); err != nil {
		return nil, mode, err
	}

	return &DecryptResult{
		Input:    opts.Input,
		Output:   output,
		Mode:     mode,
		Size:     int64(len(plaintext)),
		MetaUsed: metaPath,
	}, mode, nil
}

// containerLimit is the largest container an input within the size limit
// can produce.
func (s *Service) containerLimit() int64 {
	return s.store.MaxFileSize() + models.PasswordHeaderSize + models.TagSize
}

// loadMetadata reads the explicit sidecar, or the one next to the input when
// the caller supplied no secret.
func (s *Service) loadMetadata(opts DecryptOptions) (*container.Metadata, string, error) {
	metaPath := opts.MetaPath
	if metaPath == "" {
		if opts.Secret != "" {
			return nil, "", nil
		}
		candidate := opts.Input + s.metaSuffix
		exists, err := s.store.Exists(candidate)
		if err != nil || !exists {
			return nil, "", nil
		}
		metaPath = candidate
	}

	raw, err := s.store.ReadLimit(metaPath, storage.MaxMetadataSize)
	if err != nil {
		return nil, "", err
	}

	md, err := container.ParseMetadata(raw)
	if err != nil {
		return nil, "", err
	}

	return md, metaPath, nil
}

// RequiresPassword reports whether decrypting with opts would need a
// password the caller has not supplied: the resolved mode is password and no
// metadata record carries one. Metadata errors are left for DecryptFile.
func (s *Service) RequiresPassword(opts DecryptOptions) bool {
	if opts.Secret != "" {
		return false
	}

	md, _, err := s.loadMetadata(opts)
	if err != nil {
		return false
	}

	mode := opts.Mode
	if mode == "" {
		if md != nil {
			mode = md.Mode()
		} else {
			mode = s.defaultMode
		}
	}

	return mode == models.ModePassword && (md == nil || !md.HasPassword())
}

// encryptOutput names the container: the requested name or the input name,
// always ending in the encrypt suffix.
func (s *Service) encryptOutput(input, requested string) string {
	name := requested
	if name == "" {
		name = input + s.encryptSuffix
	}
	if !strings.HasSuffix(name, s.encryptSuffix) {
		name += s.encryptSuffix
	}
	if s.outputDir != "" {
		name = filepath.Join(s.outputDir, filepath.Base(name))
	}
	return name
}

// decryptOutput picks the plaintext name: explicit, then the name recorded
// in metadata, then the input without its suffix, then a fixed fallback.
// Derived names are placed next to the input.
func (s *Service) decryptOutput(input, requested string, md *container.Metadata) string {
	if requested != "" {
		if s.outputDir != "" {
			return filepath.Join(s.outputDir, filepath.Base(requested))
		}
		return requested
	}

	var name string
	switch {
	case md != nil && safeName(md.InputFile) != "":
		name = safeName(md.InputFile)
	case strings.HasSuffix(input, s.encryptSuffix) && len(filepath.Base(input)) > len(s.encryptSuffix):
		name = strings.TrimSuffix(filepath.Base(input), s.encryptSuffix)
	default:
		name = DefaultDecryptedName
	}

	dir := filepath.Dir(input)
	if s.outputDir != "" {
		dir = s.outputDir
	}
	return filepath.Join(dir, name)
}

// safeName reduces a name taken from metadata to a plain file name.
func safeName(name string) string {
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
	switch name {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	return name
}

func (s *Service) loggerFor(ctx context.Context) *events.Logger {
	if id := events.GetOperationID(ctx); id != "" {
		return s.logger.WithField("operation_id", id)
	}
	return s.logger
}

func (s *Service) record(entry *models.JournalEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(entry); err != nil {
		s.logger.WithError(err).Warn("Failed to record operation")
	}
}

// IsEncryptedName reports whether path carries the encrypt suffix.
func (s *Service) IsEncryptedName(path string) bool {
	return strings.HasSuffix(path, s.encryptSuffix)
}

// IsMetadataName reports whether path carries the metadata suffix.
func (s *Service) IsMetadataName(path string) bool {
	return strings.HasSuffix(path, s.metaSuffix)
}
