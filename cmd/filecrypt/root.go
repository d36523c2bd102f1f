package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/filecrypt/internal/config"
	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/services/engine"
	"github.com/TheMichaelB/filecrypt/internal/services/files"
	"github.com/TheMichaelB/filecrypt/internal/state"
	"github.com/TheMichaelB/filecrypt/internal/storage"
)

// skipInit marks commands that run without loading configuration.
const skipInit = "skip-init"

var (
	cfgFile    string
	jsonOutput bool
	logLevel   string
	quiet      bool
	onConflict string

	cfg         *config.Config
	logger      *events.Logger
	journal     state.Store
	fileService *files.Service
)

var rootCmd = &cobra.Command{
	Use:   "filecrypt",
	Short: "Encrypt and decrypt files with AES-256-GCM",
	Long: `filecrypt encrypts files with AES-256-GCM using either a 256-bit key or a
password (PBKDF2-HMAC-SHA256, 100,000 rounds).

Every encryption writes the container next to a JSON metadata file holding
what is needed to decrypt it. In key mode that includes the key; in password
mode, the password unless embedding is disabled. Protect metadata files
accordingly.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initApp,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "",
		"Config file (default: ./filecrypt.json, ./.filecrypt.json, ~/.config/filecrypt/config.json)")
	flags.BoolVar(&jsonOutput, "json", false,
		"Output results as JSON")
	flags.StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	flags.BoolVarP(&quiet, "quiet", "q", false,
		"Only print errors")
	flags.StringVar(&onConflict, "on-conflict", "overwrite",
		"Existing output files: overwrite or error")
}

func initApp(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipInit] != "" {
		return nil
	}

	loader := config.NewLoader(cfgFile)
	if err := loader.Viper().BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	var err error
	cfg, err = loader.Load()
	if err != nil {
		return err
	}

	if quiet {
		cfg.Log.Level = "error"
	}
	if !cfg.Log.Color {
		color.NoColor = true
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	events.SetDefault(logger)

	if path := loader.ConfigFile(); path != "" {
		logger.WithField("path", path).Debug("Loaded config")
	}

	strategy, ok := storage.ParseConflictStrategy(onConflict)
	if !ok {
		return fmt.Errorf("invalid --on-conflict %q: must be overwrite or error", onConflict)
	}

	store := storage.NewWorkdirStore(logger)
	store.SetMaxFileSize(cfg.Storage.MaxFileSize)
	store.SetConflictStrategy(strategy)

	if cfg.Journal.Path != "" {
		journal, err = state.Open(cfg.Journal.Path, logger)
		if err != nil {
			// History is optional; encryption still works without it.
			logger.WithError(err).Warn("Journal unavailable")
			journal = nil
		}
	}

	eng := engine.New(engine.WithPasswordInMetadata(cfg.Engine.EmbedPassword))
	fileService = files.NewService(eng, store, journal, cfg, logger)

	return nil
}

// shutdown releases what initApp opened.
func shutdown() {
	if journal != nil {
		if err := journal.Close(); err != nil && logger != nil {
			logger.WithError(err).Warn("Failed to close journal")
		}
	}
	if logger != nil {
		_ = logger.Close()
	}
}
