package main

import (
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
	"github.com/TheMichaelB/filecrypt/internal/services/files"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt <file|dir>...",
	Short: "Decrypt files",
	Long: `Decrypt restores the plaintext of .enc containers.

With a metadata file (given by --meta, or found next to the container as
<file>.enc.meta) the mode, nonce, salt and credential are taken from it.
Without one, pass --key or --password. A password is prompted for when
neither the flags, $FILECRYPT_PASSWORD nor the metadata provide one.

The output name defaults to the name recorded in the metadata, then the
container name without .enc.`,
	Example: `  filecrypt decrypt report.pdf.enc
  filecrypt decrypt report.pdf.enc --meta keys/report.pdf.enc.meta
  filecrypt decrypt report.pdf.enc --key AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=
  filecrypt decrypt --mode password backups/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecrypt,
}

var (
	decryptMeta     string
	decryptMode     string
	decryptKey      string
	decryptPassword string
	decryptOutput   string
)

func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVar(&decryptMeta, "meta", "",
		"Metadata file (default: <file>.meta when present)")
	decryptCmd.Flags().StringVarP(&decryptMode, "mode", "m", "",
		"Decryption mode: key or password (default from metadata, then config)")
	decryptCmd.Flags().StringVarP(&decryptKey, "key", "k", "",
		"Key in hex or base64")
	decryptCmd.Flags().StringVarP(&decryptPassword, "password", "p", "",
		"Password")
	decryptCmd.Flags().StringVarP(&decryptOutput, "output", "o", "",
		"Output file name, single input only")

	decryptCmd.MarkFlagsMutuallyExclusive("key", "password")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	var mode models.Mode
	if decryptMode != "" || decryptKey != "" || decryptPassword != "" {
		m, err := selectMode(decryptMode, decryptKey, decryptPassword)
		if err != nil {
			return err
		}
		mode = m
	}

	inputs, err := fileService.ExpandInputs(args, models.OperationDecrypt)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no .enc files to decrypt")
	}

	opts := files.DecryptOptions{
		MetaPath: decryptMeta,
		Mode:     mode,
		Secret:   decryptKey + decryptPassword,
		Output:   decryptOutput,
	}

	// Inputs whose password is nowhere on record share one prompt.
	var ready, needPassword []string
	for _, input := range inputs {
		o := opts
		o.Input = input
		if fileService.RequiresPassword(o) {
			needPassword = append(needPassword, input)
		} else {
			ready = append(ready, input)
		}
	}

	ctx := events.WithOperationID(cmd.Context(), uuid.NewString())
	result := &files.BatchResult{}
	var errs []error

	if len(ready) > 0 {
		r, err := fileService.DecryptFiles(ctx, ready, opts)
		if r == nil {
			return err
		}
		result.Items = append(result.Items, r.Items...)
		errs = append(errs, err)
	}

	if len(needPassword) > 0 {
		password, err := resolvePassword("", false)
		if err != nil {
			return err
		}

		o := opts
		o.Secret = password
		o.Mode = models.ModePassword
		r, err := fileService.DecryptFiles(ctx, needPassword, o)
		if r == nil {
			return err
		}
		result.Items = append(result.Items, r.Items...)
		errs = append(errs, err)
	}

	err = errors.Join(errs...)

	if jsonOutput {
		printJSON(batchJSON(result, err))
		return reported(err)
	}

	for _, item := range result.Items {
		if item.Err != nil {
			printError("✗ %s: %v", item.Input, item.Err)
			continue
		}
		r := item.Decrypt
		printSuccess("✓ %s -> %s (%s)", r.Input, r.Output, formatBytes(r.Size))
	}

	printBatchSummary("Decrypted", result)
	return reported(err)
}
