package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/filecrypt/internal/events"
	"github.com/TheMichaelB/filecrypt/internal/models"
	"github.com/TheMichaelB/filecrypt/internal/services/files"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt <file|dir>...",
	Short: "Encrypt files",
	Long: `Encrypt writes <file>.enc and <file>.enc.meta for every input.

In key mode the key may be given in hex (64 digits) or base64; without --key
a new random key is generated per file and recorded in the metadata. In
password mode the password comes from --password, $FILECRYPT_PASSWORD or a
prompt.

Directories are expanded to the files they directly contain, skipping
existing containers and metadata.`,
	Example: `  filecrypt encrypt report.pdf
  filecrypt encrypt report.pdf --key 000102...1e1f
  filecrypt encrypt --mode password notes/
  filecrypt encrypt photo.jpg --password hunter2 --output vacation`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncrypt,
}

var (
	encryptMode     string
	encryptKey      string
	encryptPassword string
	encryptOutput   string
)

func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVarP(&encryptMode, "mode", "m", "",
		"Encryption mode: key or password (default from config)")
	encryptCmd.Flags().StringVarP(&encryptKey, "key", "k", "",
		"Key in hex or base64 (generated if omitted)")
	encryptCmd.Flags().StringVarP(&encryptPassword, "password", "p", "",
		"Password (will prompt if not provided)")
	encryptCmd.Flags().StringVarP(&encryptOutput, "output", "o", "",
		"Output file name, single input only (.enc is appended if missing)")

	encryptCmd.MarkFlagsMutuallyExclusive("key", "password")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	mode, err := selectMode(encryptMode, encryptKey, encryptPassword)
	if err != nil {
		return err
	}

	inputs, err := fileService.ExpandInputs(args, models.OperationEncrypt)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no files to encrypt")
	}

	secret := encryptKey
	if mode == models.ModePassword {
		secret, err = resolvePassword(encryptPassword, true)
		if err != nil {
			return err
		}
	}

	ctx := events.WithOperationID(cmd.Context(), uuid.NewString())
	result, err := fileService.EncryptFiles(ctx, inputs, files.EncryptOptions{
		Output: encryptOutput,
		Mode:   mode,
		Secret: secret,
	})
	if result == nil {
		return err
	}

	if jsonOutput {
		printJSON(batchJSON(result, err))
		return reported(err)
	}

	for _, item := range result.Items {
		if item.Err != nil {
			printError("✗ %s: %v", item.Input, item.Err)
			continue
		}
		r := item.Encrypt
		printSuccess("✓ %s -> %s (%s)", r.Input, r.Output, formatBytes(r.Size))
		printInfo("  metadata: %s", r.MetaPath)
	}

	if result.Succeeded() > 0 {
		switch {
		case mode == models.ModeKey:
			printWarning("Metadata files contain the encryption key. Store them securely.")
		case cfg.Engine.EmbedPassword:
			printWarning("Metadata files contain the password. Store them securely.")
		}
	}

	printBatchSummary("Encrypted", result)
	return reported(err)
}

// selectMode resolves --mode, letting --key or --password imply it.
func selectMode(flagMode, key, password string) (models.Mode, error) {
	var mode models.Mode
	if flagMode != "" {
		m, err := models.ParseMode(flagMode)
		if err != nil {
			return "", err
		}
		mode = m
	}

	switch {
	case key != "" && mode == models.ModePassword:
		return "", errors.New("--key cannot be used in password mode")
	case password != "" && mode == models.ModeKey:
		return "", errors.New("--password cannot be used in key mode")
	case key != "":
		return models.ModeKey, nil
	case password != "":
		return models.ModePassword, nil
	case mode != "":
		return mode, nil
	default:
		return cfg.Mode(), nil
	}
}

func printBatchSummary(verb string, result *files.BatchResult) {
	if len(result.Items) < 2 {
		return
	}
	if failed := result.Failed(); failed > 0 {
		printWarning("%s %d of %d files, %d failed", verb, result.Succeeded(), len(result.Items), failed)
		return
	}
	printSuccess("%s %d files", verb, len(result.Items))
}

func batchJSON(result *files.BatchResult, err error) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(result.Items))
	for _, item := range result.Items {
		entry := map[string]interface{}{
			"input":   item.Input,
			"success": item.Err == nil,
		}

		switch {
		case item.Err != nil:
			entry["error"] = item.Err.Error()
			entry["code"] = models.ErrorCode(item.Err)
		case item.Encrypt != nil:
			entry["output"] = item.Encrypt.Output
			entry["metadata"] = item.Encrypt.MetaPath
			entry["mode"] = item.Encrypt.Mode
			entry["size"] = item.Encrypt.Size
		case item.Decrypt != nil:
			entry["output"] = item.Decrypt.Output
			entry["mode"] = item.Decrypt.Mode
			entry["size"] = item.Decrypt.Size
			if item.Decrypt.MetaUsed != "" {
				entry["metadata"] = item.Decrypt.MetaUsed
			}
		}

		items = append(items, entry)
	}

	out := map[string]interface{}{
		"success":   err == nil,
		"files":     items,
		"succeeded": result.Succeeded(),
		"failed":    result.Failed(),
	}
	if err != nil {
		out["error"] = fmt.Sprintf("%d of %d files failed", result.Failed(), len(result.Items))
		out["code"] = firstCode(result)
	}
	return out
}

func firstCode(result *files.BatchResult) string {
	for _, item := range result.Items {
		if item.Err != nil {
			return models.ErrorCode(item.Err)
		}
	}
	return ""
}
