package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/filecrypt/internal/crypto"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a random 256-bit key",
	Long: `Keygen prints a new random key in hex and base64. Either form is
accepted by --key.`,
	Example: `  filecrypt keygen
  filecrypt keygen --format hex > report.key`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipInit: "true"},
	RunE:        runKeygen,
}

var keygenFormat string

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenFormat, "format", "f", "",
		"Print only one encoding: hex or base64")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	defer crypto.ClearBytes(key.Key)

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":    true,
			"key_hex":    key.Hex,
			"key_base64": key.Base64,
		})
		return nil
	}

	switch keygenFormat {
	case "hex":
		fmt.Println(key.Hex)
	case "base64":
		fmt.Println(key.Base64)
	case "":
		fmt.Printf("Hex:    %s\n", key.Hex)
		fmt.Printf("Base64: %s\n", key.Base64)
	default:
		return fmt.Errorf("invalid --format %q: must be hex or base64", keygenFormat)
	}

	return nil
}
