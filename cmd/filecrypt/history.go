package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent encrypt and decrypt operations",
	Long: `History lists operations recorded in the journal, newest first. The
journal holds file names, sizes and outcomes, never keys or passwords.

Set journal.path in the config (or FILECRYPT_JOURNAL_PATH) to enable it.`,
	Example: `  filecrypt history
  filecrypt history --limit 5 --json
  filecrypt history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyClear bool
)

var errJournalOff = errors.New("journal is disabled: set journal.path in the config")

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"Maximum entries to show (0 = all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false,
		"Delete all history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if journal == nil {
		return errJournalOff
	}

	if historyClear {
		if err := journal.Clear(); err != nil {
			return fmt.Errorf("clear journal: %w", err)
		}
		if jsonOutput {
			printJSON(map[string]interface{}{"success": true, "cleared": true})
		} else {
			printSuccess("History cleared")
		}
		return nil
	}

	entries, err := journal.List(historyLimit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": true,
			"entries": entries,
		})
		return nil
	}

	if len(entries) == 0 {
		printInfo("No operations recorded")
		return nil
	}

	for _, e := range entries {
		if e.Success {
			fmt.Println(e.String())
		} else {
			warningColor.Println(e.String())
		}
	}

	return nil
}
