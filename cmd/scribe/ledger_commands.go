package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/ledger"
	"scribe/internal/logging"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the transcription ledger",
	}

	ledgerCmd.AddCommand(newLedgerListCommand(ctx))

	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded transcriptions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			records, err := ledger.NewStore(cfg.LedgerPath(), logging.NewNop()).List()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger is empty")
				return nil
			}

			if limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}

			rows := make([][]string, 0, len(records))
			for i := len(records) - 1; i >= 0; i-- {
				record := records[i]
				rows = append(rows, []string{
					record.CreatedAt.Local().Format("2006-01-02 15:04"),
					record.AudioFile,
					record.TranscriptFile,
					record.Model,
					record.LanguageHint,
					shortHash(record.SHA256),
				})
			}

			out := renderTable([]string{"Created", "Audio", "Transcript", "Model", "Language", "SHA-256"}, rows)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show (0 for all)")
	return cmd
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
