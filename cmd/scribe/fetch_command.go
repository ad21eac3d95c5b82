package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scribe/internal/logging"
	"scribe/internal/pipeline"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download listed URLs into the inbox",
		Long:  "Run only the URL download phase: every entry in the inbox URL file is fetched with yt-dlp. Failed downloads are logged and left for the next attempt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runner := pipeline.NewRunner(cfg, logger)
			report, err := runner.Fetch(signalCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.FetchAttempted == 0 {
				fmt.Fprintf(out, "No URLs listed in %s\n", cfg.URLFilePath())
				return nil
			}
			fmt.Fprintf(out, "Fetched %d of %d URLs\n", report.FetchAttempted-report.FetchFailed, report.FetchAttempted)
			if report.FetchFailed > 0 {
				fmt.Fprintf(out, "%d downloads failed; details in %s\n", report.FetchFailed, cfg.ErrorLogPath())
			}
			return nil
		},
	}
}
