package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipFetch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the inbox once",
		Long:  "Fetch listed URLs, then transcribe and archive every audio file in the inbox. The exit status is nonzero when at least one audio file fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runner := pipeline.NewRunner(cfg, logger)
			report, err := runner.Run(signalCtx, pipeline.RunOptions{SkipFetch: skipFetch})
			if err != nil {
				return err
			}

			printRunSummary(cmd.OutOrStdout(), cfg, report)
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d audio files failed; details in %s", report.Failed, report.Scanned, cfg.ErrorLogPath())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "Skip the URL download phase")
	return cmd
}

func printRunSummary(out io.Writer, cfg *config.Config, report *pipeline.Report) {
	if report.FetchAttempted > 0 {
		fmt.Fprintf(out, "Fetched %d of %d URLs\n", report.FetchAttempted-report.FetchFailed, report.FetchAttempted)
	}
	if report.Scanned == 0 {
		fmt.Fprintf(out, "No audio files found in %s\n", cfg.Paths.InboxDir)
		return
	}
	fmt.Fprintf(out, "Transcribed %d, skipped %d, failed %d in %s\n",
		report.Transcribed, report.Skipped, report.Failed, report.Duration.Round(time.Second))
}
