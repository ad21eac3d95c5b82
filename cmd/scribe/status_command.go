package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/deps"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/preflight"
	"scribe/internal/sources"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show preflight, dependency, and inbox status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			fmt.Fprintln(stdout, renderSectionHeader("Preflight", colorize))
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			fmt.Fprintln(stdout, renderSectionHeader("Dependencies", colorize))
			for _, line := range dependencyLines(preflight.CheckSystemDeps(cfg), colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			fmt.Fprintln(stdout, renderSectionHeader("Inbox", colorize))
			rows, err := buildInboxRows(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, renderTable([]string{"Resource", "Count"}, rows, 2))
			return nil
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	for _, status := range statuses {
		if status.Available {
			message := "Ready"
			if status.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", status.Command)
			}
			lines = append(lines, renderStatusLine(status.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(status.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if status.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(status.Name, kind, detail, colorize))
	}

	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, status := range missing {
			names = append(names, status.Name)
		}
		lines = append(lines, renderStatusLine("Missing", statusWarn, strings.Join(names, ", "), colorize))
	}
	return lines
}

func buildInboxRows(cfg *config.Config) ([][]string, error) {
	items, err := media.Scan(cfg.Paths.InboxDir)
	if err != nil {
		return nil, err
	}
	urls, err := sources.LoadURLFile(cfg.URLFilePath())
	if err != nil {
		return nil, err
	}
	records, err := ledger.NewStore(cfg.LedgerPath(), logging.NewNop()).List()
	if err != nil {
		return nil, err
	}
	transcripts, err := countFiles(cfg.TranscriptsDir(), func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ".txt")
	})
	if err != nil {
		return nil, err
	}
	archived, err := countFiles(cfg.ArchiveDir(), media.IsAudioFile)
	if err != nil {
		return nil, err
	}

	return [][]string{
		{"Audio files pending", strconv.Itoa(len(items))},
		{"Fetch queue", strconv.Itoa(len(urls))},
		{"Ledger records", strconv.Itoa(len(records))},
		{"Transcripts", strconv.Itoa(transcripts)},
		{"Archived audio", strconv.Itoa(archived)},
	}, nil
}

func countFiles(dir string, match func(string) bool) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		count++
	}
	return count, nil
}
