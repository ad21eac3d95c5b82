package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/credentials"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(out, "Edit the file to set paths.inbox_dir, and export %s before running scribe.\n", credentials.EnvAPIKey)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()

			printConfigLine(out, "Config path", ctx.configPath)
			printConfigLine(out, "Config file found", yesNo(ctx.configExists))
			fmt.Fprintln(out)

			printConfigLine(out, "Inbox directory", cfg.Paths.InboxDir)
			printConfigLine(out, "Log directory", cfg.Paths.LogDir)
			printConfigLine(out, "Model", cfg.Transcription.Model)
			printConfigLine(out, "Language hint", fmt.Sprintf("%s (auto-detect: %s)", cfg.Transcription.Language, yesNo(cfg.Transcription.AutoDetect)))
			printConfigLine(out, "API base URL", cfg.Transcription.BaseURL)
			printConfigLine(out, "Request timeout", fmt.Sprintf("%ds", cfg.Transcription.TimeoutSeconds))
			printConfigLine(out, "Keychain service", cfg.Transcription.KeychainService)
			printConfigLine(out, "Upload limit", fmt.Sprintf("%d bytes", cfg.Upload.MaxBytes))
			printConfigLine(out, "Transcode bitrate", cfg.Upload.Bitrate)
			printConfigLine(out, "Archive processed", yesNo(cfg.Archive.MoveProcessed))
			printConfigLine(out, "Archive skipped", yesNo(cfg.Archive.MoveSkipped))
			printConfigLine(out, "Fetch enabled", yesNo(cfg.Fetch.Enabled))
			printConfigLine(out, "Fetch timeout", fmt.Sprintf("%ds", cfg.Fetch.TimeoutSeconds))
			topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
			if topic == "" {
				topic = "(not set)"
			}
			printConfigLine(out, "Ntfy topic", topic)
			printConfigLine(out, "Log format", cfg.Logging.Format)
			printConfigLine(out, "Log level", cfg.Logging.Level)
			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file location",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, exists, err := config.ResolvePath(ctx.flagPath())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resolved)
			if !exists {
				fmt.Fprintln(cmd.ErrOrStderr(), "File does not exist; run 'scribe config init' to create it")
			}
			return nil
		},
	}
}

func printConfigLine(out io.Writer, label, value string) {
	fmt.Fprintf(out, "%-19s %s\n", label+":", value)
}
