// Package ytdlp downloads requested media audio into the inbox using
// the yt-dlp command line tool.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the downloader invoked when none is configured.
const DefaultBinary = "yt-dlp"

// outputTemplate names downloads by title and source id so distinct
// uploads cannot collide. Titles are capped to keep paths reasonable.
const outputTemplate = "%(title).200s [%(id)s].%(ext)s"

// Config captures the downloader settings.
type Config struct {
	// Binary is the yt-dlp executable. Empty means DefaultBinary.
	Binary string
	// ArchivePath is the download archive file; source ids recorded
	// there are not fetched again. Empty disables the archive.
	ArchivePath string
}

// Service fetches remote audio via yt-dlp.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a yt-dlp service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Fetch downloads the best audio for url into destDir as m4a. Already
// archived sources download nothing and return nil.
func (s *Service) Fetch(ctx context.Context, url, destDir string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("fetch: url required")
	}
	if destDir == "" {
		return errors.New("fetch: destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("fetch: ensure destination: %w", err)
	}

	args := s.buildArgs(url, destDir)
	if err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	return nil
}

// buildArgs constructs the yt-dlp invocation: single item, best audio,
// extracted to m4a at original quality.
func (s *Service) buildArgs(url, destDir string) []string {
	args := []string{
		"--no-playlist",
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "m4a",
		"--audio-quality", "0",
	}
	if s.cfg.ArchivePath != "" {
		args = append(args, "--download-archive", s.cfg.ArchivePath)
	}
	args = append(args,
		"--output", filepath.Join(destDir, outputTemplate),
		url,
	)
	return args
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
