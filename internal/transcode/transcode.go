// Package transcode keeps upload payloads under the transcription
// API's size ceiling.
//
// Files already within the limit pass through untouched. Oversized
// recordings are re-encoded to a low-bitrate AAC copy next to the
// original; the copy is a scoped temporary that the caller must remove
// after use.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// DefaultBinary is the transcoder invoked when none is configured.
	DefaultBinary = "ffmpeg"
	// DefaultBitrate is the target audio bitrate for compressed copies.
	DefaultBitrate = "64k"

	compressedSuffix = ".compressed.m4a"
)

// Transcoder compresses audio files that exceed the upload ceiling.
type Transcoder struct {
	binary        string
	bitrate       string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// New creates a Transcoder using the given ffmpeg binary and target
// bitrate. Empty values fall back to defaults.
func New(binary, bitrate string) *Transcoder {
	if binary == "" {
		binary = DefaultBinary
	}
	if bitrate == "" {
		bitrate = DefaultBitrate
	}
	return &Transcoder{binary: binary, bitrate: bitrate}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Transcoder) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

// CompressedPath returns the derived location of the compressed copy
// for path: the extension is replaced by ".compressed.m4a".
func CompressedPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + compressedSuffix
}

// EnsureWithinLimit returns the path the caller should upload for the
// recording at path. When the file is at or under maxBytes the input
// path comes back unchanged and cleanup is false. Otherwise a
// compressed copy is produced and returned with cleanup true; any
// stale copy from a previous attempt is replaced.
func (t *Transcoder) EnsureWithinLimit(ctx context.Context, path string, maxBytes int64) (workPath string, cleanup bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() <= maxBytes {
		return path, false, nil
	}

	compressed := CompressedPath(path)
	if err := os.Remove(compressed); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("remove stale copy %s: %w", compressed, err)
	}

	args := t.buildArgs(path, compressed)
	if err := t.run(ctx, t.binary, args...); err != nil {
		return "", false, err
	}
	return compressed, true, nil
}

// buildArgs constructs the ffmpeg invocation: drop any video stream
// and re-encode the audio as AAC at the configured bitrate.
func (t *Transcoder) buildArgs(source, dest string) []string {
	return []string{
		"-y",
		"-i", source,
		"-vn",
		"-c:a", "aac",
		"-b:a", t.bitrate,
		dest,
	}
}

// run executes a command, using the custom runner if set.
func (t *Transcoder) run(ctx context.Context, name string, args ...string) error {
	if t.commandRunner != nil {
		return t.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
