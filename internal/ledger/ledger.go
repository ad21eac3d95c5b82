// Package ledger persists the append-only record of completed
// transcriptions.
//
// The ledger is a JSON Lines file inside the inbox. Each line is one
// completed item; the set of recorded hashes is rebuilt from scratch at
// the start of every run, which is what makes reruns idempotent. Lines
// that fail to parse are skipped so the ledger survives partial writes
// and manual edits.
package ledger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"scribe/internal/logging"
)

// maxLineBytes bounds a single ledger line during scans. Records are a
// few hundred bytes; the headroom is for hand-edited files.
const maxLineBytes = 1 << 20

// Record is one completed transcription, stored as a single JSON line.
type Record struct {
	SHA256         string    `json:"sha256"`
	AudioFile      string    `json:"audio_file"`
	TranscriptFile string    `json:"transcript_file"`
	DateStamp      string    `json:"date_stamp"`
	Model          string    `json:"model"`
	LanguageHint   string    `json:"language_hint"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store reads and appends the ledger file. The file is created lazily
// on first append.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a ledger store for the given path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "ledger"),
	}
}

// LoadSeen returns the set of content hashes already recorded. A
// missing ledger file yields an empty set. Malformed lines and lines
// without a hash are skipped.
func (s *Store) LoadSeen() (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	skipped := 0
	err := s.scanLines(func(line []byte) {
		var probe struct {
			SHA256 string `json:"sha256"`
		}
		if err := json.Unmarshal(line, &probe); err != nil || probe.SHA256 == "" {
			skipped++
			return
		}
		seen[probe.SHA256] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn("skipped unreadable ledger lines",
			logging.Int("skipped", skipped),
			logging.String("path", s.path))
	}
	return seen, nil
}

// List returns all parseable records in file order, oldest first.
func (s *Store) List() ([]Record, error) {
	var records []Record
	skipped := 0
	err := s.scanLines(func(line []byte) {
		var record Record
		if err := json.Unmarshal(line, &record); err != nil || record.SHA256 == "" {
			skipped++
			return
		}
		records = append(records, record)
	})
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn("skipped unreadable ledger lines",
			logging.Int("skipped", skipped),
			logging.String("path", s.path))
	}
	return records, nil
}

// Append writes one record as a new line at the end of the ledger.
// Prior lines are never touched, so a crash mid-run loses at most the
// line being written.
func (s *Store) Append(record Record) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("append ledger record: %w", err)
	}
	return f.Close()
}

func (s *Store) scanLines(fn func(line []byte)) error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fn([]byte(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	return nil
}
