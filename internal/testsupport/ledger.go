package testsupport

import (
	"testing"
	"time"

	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/logging"
)

// MustStore opens the dedup ledger backing the test config.
func MustStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()
	return ledger.NewStore(cfg.LedgerPath(), logging.NewNop())
}

// SeedRecord appends a minimal ledger record so the given hash reads as
// already transcribed.
func SeedRecord(t testing.TB, store *ledger.Store, sha256, audioFile string) {
	t.Helper()

	record := ledger.Record{
		SHA256:         sha256,
		AudioFile:      audioFile,
		TranscriptFile: audioFile + ".txt",
		DateStamp:      "20240101 120000",
		Model:          "whisper-1",
		LanguageHint:   "pt",
		CreatedAt:      time.Now().UTC(),
	}
	if err := store.Append(record); err != nil {
		t.Fatalf("seed ledger record: %v", err)
	}
}
