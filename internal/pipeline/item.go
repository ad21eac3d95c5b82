package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"scribe/internal/contentid"
	"scribe/internal/fileutil"
	"scribe/internal/language"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/naming"
	"scribe/internal/services"
	"scribe/internal/transcript"
)

// processItem walks one inbox file through the stages: hash, dedup check,
// size gate, transcription, persistence, archive. Any returned error is an
// item-level failure; already-written transcripts and ledger entries stay
// valid.
func (r *Runner) processItem(ctx context.Context, logger *slog.Logger, transcriber Transcriber, item *media.Item, seen map[string]struct{}, hint string) error {
	start := r.now()
	logger.Info("processing started", logging.Int64("size_bytes", item.Size))

	sha, err := contentid.SumFile(item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrHash, "hash", "checksum audio", "", err)
	}
	item.SHA256 = sha
	item.Status = media.StatusHashed

	if _, done := seen[sha]; done {
		item.Status = media.StatusSkipped
		logger.Info("duplicate content skipped", logging.String("sha256", sha))
		if r.cfg.Archive.MoveSkipped {
			target := filepath.Join(r.cfg.ArchiveDir(), item.Name)
			// Best effort: a duplicate that cannot be archived stays in the
			// inbox and is skipped again next run.
			if moveErr := fileutil.MoveFile(item.SourcePath, target); moveErr != nil {
				logger.Warn("skipped audio not archived", logging.Error(moveErr))
			}
		}
		return nil
	}

	stamp := naming.DateStamp(item.ModTime)
	base := naming.BaseName(item.Name, item.ModTime)
	txtPath, err := naming.UniqueTxtPath(r.cfg.TranscriptsDir(), base)
	if err != nil {
		return services.Wrap(services.ErrPersist, "persist", "reserve transcript path", "", err)
	}

	item.Status = media.StatusTranscoding
	workPath, cleanup, err := r.transcoder.EnsureWithinLimit(ctx, item.SourcePath, r.cfg.Upload.MaxBytes)
	if err != nil {
		return services.Wrap(services.ErrTranscode, "transcode", "shrink audio", "", err)
	}
	if cleanup {
		defer func() {
			if removeErr := os.Remove(workPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				logger.Warn("compressed copy not removed", logging.Error(removeErr))
			}
		}()
		logger.Info("oversized audio compressed", logging.String("work_file", filepath.Base(workPath)))
	}

	text, err := transcriber.Transcribe(ctx, workPath, hint)
	if err != nil {
		return services.Wrap(services.ErrTranscription, "transcribe", "request transcript", "", err)
	}
	item.Status = media.StatusTranscribed

	artifact := transcript.Artifact{
		DateStamp:    stamp,
		AudioFile:    item.Name,
		SHA256:       sha,
		Model:        r.cfg.Transcription.Model,
		LanguageHint: language.Label(hint),
		Body:         text,
	}
	if err := artifact.Write(txtPath); err != nil {
		return services.Wrap(services.ErrPersist, "persist", "write transcript", "", err)
	}

	transcriptRef := txtPath
	if rel, relErr := filepath.Rel(r.cfg.Paths.InboxDir, txtPath); relErr == nil {
		transcriptRef = rel
	}
	record := ledger.Record{
		SHA256:         sha,
		AudioFile:      item.Name,
		TranscriptFile: transcriptRef,
		DateStamp:      stamp,
		Model:          r.cfg.Transcription.Model,
		LanguageHint:   language.Label(hint),
		CreatedAt:      r.now().UTC(),
	}
	if err := r.store.Append(record); err != nil {
		return services.Wrap(services.ErrPersist, "persist", "append ledger", "", err)
	}
	seen[sha] = struct{}{}
	item.TranscriptPath = txtPath
	item.Status = media.StatusPersisted

	if r.cfg.Archive.MoveProcessed {
		target := filepath.Join(r.cfg.ArchiveDir(), item.Name)
		if err := fileutil.MoveFile(item.SourcePath, target); err != nil {
			return services.Wrap(services.ErrArchive, "archive", "move audio", "", err)
		}
		item.Status = media.StatusArchived
	}

	logger.Info("processing completed",
		logging.String("transcript", filepath.Base(txtPath)),
		logging.Duration("item_duration", r.now().Sub(start)),
	)
	return nil
}
