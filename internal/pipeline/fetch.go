package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"scribe/internal/logging"
	"scribe/internal/services"
	"scribe/internal/sources"
)

// Fetch runs only the URL download phase. Unlike Run it ignores the
// fetch.enabled toggle: an explicit fetch request always downloads.
func (r *Runner) Fetch(ctx context.Context) (*Report, error) {
	report := &Report{}
	start := r.now()
	defer func() {
		report.Duration = r.now().Sub(start)
	}()

	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))

	if err := r.cfg.EnsureDirectories(); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "fetch", "prepare directories", "", err)
	}

	locked, err := r.lock.TryLock()
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "fetch", "acquire lock", "", err)
	}
	if !locked {
		return report, services.Wrap(services.ErrConfiguration, "fetch", "acquire lock", "another run is already processing this inbox", nil)
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil {
			logger.Warn("run lock release failed", logging.Error(unlockErr))
		}
	}()

	if r.fetcher == nil {
		return report, nil
	}
	r.fetchPhase(ctx, logger, report)
	return report, ctx.Err()
}

// fetchPhase downloads every URL listed in the inbox URL file. Failures are
// per-URL: they are logged and tallied but never stop the rest of the run.
func (r *Runner) fetchPhase(ctx context.Context, logger *slog.Logger, report *Report) {
	urlFile := r.cfg.URLFilePath()
	urls, err := sources.LoadURLFile(urlFile)
	if err != nil {
		wrapped := services.Wrap(services.ErrFetch, "fetch", "read url file", "", err)
		logger.Warn("url file unreadable",
			logging.String("path", urlFile),
			logging.Error(wrapped),
		)
		if logErr := r.errorLog.Record(filepath.Base(urlFile), services.Category(wrapped), wrapped.Error()); logErr != nil {
			logger.Warn("error log append failed", logging.Error(logErr))
		}
		return
	}
	if len(urls) == 0 {
		return
	}

	logger.Info("fetch phase started", logging.Int("urls", len(urls)))
	for _, url := range urls {
		if ctx.Err() != nil {
			return
		}

		report.FetchAttempted++
		fetchCtx := ctx
		cancel := context.CancelFunc(func() {})
		if r.cfg.Fetch.TimeoutSeconds > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.Fetch.TimeoutSeconds)*time.Second)
		}
		err := r.fetcher.Fetch(fetchCtx, url, r.cfg.Paths.InboxDir)
		cancel()
		if err != nil {
			report.FetchFailed++
			wrapped := services.Wrap(services.ErrFetch, "fetch", "download audio", "", err)
			logger.Error("fetch failed",
				logging.String("url", url),
				logging.Error(wrapped),
			)
			if logErr := r.errorLog.Record(url, services.Category(wrapped), wrapped.Error()); logErr != nil {
				logger.Warn("error log append failed", logging.Error(logErr))
			}
			continue
		}
		logger.Info("fetch completed", logging.String("url", url))
	}
}
