package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"scribe/internal/config"
	"scribe/internal/credentials"
	"scribe/internal/language"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/notifications"
	"scribe/internal/services"
	"scribe/internal/services/openai"
	"scribe/internal/services/ytdlp"
	"scribe/internal/transcode"
)

// Transcriber produces text from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// Fetcher downloads the audio behind one URL into the destination directory.
type Fetcher interface {
	Fetch(ctx context.Context, url, destDir string) error
}

// RunOptions adjusts a single run.
type RunOptions struct {
	SkipFetch bool
}

// Report tallies the outcome of one run.
type Report struct {
	Scanned        int
	Transcribed    int
	Skipped        int
	Failed         int
	FetchAttempted int
	FetchFailed    int
	Duration       time.Duration
}

// Runner coordinates the fetch phase and the per-item processing loop.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *ledger.Store
	errorLog    *ledger.ErrorLog
	notifier    notifications.Service
	credentials *credentials.Resolver
	transcriber Transcriber
	fetcher     Fetcher
	transcoder  *transcode.Transcoder
	lock        *flock.Flock
	now         func() time.Time
}

// RunnerOption configures optional Runner behavior.
type RunnerOption func(*Runner)

// WithTranscriber overrides the transcription client, primarily for tests.
// When set, credential resolution is skipped.
func WithTranscriber(t Transcriber) RunnerOption {
	return func(r *Runner) {
		r.transcriber = t
	}
}

// WithFetcher overrides the URL download client, primarily for tests.
func WithFetcher(f Fetcher) RunnerOption {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithNotifier overrides the notification service, primarily for tests.
func WithNotifier(n notifications.Service) RunnerOption {
	return func(r *Runner) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithTranscoder overrides the size-gate transcoder, primarily for tests.
func WithTranscoder(t *transcode.Transcoder) RunnerOption {
	return func(r *Runner) {
		if t != nil {
			r.transcoder = t
		}
	}
}

// WithClock overrides the time source used for ledger timestamps and
// durations.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner constructs a Runner wired with production dependencies.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...RunnerOption) *Runner {
	runner := &Runner{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		store:       ledger.NewStore(cfg.LedgerPath(), logger),
		errorLog:    ledger.NewErrorLog(cfg.ErrorLogPath()),
		notifier:    notifications.NewService(cfg),
		credentials: credentials.NewResolver(cfg.Transcription.KeychainService, cfg.SecurityBinary()),
		fetcher: ytdlp.NewService(ytdlp.Config{
			Binary:      cfg.YtdlpBinary(),
			ArchivePath: cfg.DownloadArchivePath(),
		}),
		transcoder: transcode.New(cfg.FFmpegBinary(), cfg.Upload.Bitrate),
		lock:       flock.New(cfg.LockPath()),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run executes one full pass: fetch, scan, process, report. The returned
// Report is valid even when an error is returned; callers decide the exit
// status from Report.Failed.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	report := &Report{}
	start := r.now()
	defer func() {
		report.Duration = r.now().Sub(start)
	}()

	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))

	if err := r.cfg.EnsureDirectories(); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "run", "prepare directories", "", err)
	}

	locked, err := r.lock.TryLock()
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "run", "acquire lock", "", err)
	}
	if !locked {
		return report, services.Wrap(services.ErrConfiguration, "run", "acquire lock", "another run is already processing this inbox", nil)
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil {
			logger.Warn("run lock release failed", logging.Error(unlockErr))
		}
	}()

	transcriber := r.transcriber
	if transcriber == nil {
		key, err := r.credentials.Resolve(ctx)
		if err != nil {
			return report, services.Wrap(services.ErrCredential, "run", "resolve api key", "", err)
		}
		transcriber = openai.NewClient(openai.Config{
			APIKey:         key,
			BaseURL:        r.cfg.Transcription.BaseURL,
			Model:          r.cfg.Transcription.Model,
			TimeoutSeconds: r.cfg.Transcription.TimeoutSeconds,
		})
	}

	hint := ""
	if !r.cfg.Transcription.AutoDetect {
		hint = language.Normalize(r.cfg.Transcription.Language)
	}

	if r.cfg.Fetch.Enabled && !opts.SkipFetch && r.fetcher != nil {
		r.fetchPhase(ctx, logger, report)
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	items, err := media.Scan(r.cfg.Paths.InboxDir)
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "run", "scan inbox", "", err)
	}
	report.Scanned = len(items)
	if len(items) == 0 {
		logger.Info("inbox empty", logging.String("inbox", r.cfg.Paths.InboxDir))
		return report, nil
	}

	logger.Info("run started",
		logging.Int("candidates", len(items)),
		logging.String("inbox", r.cfg.Paths.InboxDir),
	)
	if notifyErr := r.notifier.NotifyRunStarted(ctx, len(items)); notifyErr != nil {
		logger.Warn("run start notification failed", logging.Error(notifyErr))
	}

	seen, err := r.store.LoadSeen()
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "run", "load ledger", "", err)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		itemCtx := services.WithItem(ctx, item.Name)
		itemLogger := logging.WithContext(itemCtx, logger)

		err := r.processItem(itemCtx, itemLogger, transcriber, item, seen, hint)
		switch {
		case err == nil && item.Status == media.StatusSkipped:
			report.Skipped++
		case err == nil:
			report.Transcribed++
		case errors.Is(err, context.Canceled):
			return report, err
		default:
			report.Failed++
			r.recordItemFailure(itemCtx, itemLogger, item, err)
		}
	}

	logger.Info("run completed",
		logging.Int("transcribed", report.Transcribed),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("run_duration", r.now().Sub(start)),
	)
	if notifyErr := r.notifier.NotifyRunCompleted(ctx, report.Transcribed, report.Skipped, report.Failed, r.now().Sub(start)); notifyErr != nil {
		logger.Warn("run completion notification failed", logging.Error(notifyErr))
	}

	return report, nil
}

func (r *Runner) recordItemFailure(ctx context.Context, logger *slog.Logger, item *media.Item, err error) {
	category := services.Category(err)
	item.SetFailed(err.Error())

	logger.Error("item failed",
		logging.String("category", category),
		logging.Error(err),
	)
	if logErr := r.errorLog.Record(item.Name, category, err.Error()); logErr != nil {
		logger.Warn("error log append failed", logging.Error(logErr))
	}
	if notifyErr := r.notifier.NotifyItemFailed(ctx, item.Name, category); notifyErr != nil {
		logger.Warn("item failure notification failed", logging.Error(notifyErr))
	}
}
