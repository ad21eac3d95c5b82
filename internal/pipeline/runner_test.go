package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"scribe/internal/config"
	"scribe/internal/contentid"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
	"scribe/internal/services"
	"scribe/internal/testsupport"
	"scribe/internal/transcode"
)

type stubTranscriber struct {
	calls     []string
	languages []string
	text      string
	failFor   string
}

func (s *stubTranscriber) Transcribe(_ context.Context, audioPath, language string) (string, error) {
	s.calls = append(s.calls, audioPath)
	s.languages = append(s.languages, language)
	if s.failFor != "" && filepath.Base(audioPath) == s.failFor {
		return "", errors.New("service unavailable")
	}
	if s.text == "" {
		return "hello transcript", nil
	}
	return s.text, nil
}

type stubFetcher struct {
	calls   []string
	err     error
	onFetch func(url, destDir string) error
}

func (s *stubFetcher) Fetch(_ context.Context, url, destDir string) error {
	s.calls = append(s.calls, url)
	if s.onFetch != nil {
		return s.onFetch(url, destDir)
	}
	return s.err
}

type completion struct {
	processed int
	skipped   int
	failed    int
}

type stubNotifier struct {
	runStarts    []int
	completions  []completion
	itemFailures []string
}

func (s *stubNotifier) NotifyRunStarted(_ context.Context, count int) error {
	s.runStarts = append(s.runStarts, count)
	return nil
}

func (s *stubNotifier) NotifyRunCompleted(_ context.Context, processed, skipped, failed int, _ time.Duration) error {
	s.completions = append(s.completions, completion{processed: processed, skipped: skipped, failed: failed})
	return nil
}

func (s *stubNotifier) NotifyItemFailed(_ context.Context, name, _ string) error {
	s.itemFailures = append(s.itemFailures, name)
	return nil
}

func newTestRunner(cfg *config.Config, transcriber *stubTranscriber, fetcher *stubFetcher, notifier *stubNotifier, extra ...pipeline.RunnerOption) *pipeline.Runner {
	opts := []pipeline.RunnerOption{
		pipeline.WithTranscriber(transcriber),
		pipeline.WithFetcher(fetcher),
		pipeline.WithNotifier(notifier),
	}
	opts = append(opts, extra...)
	return pipeline.NewRunner(cfg, logging.NewNop(), opts...)
}

func readDirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestRunTranscribesAndArchives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInboxAudio(t, cfg, "Aula 1.mp3", "conteudo um")
	testsupport.WriteInboxAudio(t, cfg, "Aula 2.m4a", "conteudo dois")

	transcriber := &stubTranscriber{}
	notifier := &stubNotifier{}
	fixed := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	runner := newTestRunner(cfg, transcriber, &stubFetcher{}, notifier,
		pipeline.WithClock(func() time.Time { return fixed }))

	report, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Scanned != 2 || report.Transcribed != 2 || report.Skipped != 0 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(transcriber.calls) != 2 {
		t.Fatalf("expected 2 transcription calls, got %d", len(transcriber.calls))
	}
	if transcriber.languages[0] != "pt" {
		t.Fatalf("expected pt language hint, got %q", transcriber.languages[0])
	}

	transcripts := readDirNames(t, cfg.TranscriptsDir())
	txtCount := 0
	for _, name := range transcripts {
		if strings.HasSuffix(name, ".txt") {
			txtCount++
		}
	}
	if txtCount != 2 {
		t.Fatalf("expected 2 transcripts, got %v", transcripts)
	}

	archived := readDirNames(t, cfg.ArchiveDir())
	if len(archived) != 2 {
		t.Fatalf("expected both audio files archived, got %v", archived)
	}

	records, err := testsupport.MustStore(t, cfg).List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 ledger records, got %d", len(records))
	}
	wantSHA, err := contentid.Sum(strings.NewReader("conteudo um"))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if records[0].SHA256 != wantSHA {
		t.Fatalf("ledger sha = %q, want %q", records[0].SHA256, wantSHA)
	}
	if records[0].AudioFile != "Aula 1.mp3" {
		t.Fatalf("ledger audio file = %q", records[0].AudioFile)
	}
	if !strings.HasPrefix(records[0].TranscriptFile, "Transcripts"+string(os.PathSeparator)) {
		t.Fatalf("transcript path should be inbox-relative, got %q", records[0].TranscriptFile)
	}
	if records[0].LanguageHint != "pt" {
		t.Fatalf("ledger language hint = %q", records[0].LanguageHint)
	}
	if !records[0].CreatedAt.Equal(fixed) {
		t.Fatalf("ledger created at = %v, want %v", records[0].CreatedAt, fixed)
	}

	transcriptPath := filepath.Join(cfg.Paths.InboxDir, records[0].TranscriptFile)
	content, err := os.ReadFile(transcriptPath)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "AudioFile Aula 1.mp3\n") {
		t.Fatalf("transcript missing audio header:\n%s", text)
	}
	if !strings.Contains(text, "Sha256 "+wantSHA+"\n") {
		t.Fatalf("transcript missing hash header:\n%s", text)
	}
	if !strings.HasSuffix(text, "LanguageHint pt\n\nhello transcript\n") {
		t.Fatalf("transcript body malformed:\n%s", text)
	}

	if len(notifier.runStarts) != 1 || notifier.runStarts[0] != 2 {
		t.Fatalf("unexpected run start notifications: %v", notifier.runStarts)
	}
	if len(notifier.completions) != 1 || notifier.completions[0].processed != 2 {
		t.Fatalf("unexpected completion notifications: %+v", notifier.completions)
	}
}

func TestRunSkipsPreviouslyTranscribed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInboxAudio(t, cfg, "repeat.mp3", "mesmo conteudo")

	sha, err := contentid.Sum(strings.NewReader("mesmo conteudo"))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	testsupport.SeedRecord(t, testsupport.MustStore(t, cfg), sha, "earlier.mp3")

	transcriber := &stubTranscriber{}
	runner := newTestRunner(cfg, transcriber, &stubFetcher{}, &stubNotifier{})

	report, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Skipped != 1 || report.Transcribed != 0 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(transcriber.calls) != 0 {
		t.Fatalf("duplicate should not be transcribed, got calls %v", transcriber.calls)
	}
	if _, err := os.Stat(filepath.Join(cfg.ArchiveDir(), "repeat.mp3")); err != nil {
		t.Fatalf("skipped audio should be archived: %v", err)
	}
	records, err := testsupport.MustStore(t, cfg).List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("skip must not append ledger records, got %d", len(records))
	}
}

func TestRunDeduplicatesWithinRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInboxAudio(t, cfg, "a copy.mp3", "identico")
	testsupport.WriteInboxAudio(t, cfg, "b copy.mp3", "identico")

	transcriber := &stubTranscriber{}
	runner := newTestRunner(cfg, transcriber, &stubFetcher{}, &stubNotifier{})

	report, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Transcribed != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(transcriber.calls) != 1 {
		t.Fatalf("expected a single transcription call, got %d", len(transcriber.calls))
	}
}

func TestRunContinuesAfterItemFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInboxAudio(t, cfg, "bad.mp3", "broken audio")
	testsupport.WriteInboxAudio(t, cfg, "good.mp3", "fine audio")

	transcriber := &stubTranscriber{failFor: "bad.mp3"}
	notifier := &stubNotifier{}
	runner := newTestRunner(cfg, transcriber, &stubFetcher{}, notifier)

	report, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Failed != 1 || report.Transcribed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.InboxDir, "bad.mp3")); err != nil {
		t.Fatalf("failed audio should stay in the inbox: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ArchiveDir(), "good.mp3")); err != nil {
		t.Fatalf("good audio should be archived: %v", err)
	}

	logContent, err := os.ReadFile(cfg.ErrorLogPath())
	if err != nil {
		t.Fatalf("read error log: %v", err)
	}
	if !strings.Contains(string(logContent), "bad.mp3  transcribe_error  ") {
		t.Fatalf("error log missing failure line:\n%s", logContent)
	}
	if len(notifier.itemFailures) != 1 || notifier.itemFailures[0] != "bad.mp3" {
		t.Fatalf("unexpected failure notifications: %v", notifier.itemFailures)
	}
	if len(notifier.completions) != 1 || notifier.completions[0].failed != 1 {
		t.Fatalf("completion should report the failure: %+v", notifier.completions)
	}
}

func TestRunFetchFailuresDoNotFailRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	urlFile := cfg.URLFilePath()
	if err := os.WriteFile(urlFile, []byte("https://example.com/watch?v=1\n"), 0o644); err != nil {
		t.Fatalf("write url file: %v", err)
	}

	fetcher := &stubFetcher{err: errors.New("video unavailable")}
	runner := newTestRunner(cfg, &stubTranscriber{}, fetcher, &stubNotifier{})

	report, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.FetchAttempted != 1 || report.FetchFailed != 1 {
		t.Fatalf("unexpected fetch tallies: %+v", report)
	}
	if report.Failed != 0 {
		t.Fatalf("fetch failures must not count as item failures: %+v", report)
	}

	logContent, err := os.ReadFile(cfg.ErrorLogPath())
	if err != nil {
		t.Fatalf("read error log: %v", err)
	}
	if !strings.Contains(string(logContent), "https://example.com/watch?v=1  fetch_error  ") {
		t.Fatalf("error log missing fetch failure:\n%s", logContent)
	}
}

func TestRunProcessesFetchedAudioSameRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	urlFile := cfg.URLFilePath()
	if err := os.WriteFile(urlFile, []byte("https://example.com/watch?v=9\n"), 0o644); err != nil {
		t.Fatalf("write url file: %v", err)
	}

	fetcher := &stubFetcher{onFetch: func(_, destDir string) error {
		return os.WriteFile(filepath.Join(destDir, "Downloaded [v9].m4a"), []byte("novo audio"), 0o644)
	}}
	transcriber := &stubTranscriber{}
	runner := newTestRunner(cfg, transcriber, fetcher, &stubNotifier{})

	report, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.FetchAttempted != 1 || report.FetchFailed != 0 {
		t.Fatalf("unexpected fetch tallies: %+v", report)
	}
	if report.Transcribed != 1 {
		t.Fatalf("fetched audio should be transcribed in the same run: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(cfg.ArchiveDir(), "Downloaded [v9].m4a")); err != nil {
		t.Fatalf("fetched audio should be archived: %v", err)
	}
}

func TestRunSkipFetchBypassesDownloads(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	urlFile := cfg.URLFilePath()
	if err := os.WriteFile(urlFile, []byte("https://example.com/watch?v=2\n"), 0o644); err != nil {
		t.Fatalf("write url file: %v", err)
	}

	fetcher := &stubFetcher{}
	runner := newTestRunner(cfg, &stubTranscriber{}, fetcher, &stubNotifier{})

	if _, err := runner.Run(context.Background(), pipeline.RunOptions{SkipFetch: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("fetcher should not run with SkipFetch, got %v", fetcher.calls)
	}
}

func TestRunRefusesConcurrentRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	held := flock.New(cfg.LockPath())
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("prepare lock: locked=%v err=%v", locked, err)
	}
	defer func() {
		_ = held.Unlock()
	}()

	runner := newTestRunner(cfg, &stubTranscriber{}, &stubFetcher{}, &stubNotifier{})
	_, err = runner.Run(context.Background(), pipeline.RunOptions{})
	if err == nil {
		t.Fatal("expected error while lock is held")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("lock contention should be a configuration error, got %v", err)
	}
}

func TestRunMissingCredentialAborts(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PATH", t.TempDir())

	cfg := testsupport.NewConfig(t)
	testsupport.WriteInboxAudio(t, cfg, "untouched.mp3", "audio")
	fetcher := &stubFetcher{}

	runner := pipeline.NewRunner(cfg, logging.NewNop(),
		pipeline.WithFetcher(fetcher),
		pipeline.WithNotifier(&stubNotifier{}),
	)

	_, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err == nil {
		t.Fatal("expected credential error")
	}
	if !errors.Is(err, services.ErrCredential) {
		t.Fatalf("expected credential marker, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatalf("credential failures must be fatal, got %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Fatal("credential failure must abort before the fetch phase")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.InboxDir, "untouched.mp3")); err != nil {
		t.Fatalf("inbox audio must be untouched: %v", err)
	}
}

func TestRunCompressesOversizedAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithUploadLimit(4))
	testsupport.WriteInboxAudio(t, cfg, "long lecture.mp3", "123456789")

	transcoder := transcode.New("", "")
	transcoder.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		dest := args[len(args)-1]
		return os.WriteFile(dest, []byte("c"), 0o644)
	})

	transcriber := &stubTranscriber{}
	runner := newTestRunner(cfg, transcriber, &stubFetcher{}, &stubNotifier{},
		pipeline.WithTranscoder(transcoder))

	report, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Transcribed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(transcriber.calls) != 1 || !strings.HasSuffix(transcriber.calls[0], ".compressed.m4a") {
		t.Fatalf("transcriber should receive the compressed copy, got %v", transcriber.calls)
	}
	if _, err := os.Stat(transcriber.calls[0]); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("compressed copy should be removed after the item: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ArchiveDir(), "long lecture.mp3")); err != nil {
		t.Fatalf("original audio should be archived: %v", err)
	}
}

func TestRunEmptyInboxNoNotifications(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	runner := newTestRunner(cfg, &stubTranscriber{}, &stubFetcher{}, notifier)

	report, err := runner.Run(context.Background(), pipeline.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Scanned != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(notifier.runStarts) != 0 || len(notifier.completions) != 0 {
		t.Fatalf("empty run should stay silent, got starts=%v completions=%v", notifier.runStarts, notifier.completions)
	}
}

func TestFetchDownloadsWithoutProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFetchDisabled())
	urlFile := cfg.URLFilePath()
	if err := os.WriteFile(urlFile, []byte("https://example.com/watch?v=7\n"), 0o644); err != nil {
		t.Fatalf("write url file: %v", err)
	}
	testsupport.WriteInboxAudio(t, cfg, "waiting.mp3", "noch nicht")

	fetcher := &stubFetcher{}
	transcriber := &stubTranscriber{}
	runner := newTestRunner(cfg, transcriber, fetcher, &stubNotifier{})

	report, err := runner.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if report.FetchAttempted != 1 || report.FetchFailed != 0 {
		t.Fatalf("unexpected fetch tallies: %+v", report)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("fetch should run even when the config toggle is off, got %v", fetcher.calls)
	}
	if len(transcriber.calls) != 0 {
		t.Fatalf("fetch-only invocation must not transcribe, got %v", transcriber.calls)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.InboxDir, "waiting.mp3")); err != nil {
		t.Fatalf("inbox audio should be untouched: %v", err)
	}
}
