package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scribe/internal/credentials"
	"scribe/internal/services"
	"scribe/internal/testsupport"
)

func TestRunCommandFailsWithoutCredential(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv(credentials.EnvAPIKey, "")
	t.Setenv("PATH", t.TempDir())
	testsupport.WriteInboxAudio(t, env.cfg, "pending.mp3", "som")

	_, _, err := runCLI(t, []string{"run", "--skip-fetch"}, env.configPath)
	if err == nil {
		t.Fatal("expected run to fail without an api key")
	}
	if !errors.Is(err, services.ErrCredential) {
		t.Fatalf("expected credential failure, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.InboxDir, "pending.mp3")); statErr != nil {
		t.Fatalf("inbox audio should be untouched: %v", statErr)
	}
}

func TestFetchCommandDownloadsQueue(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.cfg.URLFilePath(), []byte("https://example.com/watch?v=1\n"), 0o644); err != nil {
		t.Fatalf("write url file: %v", err)
	}

	out, _, err := runCLI(t, []string{"fetch"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "Fetched 1 of 1 URLs")
}

func TestFetchCommandEmptyQueue(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"fetch"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "No URLs listed in")
}
