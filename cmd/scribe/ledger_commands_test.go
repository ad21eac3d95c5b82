package main

import (
	"strings"
	"testing"

	"scribe/internal/testsupport"
)

func TestLedgerListShowsNewestFirst(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustStore(t, env.cfg)
	testsupport.SeedRecord(t, store, strings.Repeat("a", 64), "first.mp3")
	testsupport.SeedRecord(t, store, strings.Repeat("b", 64), "second.mp3")
	testsupport.SeedRecord(t, store, strings.Repeat("c", 64), "third.mp3")

	out, _, err := runCLI(t, []string{"ledger", "list", "--limit", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	requireContains(t, out, "third.mp3")
	requireContains(t, out, "second.mp3")
	requireContains(t, out, "cccccccccccc")
	if strings.Contains(out, "first.mp3") {
		t.Fatalf("limit should drop the oldest record:\n%s", out)
	}
	if strings.Index(out, "third.mp3") > strings.Index(out, "second.mp3") {
		t.Fatalf("expected newest record first:\n%s", out)
	}
}

func TestLedgerListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"ledger", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	requireContains(t, out, "Ledger is empty")
}
