// Package credentials resolves the transcription API key from the
// environment or the macOS Keychain.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"
)

// EnvAPIKey is the environment variable consulted before the Keychain.
const EnvAPIKey = "OPENAI_API_KEY"

// DefaultBinary is the macOS security tool used for Keychain lookups.
const DefaultBinary = "security"

var smartQuoteStripper = strings.NewReplacer(
	"“", "",
	"”", "",
	"‘", "",
	"’", "",
)

// Sanitize normalizes a pasted API key. Smart quotes picked up from rich
// text editors are removed, wrapping quotes stripped, and any remaining
// non-ASCII runes dropped.
func Sanitize(key string) string {
	key = strings.TrimSpace(key)
	key = smartQuoteStripper.Replace(key)
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"`)
	key = strings.Trim(key, `'`)
	var b strings.Builder
	for _, r := range key {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Resolver locates the API key, preferring the environment and falling
// back to a generic Keychain password.
type Resolver struct {
	service       string
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) (string, error)
}

// NewResolver builds a Resolver for the given Keychain service name.
func NewResolver(service, binary string) *Resolver {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Resolver{
		service:       strings.TrimSpace(service),
		binary:        binary,
		commandRunner: runCommand,
	}
}

// WithCommandRunner overrides Keychain command execution, primarily for
// tests.
func (r *Resolver) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) *Resolver {
	if runner != nil {
		r.commandRunner = runner
	}
	return r
}

// Resolve returns a usable API key or an error describing both lookup
// paths that failed.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if key := Sanitize(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}
	key, err := r.keychainLookup(ctx)
	if err != nil {
		return "", fmt.Errorf("api key not found: set %s or store it in the keychain service %q: %w", EnvAPIKey, r.service, err)
	}
	return key, nil
}

func (r *Resolver) keychainLookup(ctx context.Context) (string, error) {
	if r.service == "" {
		return "", errors.New("keychain service name is empty")
	}
	output, err := r.commandRunner(ctx, r.binary, "find-generic-password", "-s", r.service, "-w")
	if err != nil {
		return "", err
	}
	key := Sanitize(output)
	if key == "" {
		return "", errors.New("keychain returned an empty or invalid key")
	}
	return key, nil
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		detail := err.Error()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", fmt.Errorf("%s: %w: %s", name, err, detail)
	}
	return string(output), nil
}
