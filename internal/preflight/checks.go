package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"scribe/internal/config"
	"scribe/internal/credentials"
	"scribe/internal/deps"
)

// CheckCredential verifies that a transcription API key can be resolved from
// the environment or the Keychain.
func CheckCredential(ctx context.Context, cfg *config.Config) Result {
	const name = "API key"

	resolver := credentials.NewResolver(cfg.Transcription.KeychainService, cfg.SecurityBinary())
	if _, err := resolver.Resolve(ctx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "available"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external tools a run may shell out to.
// Both "scribe run" logging and the CLI status command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required to shrink oversized audio before upload",
		},
	}
	if cfg.Fetch.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "yt-dlp",
			Command:     cfg.YtdlpBinary(),
			Description: "Required by the URL fetch phase",
		})
	}
	requirements = append(requirements, deps.Requirement{
		Name:        "security",
		Command:     cfg.SecurityBinary(),
		Description: "Keychain fallback when " + credentials.EnvAPIKey + " is unset",
		Optional:    true,
	})
	return deps.CheckBinaries(requirements)
}
