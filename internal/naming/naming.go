// Package naming derives transcript filenames from media file metadata.
//
// Names combine a sortable modification-time stamp with the cleaned source
// stem, so transcripts list chronologically and stay readable. Collisions
// are resolved by probing numbered suffixes rather than overwriting.
package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/textutil"
)

// dateStampLayout renders timestamps sortable and filename-safe.
const dateStampLayout = "20060102 150405"

// DateStamp formats a modification time for use in a transcript name.
func DateStamp(t time.Time) string {
	return t.Format(dateStampLayout)
}

// BaseName builds the transcript base name for a media file: the date
// stamp of its modification time followed by the scrubbed stem.
func BaseName(fileName string, modTime time.Time) string {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return DateStamp(modTime) + " " + textutil.SafeStem(stem)
}

// UniqueTxtPath returns a transcript path under dir that does not exist
// yet. The first candidate is "<base>.txt"; on collision it probes
// "<base> 2.txt", "<base> 3.txt" and so on. Existing transcripts are
// never overwritten.
func UniqueTxtPath(dir, base string) (string, error) {
	candidate := filepath.Join(dir, base+".txt")
	taken, err := pathExists(candidate)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}
	for i := 2; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s %d.txt", base, i))
		taken, err = pathExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func pathExists(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("probe %s: %w", path, err)
	}
	return true, nil
}
