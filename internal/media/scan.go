package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// audioExtensions lists the file types the pipeline treats as
// transcription candidates. Matching is case-insensitive.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".mp4":  {},
	".mpeg": {},
	".mpga": {},
	".m4a":  {},
	".wav":  {},
	".webm": {},
	".ogg":  {},
	".oga":  {},
	".flac": {},
}

// IsAudioFile reports whether a filename carries a recognized audio
// extension.
func IsAudioFile(name string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Scan lists transcription candidates directly inside dir, sorted by
// filename. Subdirectories are not descended into. Entries that cannot
// be stat'd (dangling symlinks, races with concurrent deletion) are
// skipped. The listing is materialized up front so files created during
// the run do not join it.
func Scan(dir string) ([]*Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox %s: %w", dir, err)
	}

	items := make([]*Item, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.Mode().IsRegular() {
			continue
		}
		items = append(items, &Item{
			SourcePath: path,
			Name:       entry.Name(),
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			Status:     StatusDiscovered,
		})
	}
	return items, nil
}
