package ledger

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrorLog appends one line per item failure to the shared error log in
// the transcripts directory. The file is plain text so failures stay
// visible to whoever owns the inbox, without tooling.
type ErrorLog struct {
	path string
	now  func() time.Time
}

// NewErrorLog creates an error log writer for the given path.
func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path, now: time.Now}
}

// Record appends a failure line: timestamp, item name, category, and
// detail, separated by double spaces. Newlines in the detail are
// flattened so each failure stays on one line.
func (l *ErrorLog) Record(name, category, detail string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s  %s  %s  %s\n",
		l.now().Format(time.RFC3339), name, category, flatten(detail))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append error log: %w", err)
	}
	return f.Close()
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
