package language

import (
	"strings"

	xlang "golang.org/x/text/language"
)

// byWord maps spoken-name and collapsed-tag hints that BCP-47 parsing
// cannot resolve.
var byWord = map[string]string{
	"ptpt":       "pt",
	"ptbr":       "pt",
	"portuguese": "pt",
	"português":  "pt",
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"japanese":   "ja",
}

// Normalize resolves a language hint to the ISO 639-1 code sent with
// transcription requests. Empty input and "auto" request automatic
// detection and return "". Unrecognized hints keep their primary
// subtag so the API can reject them explicitly.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "auto" {
		return ""
	}
	s = strings.ReplaceAll(s, "_", "-")
	if code, ok := byWord[s]; ok {
		return code
	}
	if tag, err := xlang.Parse(s); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	if i := strings.IndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	return s
}

// Label renders a hint for transcript headers, ledger records, and logs.
// An empty code means automatic detection.
func Label(code string) string {
	if code == "" {
		return "auto"
	}
	return code
}
