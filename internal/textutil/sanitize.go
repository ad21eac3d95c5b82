// Package textutil provides text cleanup helpers for building transcript
// filenames from media titles.
package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// stemReplacer maps filesystem-hostile and smart-quote characters to spaces.
// Replacing with spaces rather than deleting keeps word boundaries intact
// for the whitespace collapse that follows.
var stemReplacer = strings.NewReplacer(
	"/", " ",
	"\\", " ",
	":", " ",
	"*", " ",
	"?", " ",
	"\"", " ",
	"<", " ",
	">", " ",
	"|", " ",
	"“", " ",
	"”", " ",
	"‘", " ",
	"’", " ",
)

// SafeStem cleans a filename stem for reuse in a transcript name.
// Hostile characters become spaces and whitespace runs collapse to a
// single space. Text is normalized to NFC first so names synced from
// macOS volumes compare and render consistently.
func SafeStem(s string) string {
	s = norm.NFC.String(s)
	s = stemReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
