// Package transcript renders and persists transcript artifacts.
//
// An artifact is a plain text file: five header lines identifying the
// source recording, then the transcript body. The header keeps enough
// provenance (content hash, model, language hint) to trace any
// transcript back to the exact bytes and settings that produced it.
package transcript

import (
	"fmt"
	"os"
	"strings"
)

// Artifact is a transcript ready to be written.
type Artifact struct {
	DateStamp    string
	AudioFile    string
	SHA256       string
	Model        string
	LanguageHint string
	Body         string
}

// Render returns the on-disk form: the header lines, one blank line,
// then the body, terminated by a newline.
func (a Artifact) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DateStamp %s\n", a.DateStamp)
	fmt.Fprintf(&b, "AudioFile %s\n", a.AudioFile)
	fmt.Fprintf(&b, "Sha256 %s\n", a.SHA256)
	fmt.Fprintf(&b, "Model %s\n", a.Model)
	fmt.Fprintf(&b, "LanguageHint %s\n", a.LanguageHint)
	b.WriteString("\n")
	b.WriteString(a.Body)
	b.WriteString("\n")
	return b.String()
}

// Write persists the artifact at path. It refuses to replace an
// existing file; the naming layer must have allocated an unused path.
func (a Artifact) Write(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create transcript: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(a.Render()); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return f.Close()
}
