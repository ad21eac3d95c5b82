// Package media models inbox audio files and their lifecycle through a
// transcription run.
package media

import "time"

// Status represents the lifecycle of an inbox item within one run.
type Status string

const (
	StatusDiscovered  Status = "discovered"
	StatusHashed      Status = "hashed"
	StatusSkipped     Status = "skipped"
	StatusTranscoding Status = "transcoding"
	StatusTranscribed Status = "transcribed"
	StatusPersisted   Status = "persisted"
	StatusArchived    Status = "archived"
	StatusFailed      Status = "failed"
)

// Item is one audio file discovered in the inbox, carried through the
// run by the pipeline.
type Item struct {
	SourcePath     string
	Name           string
	Size           int64
	ModTime        time.Time
	Status         Status
	SHA256         string
	TranscriptPath string
	ErrorMessage   string
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
}
