package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFetch         = errors.New("fetch error")
	ErrHash          = errors.New("hash error")
	ErrTranscode     = errors.New("transcode error")
	ErrTranscription = errors.New("transcription error")
	ErrPersist       = errors.New("persist error")
	ErrArchive       = errors.New("archive error")
	ErrCredential    = errors.New("credential error")
	ErrConfiguration = errors.New("configuration error")
)

// Error-log category tags. One per pipeline stage that can fail, so a log
// line carries the stage alongside the item name and detail.
const (
	CategoryFetch      = "fetch_error"
	CategoryHash       = "hash_error"
	CategoryTranscode  = "transcode_error"
	CategoryTranscribe = "transcribe_error"
	CategoryPersist    = "persist_error"
	CategoryArchive    = "archive_error"
	CategoryCredential = "credential_error"
	CategoryConfig     = "config_error"
	CategoryPipeline   = "pipeline_error"
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later category classification. The marker
// should be one of the exported sentinel errors above; a nil marker leaves
// the error untagged.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category maps an error to the tag recorded in the pipeline error log.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrFetch):
		return CategoryFetch
	case errors.Is(err, ErrHash):
		return CategoryHash
	case errors.Is(err, ErrTranscode):
		return CategoryTranscode
	case errors.Is(err, ErrTranscription):
		return CategoryTranscribe
	case errors.Is(err, ErrPersist):
		return CategoryPersist
	case errors.Is(err, ErrArchive):
		return CategoryArchive
	case errors.Is(err, ErrCredential):
		return CategoryCredential
	case errors.Is(err, ErrConfiguration):
		return CategoryConfig
	default:
		return CategoryPipeline
	}
}

// IsFatal reports whether an error should abort the run before any item is
// processed. Item-level failures are never fatal; credential and
// configuration problems always are.
func IsFatal(err error) bool {
	return errors.Is(err, ErrCredential) || errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
