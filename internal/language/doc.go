// Package language normalizes user-supplied language hints to the
// ISO 639-1 codes the transcription API expects.
//
// Hints arrive from config and environment in many shapes: bare codes
// ("pt"), regional tags ("pt-BR", "pt_PT"), spoken names ("portuguese",
// "português"), or "auto" to request detection. All conversions are
// consolidated here so the pipeline and the transcription client agree
// on what a hint means.
package language
