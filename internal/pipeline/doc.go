// Package pipeline drives one batch over the inbox: fetch listed URLs,
// scan for audio, transcribe each new file, and file the results away.
//
// A run is single-process and sequential. The Runner takes an exclusive
// lock on the inbox so overlapping invocations cannot race the ledger,
// then walks the stages per item: hash, dedup check, size gate,
// transcription, transcript + ledger persistence, archive move. Item
// failures are recorded and the batch continues; only credential and
// configuration problems abort the run.
package pipeline
