// Package contentid computes stable content identities for media files.
//
// Identity is the SHA-256 of the file bytes, rendered as lowercase hex.
// The pipeline uses it to recognize files it has already transcribed
// regardless of renames or re-downloads.
package contentid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashBufferSize is the read chunk used when streaming file contents
// through the hash. Large enough to keep syscall overhead low on the
// multi-hundred-megabyte recordings the pipeline sees.
const hashBufferSize = 1 << 20

// SumFile returns the lowercase hex SHA-256 of the file at path.
// The file is streamed in fixed-size chunks so arbitrarily large
// recordings hash in constant memory.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	digest, err := Sum(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return digest, nil
}

// Sum returns the lowercase hex SHA-256 of everything read from r.
func Sum(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, hashBufferSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
