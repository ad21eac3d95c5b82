// Package sources reads the URL request file that feeds the fetch
// phase.
package sources

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadURLFile returns the requested URLs from path, one per line.
// Blank lines and lines starting with '#' are skipped. A missing file
// means no requests and yields an empty list.
func LoadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open url file %s: %w", path, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url file %s: %w", path, err)
	}
	return urls, nil
}
