package ingestion

import (
	"fmt"
	"os"
	"strings"
)

// ReadLines loads a delimited sales file and returns its data lines.
// The first line is treated as a header and skipped; blank lines are
// dropped. Encoding normalization happens upstream of this package.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sales file: %w", err)
	}

	raw := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	var lines []string
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, nil
	}
	// first non-blank line is the header
	return lines[1:], nil
}
