package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Line is one record of a slog text log.
type Line struct {
	Raw   string
	Level string // DEBUG, INFO, WARN, ERROR or empty when absent
}

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]Line, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	start := 0
	if count == maxLines {
		start = idx
	}
	lines := make([]Line, count)
	for i := range count {
		raw := ring[(start+i)%maxLines]
		lines[i] = Line{Raw: raw, Level: ParseLevel(raw)}
	}
	return lines, nil
}

// ParseLevel extracts the level=... attribute written by slog.TextHandler.
func ParseLevel(raw string) string {
	const key = "level="
	i := strings.Index(raw, key)
	if i < 0 {
		return ""
	}
	rest := raw[i+len(key):]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	// Levels between the named ones render as e.g. INFO+2.
	if plus := strings.IndexAny(rest, "+-"); plus > 0 {
		rest = rest[:plus]
	}
	return strings.ToUpper(rest)
}
