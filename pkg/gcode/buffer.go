// Package gcode models a sliced print job as the ordered list of text
// buffers a slicer hands its post-processing scripts, and reads/writes
// that list from disk. Buffers are opaque text: commands are never
// parsed or validated here.
package gcode

import (
	"fmt"
	"os"
	"strings"
)

// LayerMarker starts the comment line slicers emit at each layer
// change. Split chunks the job at these lines.
const LayerMarker = ";LAYER:"

// Split chunks a whole G-code file into execution-ordered buffers, one
// per layer, with everything before the first layer marker (start
// G-code, slicer header) as the first buffer. Input with no layer
// markers becomes a single buffer. Join(Split(text)) == text.
func Split(text string) []string {
	if text == "" {
		return []string{""}
	}

	var buffers []string
	start := 0
	searchFrom := 0
	for {
		idx := strings.Index(text[searchFrom:], LayerMarker)
		if idx < 0 {
			break
		}
		idx += searchFrom
		// Only split at markers that begin a line.
		if idx > 0 && text[idx-1] != '\n' {
			searchFrom = idx + len(LayerMarker)
			continue
		}
		if idx > start {
			buffers = append(buffers, text[start:idx])
		}
		start = idx
		searchFrom = idx + len(LayerMarker)
	}
	buffers = append(buffers, text[start:])
	return buffers
}

// Join concatenates buffers back into a single G-code document. It is
// the exact inverse of Split.
func Join(buffers []string) string {
	return strings.Join(buffers, "")
}

// ReadFile loads a G-code file and splits it into buffers.
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gcode: read %s: %w", path, err)
	}
	return Split(string(data)), nil
}

// WriteFile joins buffers and writes them to path.
func WriteFile(path string, buffers []string, perm os.FileMode) error {
	if err := os.WriteFile(path, []byte(Join(buffers)), perm); err != nil {
		return fmt.Errorf("gcode: write %s: %w", path, err)
	}
	return nil
}
