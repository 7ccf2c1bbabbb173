package generator

import (
	"fmt"
	"os"
	"strings"
)

// DefaultMarker is the router line registrations are inserted before.
const DefaultMarker = "run ApplicationController"

// UseLine returns the router registration for a controller class.
func UseLine(className string) string {
	return "use " + className + "Controller"
}

// Splice inserts line immediately before the single marker line of content,
// matching the marker's indentation. It reports false when line is already
// present anywhere in content.
func Splice(content, marker, line string) (string, bool, error) {
	marker = strings.TrimSpace(marker)
	line = strings.TrimSpace(line)

	lines := strings.Split(content, "\n")
	at := -1
	present := false
	for i, l := range lines {
		switch strings.TrimSpace(l) {
		case marker:
			if at >= 0 {
				return "", false, fmt.Errorf("%w: ambiguous, %q appears more than once", ErrMarkerNotFound, marker)
			}
			at = i
		case line:
			present = true
		}
	}

	if at < 0 {
		return "", false, fmt.Errorf("%w: no %q line", ErrMarkerNotFound, marker)
	}
	if present {
		return content, false, nil
	}

	markerLine := lines[at]
	indent := markerLine[:len(markerLine)-len(strings.TrimLeft(markerLine, " \t"))]
	inserted := indent + line
	if strings.HasSuffix(markerLine, "\r") {
		inserted += "\r"
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, inserted)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n"), true, nil
}

// Router is the application's rack-up file.
type Router struct {
	Path   string
	Marker string
}

// Plan computes the router contents with className registered. It reports
// false when the registration already exists.
func (r Router) Plan(className string) ([]byte, bool, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read router: %w", err)
	}

	marker := r.Marker
	if marker == "" {
		marker = DefaultMarker
	}

	out, changed, err := Splice(string(data), marker, UseLine(className))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", r.Path, err)
	}
	return []byte(out), changed, nil
}
