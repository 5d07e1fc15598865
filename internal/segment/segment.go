// Package segment splits study text into practice units.
package segment

import (
	"fmt"
	"strings"
)

// Mode selects how a text is cut into segments.
type Mode int

const (
	// Full keeps the whole text as one segment.
	Full Mode = iota
	// Paragraph splits on blank lines.
	Paragraph
	// Line splits on every newline.
	Line
)

const (
	lineSep      = "\n"
	paragraphSep = "\n\n"
)

// Modes returns all modes in display order.
func Modes() []Mode {
	return []Mode{Line, Paragraph, Full}
}

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Paragraph:
		return "paragraph"
	case Line:
		return "line"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name as used in flags and the config file.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return Full, nil
	case "paragraph", "para":
		return Paragraph, nil
	case "line":
		return Line, nil
	default:
		return Full, fmt.Errorf("unknown mode %q (want full, paragraph or line)", s)
	}
}

// Next returns the mode that follows m in display order.
func (m Mode) Next() Mode {
	modes := Modes()
	for i, candidate := range modes {
		if candidate == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return Full
}

// Split derives the segment sequence for text. Line and Paragraph drop
// pieces that are empty after trimming; Full returns the text unmodified.
// Empty text yields no segments in every mode.
func Split(text string, mode Mode) []string {
	if text == "" {
		return nil
	}
	switch mode {
	case Line:
		return splitNonBlank(text, lineSep)
	case Paragraph:
		return splitNonBlank(text, paragraphSep)
	default:
		return []string{text}
	}
}

func splitNonBlank(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
