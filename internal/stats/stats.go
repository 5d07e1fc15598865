// Package stats summarizes a practice session.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const sparkChars = " .:-=+*#%@"

// maxExpectedWidth truncates segment text in the per-segment table.
const maxExpectedWidth = 40

// Sparkline renders scores on a fixed 0-100 scale as a single ASCII line.
func Sparkline(scores []int) string {
	if len(scores) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range scores {
		pos := float64(v) / 100
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the session tally, a score sparkline and the
// per-segment table.
func RenderSummary(w io.Writer, report Report) error {
	if report.Tally.Attempts == 0 {
		_, err := fmt.Fprintln(w, "No attempts recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Correct: %d\n", report.Tally.Successes); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Attempts: %d\n", report.Tally.Attempts); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy: %d%%\n", report.Tally.SuccessRate()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Scores: [%s]\n", Sparkline(report.Scores)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return renderSegmentTable(w, report)
}

func renderSegmentTable(w io.Writer, report Report) error {
	if len(report.Segments) == 0 {
		return nil
	}
	cols := []column{
		{header: "Mode"},
		{header: "#", right: true},
		{header: "Segment", maxWidth: maxExpectedWidth},
		{header: "Attempts", right: true},
		{header: "Correct", right: true},
		{header: "Best", right: true},
		{header: "Last", right: true},
	}
	rows := make([][]string, 0, len(report.Segments))
	for _, s := range report.Segments {
		rows = append(rows, []string{
			s.Mode,
			fmt.Sprintf("%d", s.SegmentIndex+1),
			s.Expected,
			fmt.Sprintf("%d", s.Attempts),
			fmt.Sprintf("%d", s.Successes),
			percentCell(s.BestScore),
			percentCell(s.LastScore),
		})
	}
	if _, err := fmt.Fprintln(w, "Per-Segment"); err != nil {
		return err
	}
	for _, line := range formatTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
