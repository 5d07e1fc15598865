package stats

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one column of a summary table.
type column struct {
	header string
	right  bool
	// maxWidth truncates cells wider than this; 0 disables truncation.
	maxWidth int
}

func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	cells := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.header
	}
	cells = append(cells, header)
	for _, row := range rows {
		out := make([]string, len(cols))
		for i, col := range cols {
			if i < len(row) {
				out[i] = fitCell(row[i], col.maxWidth)
			}
		}
		cells = append(cells, out)
	}

	widths := make([]int, len(cols))
	for _, row := range cells {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(cells))
	for _, row := range cells {
		lines = append(lines, formatRow(row, widths, cols))
	}
	return lines
}

// fitCell flattens cell to one line and truncates it to maxWidth columns.
func fitCell(cell string, maxWidth int) string {
	cell = strings.Join(strings.Fields(cell), " ")
	if maxWidth <= 0 {
		return cell
	}
	return runewidth.Truncate(cell, maxWidth, "…")
}

func formatRow(row []string, widths []int, cols []column) string {
	var b strings.Builder
	for i, width := range widths {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(row[i], width, cols[i].right))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func percentCell(v int) string {
	return fmt.Sprintf("%d%%", v)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
