package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/memospeak/internal/score"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// wordStyle picks the style of the i-th expected word token.
type wordStyle func(token int) lipgloss.Style

// plainWords styles every word as untested text.
func plainWords(int) lipgloss.Style {
	return textStyle
}

// matchedWords colors word tokens by the per-position outcome of an attempt.
func matchedWords(result score.Result) wordStyle {
	return func(token int) lipgloss.Style {
		if token < 0 || token >= len(result.Words) {
			return missStyle
		}
		if result.Words[token].Match {
			return matchStyle
		}
		return missStyle
	}
}

// buildStyledLines splits a segment into hard lines of styled runes. Words
// that normalize to nothing (bare punctuation) keep the plain style and do
// not consume a token, so token indices line up with the scorer's.
func buildStyledLines(text string, scorer *score.Scorer, style wordStyle) [][]styledRune {
	token := 0
	lines := strings.Split(text, "\n")
	out := make([][]styledRune, 0, len(lines))
	for _, line := range lines {
		var runes []styledRune
		for i, word := range strings.Fields(line) {
			if i > 0 {
				runes = append(runes, styledRune{s: " ", width: 1, isSpace: true})
			}
			st := textStyle
			if len(scorer.Words(word)) > 0 {
				st = style(token)
				token++
			}
			for _, r := range word {
				runes = append(runes, styledRune{
					s:     st.Render(string(r)),
					width: runewidth.RuneWidth(r),
				})
			}
		}
		out = append(out, runes)
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledLines(lines [][]styledRune, width int) string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = wrapStyledRunes(line, width)
	}
	return strings.Join(parts, "\n")
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
