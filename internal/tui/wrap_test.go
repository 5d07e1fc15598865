package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/memospeak/internal/score"
)

func render(runes []styledRune) string {
	return renderStyledRunes(runes)
}

func TestBuildStyledLinesPlain(t *testing.T) {
	scorer := score.ForLang("en")
	lines := buildStyledLines("one  two\nthree", scorer, plainWords)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len(lines[0]) != len("one two") {
		t.Fatalf("expected collapsed spaces, got %d runes", len(lines[0]))
	}
	if lines[0][0].s != textStyle.Render("o") {
		t.Fatalf("expected plain style")
	}
	if !lines[0][3].isSpace {
		t.Fatalf("expected separator space")
	}
}

func TestBuildStyledLinesMatchColors(t *testing.T) {
	scorer := score.ForLang("ru-RU")
	result := scorer.Compare("Один ... два три", "один два четыре")
	lines := buildStyledLines("Один ... два три", scorer, matchedWords(result))
	line := lines[0]

	if line[0].s != matchStyle.Render("О") {
		t.Fatalf("expected first word matched")
	}
	var dots int
	for _, r := range line {
		if strings.Contains(r.s, ".") {
			dots++
			if r.s != textStyle.Render(".") {
				t.Fatalf("expected bare punctuation to keep the plain style")
			}
		}
	}
	if dots != 3 {
		t.Fatalf("expected 3 dots, got %d", dots)
	}
	last := line[len(line)-1]
	if last.s != missStyle.Render("и") {
		t.Fatalf("expected last word missed")
	}
}

func TestMatchedWordsOutOfRange(t *testing.T) {
	style := matchedWords(score.Result{})
	if style(3).Render("x") != missStyle.Render("x") {
		t.Fatalf("expected miss style for missing token")
	}
}

func TestWrapStyledRunesBreaksOnSpace(t *testing.T) {
	lines := buildStyledLines("aaa bbb ccc", score.ForLang("en"), func(int) lipgloss.Style { return lipgloss.NewStyle() })
	out := wrapStyledRunes(lines[0], 7)
	if out != "aaa bbb\nccc" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

func TestWrapStyledRunesDropsOverflowingSpace(t *testing.T) {
	lines := buildStyledLines("ab cd ef gh", score.ForLang("en"), func(int) lipgloss.Style { return lipgloss.NewStyle() })
	out := wrapStyledRunes(lines[0], 5)
	if out != "ab cd\nef gh" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

func TestWrapStyledRunesHardBreak(t *testing.T) {
	lines := buildStyledLines("abcdef", score.ForLang("en"), func(int) lipgloss.Style { return lipgloss.NewStyle() })
	out := wrapStyledRunes(lines[0], 4)
	if out != "abcd\nef" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

func TestWrapStyledLinesKeepsHardLines(t *testing.T) {
	lines := buildStyledLines("ab\ncd", score.ForLang("en"), func(int) lipgloss.Style { return lipgloss.NewStyle() })
	out := wrapStyledLines(lines, 10)
	if out != "ab\ncd" {
		t.Fatalf("unexpected output: %q", out)
	}
	if render(lines[1]) != "cd" {
		t.Fatalf("unexpected second line: %q", render(lines[1]))
	}
}
