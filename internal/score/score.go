// Package score compares a spoken transcript with the expected text.
//
// The metric is position-aligned word equality: the i-th spoken word is
// compared with the i-th expected word only. It is cheap and explainable,
// but one dropped or inserted word shifts every later comparison.
package score

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SuccessThreshold is the minimum percentage counted as a successful attempt.
const SuccessThreshold = 70

var punctStripper = strings.NewReplacer(
	".", "",
	",", "",
	"!", "",
	"?", "",
	";", "",
	":", "",
)

// WordMatch describes one expected word position.
type WordMatch struct {
	Expected string
	Spoken   string
	Match    bool
}

// Result is the outcome of comparing two texts.
type Result struct {
	Matches int
	// Total is the longer of the two word counts.
	Total   int
	Percent int
	Words   []WordMatch
}

// Success reports whether the result reaches SuccessThreshold.
func (r Result) Success() bool {
	return IsSuccess(r.Percent)
}

// IsSuccess reports whether percent reaches SuccessThreshold.
func IsSuccess(percent int) bool {
	return percent >= SuccessThreshold
}

// Scorer normalizes words using the casing rules of a language.
type Scorer struct {
	tag language.Tag
}

// New returns a Scorer for the given language.
func New(tag language.Tag) *Scorer {
	return &Scorer{tag: tag}
}

// ForLang returns a Scorer for a BCP 47 tag, falling back to language-neutral
// casing when the tag does not parse.
func ForLang(lang string) *Scorer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return New(tag)
}

// Score compares expected and spoken with language-neutral casing.
func Score(expected, spoken string) int {
	return New(language.Und).Compare(expected, spoken).Percent
}

// Words returns the normalized word tokens of text.
func (s *Scorer) Words(text string) []string {
	// Casers are stateful and must not be shared.
	lower := cases.Lower(s.tag)
	text = lower.String(norm.NFC.String(text))
	text = punctStripper.Replace(text)
	return strings.Fields(text)
}

// Compare scores spoken against expected. When both texts have no words the
// percentage is 0.
func (s *Scorer) Compare(expected, spoken string) Result {
	expectedWords := s.Words(expected)
	spokenWords := s.Words(spoken)

	total := max(len(expectedWords), len(spokenWords))
	result := Result{Total: total}
	if total == 0 {
		return result
	}

	result.Words = make([]WordMatch, len(expectedWords))
	for i, word := range expectedWords {
		wm := WordMatch{Expected: word}
		if i < len(spokenWords) {
			wm.Spoken = spokenWords[i]
			wm.Match = word == spokenWords[i]
		}
		if wm.Match {
			result.Matches++
		}
		result.Words[i] = wm
	}
	result.Percent = int(math.Round(float64(result.Matches) / float64(total) * 100))
	return result
}
