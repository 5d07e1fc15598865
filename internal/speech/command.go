package speech

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// commandLine is a parsed command template. Arguments may contain the
// placeholders {lang}, {voice}, {rate} and {wpm}.
type commandLine struct {
	bin  string
	args []string
}

func parseCommandLine(command string) (commandLine, bool) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return commandLine{}, false
	}
	return commandLine{bin: parts[0], args: parts[1:]}, true
}

func (c commandLine) expand(lang string, rate float64) []string {
	r := strings.NewReplacer(
		"{lang}", lang,
		"{voice}", voiceFor(lang),
		"{rate}", strconv.FormatFloat(rate, 'f', -1, 64),
		"{wpm}", strconv.Itoa(wordsPerMinute(rate)),
	)
	out := make([]string, len(c.args))
	for i, arg := range c.args {
		out[i] = r.Replace(arg)
	}
	return out
}

// waitDelay bounds how long a cancelled tool may hold its output pipes.
const waitDelay = 500 * time.Millisecond

// baseWPM is the speaking speed of the synthesis tools at rate 1.
const baseWPM = 175

func wordsPerMinute(rate float64) int {
	return int(baseWPM*rate + 0.5)
}

// voiceFor maps a BCP 47 tag like "ru-RU" to the primary language subtag
// understood by espeak voices.
func voiceFor(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return "…" + s[i:]
}
