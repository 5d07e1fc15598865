package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"unicode/utf8"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
)

func TestClampRate(t *testing.T) {
	cases := map[float64]float64{
		0.1:  0.5,
		0.5:  0.5,
		0.6:  0.5,
		0.9:  1.0,
		1.0:  1.0,
		1.3:  1.25,
		1.75: 1.75,
		2.0:  2.0,
		3.5:  2.0,
	}
	for in, want := range cases {
		assert.InDelta(t, want, ClampRate(in), 1e-9, "rate %v", in)
	}
}

func TestExpandPlaceholders(t *testing.T) {
	cl, ok := parseCommandLine("piper --lang {lang} --voice {voice} --speed {rate} --wpm {wpm}")
	require.True(t, ok)
	assert.Equal(t, "piper", cl.bin)
	assert.Equal(t,
		[]string{"--lang", "ru-RU", "--voice", "ru", "--speed", "1.5", "--wpm", "263"},
		cl.expand("ru-RU", 1.5))

	_, ok = parseCommandLine("   ")
	assert.False(t, ok)
}

func TestBuiltinSynthArgs(t *testing.T) {
	espeak := NewCommandOutput("espeak-ng", nil)
	args, stdin := espeak.buildArgs("привет", "ru-RU", 1)
	assert.False(t, stdin)
	assert.Equal(t, []string{"-s", "175", "-v", "ru", "--", "привет"}, args)

	say := NewCommandOutput("say", nil)
	args, stdin = say.buildArgs("hello", "en-US", 0.5)
	assert.False(t, stdin)
	assert.Equal(t, []string{"-r", "88", "--", "hello"}, args)

	custom := NewCommandOutput("tts-wrapper {lang}", nil)
	args, stdin = custom.buildArgs("hello", "en-US", 2)
	assert.True(t, stdin)
	assert.Equal(t, []string{"en-US"}, args)
}

func TestAvailableReportsUnsupported(t *testing.T) {
	missing := func(string) (string, error) { return "", errors.New("not found") }

	out := NewCommandOutput("espeak-ng", nil)
	out.lookPath = missing
	assert.ErrorIs(t, out.Available(), apperrors.ErrUnsupportedCapability)

	in := NewCommandInput("", nil)
	assert.ErrorIs(t, in.Available(), apperrors.ErrUnsupportedCapability)

	in = NewCommandInput("whisper-listen", nil)
	in.lookPath = missing
	assert.ErrorIs(t, in.Available(), apperrors.ErrUnsupportedCapability)

	noop := NewNoOp(nil)
	assert.ErrorIs(t, noop.Speak(context.Background(), "x", "en", 1), apperrors.ErrUnsupportedCapability)
	_, err := noop.Listen(context.Background(), "en")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedCapability)
}

func TestParseTranscript(t *testing.T) {
	text, err := parseTranscript([]byte("  один два три \n"))
	require.NoError(t, err)
	assert.Equal(t, "один два три", text)

	text, err = parseTranscript([]byte(`{"text": " быть или не быть "}`))
	require.NoError(t, err)
	assert.Equal(t, "быть или не быть", text)

	text, err = parseTranscript([]byte(`{"segments": [{"text": " one"}, {"text": "two "}]}`))
	require.NoError(t, err)
	assert.Equal(t, "one two", text)

	_, err = parseTranscript([]byte("\n"))
	assert.ErrorIs(t, err, apperrors.ErrNoSpeech)

	_, err = parseTranscript([]byte(`{"error": "not-allowed"}`))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = parseTranscript([]byte(`{"error": "no-speech"}`))
	assert.ErrorIs(t, err, apperrors.ErrNoSpeech)

	_, err = parseTranscript([]byte(`{"error": "network"}`))
	assert.ErrorIs(t, err, apperrors.ErrRecognitionFailed)

	_, err = parseTranscript([]byte(`{"text": `))
	assert.ErrorIs(t, err, apperrors.ErrRecognitionFailed)
}

func TestClassifyFailure(t *testing.T) {
	base := errors.New("exit status 1")
	assert.ErrorIs(t, classifyFailure(base, "error: microphone permission denied"), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, classifyFailure(base, "no speech detected"), apperrors.ErrNoSpeech)
	err := classifyFailure(base, "device busy")
	assert.ErrorIs(t, err, apperrors.ErrRecognitionFailed)
	assert.ErrorIs(t, err, base)
}

func TestClassifyFailureCyrillicStderr(t *testing.T) {
	stderr := strings.Repeat("ошибка ", 40)
	err := classifyFailure(errors.New("exit status 1"), stderr)
	msg := apperrors.UserMessage(err)
	assert.True(t, utf8.ValidString(msg), "%q", msg)
	assert.True(t, strings.HasSuffix(msg, "ошибка"))
}

func TestTailKeepsRuneBoundary(t *testing.T) {
	for n := 1; n <= 12; n++ {
		got := tail("привет мир", n)
		assert.True(t, utf8.ValidString(got), "n=%d: %q", n, got)
		assert.LessOrEqual(t, len(got), n+len("…"))
	}
	assert.Equal(t, "abc", tail("  abc  ", 10))
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestCommandInputListen(t *testing.T) {
	script := writeScript(t, `echo "{\"text\": \"lang $1\"}"`)
	in := NewCommandInput(script+" {lang}", nil)

	text, err := in.Listen(context.Background(), "ru-RU")
	require.NoError(t, err)
	assert.Equal(t, "lang ru-RU", text)
}

func TestCommandInputFailure(t *testing.T) {
	script := writeScript(t, `echo "permission denied" >&2; exit 3`)
	in := NewCommandInput(script, nil)

	_, err := in.Listen(context.Background(), "en-US")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCommandOutputCancel(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	out := NewCommandOutput(script, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := out.Speak(ctx, "long text", "en-US", 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommandOutputStdin(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "spoken.txt")
	script := writeScript(t, `cat > "$1"`)
	out := NewCommandOutput(script+" "+target, nil)

	require.NoError(t, out.Speak(context.Background(), "вот в чём вопрос", "ru-RU", 1))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "вот в чём вопрос", string(data))
}
