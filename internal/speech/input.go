package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
)

// Compile-time interface check.
var _ Input = (*CommandInput)(nil)

// CommandInput recognizes one utterance by running a recognizer command
// that records from the microphone and prints the transcript.
//
// Stdout is either the plain transcript or a JSON object:
//
//	{"text": "...", "segments": [{"text": "..."}], "error": "no-speech"}
type CommandInput struct {
	cmd      commandLine
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// recognizerOutput is the JSON form of recognizer stdout.
type recognizerOutput struct {
	Text     string `json:"text"`
	Error    string `json:"error"`
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments"`
}

// NewCommandInput creates a recognition port from a command template.
func NewCommandInput(command string, logger *slog.Logger) *CommandInput {
	if logger == nil {
		logger = slog.Default()
	}
	cl, _ := parseCommandLine(command)
	return &CommandInput{cmd: cl, lookPath: exec.LookPath, logger: logger}
}

// Available implements Input.
func (in *CommandInput) Available() error {
	if in.cmd.bin == "" {
		return apperrors.Unsupportedf("no speech recognizer configured (set stt-command)")
	}
	if _, err := in.lookPath(in.cmd.bin); err != nil {
		return apperrors.Unsupportedf("speech recognizer %q not found", in.cmd.bin)
	}
	return nil
}

// Listen implements Input.
func (in *CommandInput) Listen(ctx context.Context, lang string) (string, error) {
	if err := in.Available(); err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, in.cmd.bin, in.cmd.expand(lang, DefaultRate)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	in.logger.Debug("listening", "bin", in.cmd.bin, "lang", lang)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyFailure(err, stderr.String())
	}
	return parseTranscript(stdout.Bytes())
}

func parseTranscript(out []byte) (string, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var parsed recognizerOutput
		if err := json.Unmarshal(trimmed, &parsed); err != nil {
			return "", apperrors.RecognitionFailed("failed to parse recognizer output", err)
		}
		if parsed.Error != "" {
			return "", classifyCategory(parsed.Error)
		}
		text := parsed.Text
		if text == "" && len(parsed.Segments) > 0 {
			parts := make([]string, 0, len(parsed.Segments))
			for _, seg := range parsed.Segments {
				parts = append(parts, strings.TrimSpace(seg.Text))
			}
			text = strings.Join(parts, " ")
		}
		trimmed = []byte(strings.TrimSpace(text))
	}
	if len(trimmed) == 0 {
		return "", apperrors.NoSpeech("recognizer returned no transcript")
	}
	return string(trimmed), nil
}

// classifyCategory maps recognizer error names to the error taxonomy. The
// names follow the Web Speech API where one exists.
func classifyCategory(category string) error {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "not-allowed", "service-not-allowed", "permission-denied", "permission":
		return apperrors.PermissionDenied(category)
	case "no-speech", "no-match":
		return apperrors.NoSpeech(category)
	default:
		return apperrors.RecognitionFailed(category, nil)
	}
}

func classifyFailure(err error, stderr string) error {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "permission") || strings.Contains(lower, "not-allowed") || strings.Contains(lower, "not allowed"):
		return apperrors.PermissionDenied("microphone permission denied").WithCause(err)
	case strings.Contains(lower, "no-speech") || strings.Contains(lower, "no speech"):
		return apperrors.NoSpeech("no speech detected").WithCause(err)
	default:
		return apperrors.RecognitionFailed(fmt.Sprintf("recognizer exited: %s", tail(stderr, 200)), err)
	}
}
