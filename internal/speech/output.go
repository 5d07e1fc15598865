package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
)

// Compile-time interface check.
var _ Output = (*CommandOutput)(nil)

// CommandOutput speaks text through a host synthesis tool. Known tools (say,
// espeak-ng, espeak) receive the text as an argument; any other command is
// treated as a template and receives the text on stdin.
type CommandOutput struct {
	cmd      commandLine
	builtin  bool
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// DetectOutputCommand returns the platform synthesis tool, or "" when none
// is installed.
func DetectOutputCommand() string {
	candidates := []string{"espeak-ng", "espeak"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"say"}
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}

// NewCommandOutput creates a synthesis port. An empty command selects the
// platform tool.
func NewCommandOutput(command string, logger *slog.Logger) *CommandOutput {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(command) == "" {
		command = DetectOutputCommand()
	}
	cl, _ := parseCommandLine(command)
	return &CommandOutput{
		cmd:      cl,
		builtin:  len(cl.args) == 0 && isBuiltinSynth(cl.bin),
		lookPath: exec.LookPath,
		logger:   logger,
	}
}

func isBuiltinSynth(bin string) bool {
	switch bin {
	case "say", "espeak", "espeak-ng":
		return true
	default:
		return false
	}
}

// Available implements Output.
func (o *CommandOutput) Available() error {
	if o.cmd.bin == "" {
		return apperrors.Unsupportedf("no speech synthesis tool found (install espeak-ng or set tts-command)")
	}
	if _, err := o.lookPath(o.cmd.bin); err != nil {
		return apperrors.Unsupportedf("speech synthesis tool %q not found", o.cmd.bin)
	}
	return nil
}

// Speak implements Output.
func (o *CommandOutput) Speak(ctx context.Context, text, lang string, rate float64) error {
	if err := o.Available(); err != nil {
		return err
	}
	rate = ClampRate(rate)
	args, stdin := o.buildArgs(text, lang, rate)

	cmd := exec.CommandContext(ctx, o.cmd.bin, args...)
	if stdin {
		cmd.Stdin = strings.NewReader(text)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	o.logger.Debug("speaking segment", "bin", o.cmd.bin, "lang", lang, "rate", rate, "chars", len(text))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech synthesis failed: %w: %s", err, tail(stderr.String(), 200))
	}
	return nil
}

func (o *CommandOutput) buildArgs(text, lang string, rate float64) ([]string, bool) {
	if !o.builtin {
		return o.cmd.expand(lang, rate), true
	}
	wpm := fmt.Sprint(wordsPerMinute(rate))
	switch o.cmd.bin {
	case "say":
		return []string{"-r", wpm, "--", text}, false
	default:
		args := []string{"-s", wpm}
		if voice := voiceFor(lang); voice != "" {
			args = append(args, "-v", voice)
		}
		return append(args, "--", text), false
	}
}
