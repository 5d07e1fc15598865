// Package main provides the CLI entrypoint for memospeak.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/memospeak/internal/config"
	apperrors "github.com/verte-zerg/memospeak/internal/errors"
	"github.com/verte-zerg/memospeak/internal/logging"
	"github.com/verte-zerg/memospeak/internal/model"
	"github.com/verte-zerg/memospeak/internal/segment"
	"github.com/verte-zerg/memospeak/internal/session"
	"github.com/verte-zerg/memospeak/internal/speech"
	"github.com/verte-zerg/memospeak/internal/stats"
	"github.com/verte-zerg/memospeak/internal/store"
	"github.com/verte-zerg/memospeak/internal/textsrc"
	"github.com/verte-zerg/memospeak/internal/tui"
)

const (
	defaultMode     = "full"
	defaultLang     = "ru-RU"
	defaultRate     = 1.0
	defaultLogLevel = "info"
)

var (
	practiceMode  string
	practiceLang  string
	practiceRate  float64
	practiceWatch bool
	ttsCommand    string
	sttCommand    string
	logFile       string
	logLevel      string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "memospeak [file]",
		Short: "Memorize texts by listening and repeating aloud",
		Long: `memospeak reads a text segment by segment and scores your spoken repetition.

The text comes from a .txt file, from piped standard input, or from the
built-in editor when neither is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&practiceMode, "mode", defaultMode, "segmentation mode: full, paragraph (para) or line")
	flags.StringVar(&practiceLang, "lang", defaultLang, "BCP 47 language tag for speech and scoring")
	flags.Float64Var(&practiceRate, "rate", defaultRate, "playback rate (0.5-2 in 0.25 steps)")
	flags.BoolVar(&practiceWatch, "watch", false, "reload the text when the file changes")
	flags.StringVar(&ttsCommand, "tts-cmd", "", "speech synthesis command (default: say or espeak-ng)")
	flags.StringVar(&sttCommand, "stt-cmd", "", "speech recognition command; placeholders {lang}")
	flags.StringVar(&logFile, "log-file", "", "log file path, - for stderr (default: $XDG_STATE_HOME/memospeak/memospeak.log)")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

// resolveConfig merges the config file into flags the user did not set and
// validates the result.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyFloatConfig(cmd, "rate", &practiceRate, fileCfg.Practice.Rate)
	applyBoolConfig(cmd, "watch", &practiceWatch, fileCfg.Practice.Watch)
	applyStringConfig(cmd, "tts-cmd", &ttsCommand, fileCfg.Speech.TTSCommand)
	applyStringConfig(cmd, "stt-cmd", &sttCommand, fileCfg.Speech.STTCommand)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg := model.Config{
		Mode:       strings.ToLower(strings.TrimSpace(practiceMode)),
		Lang:       strings.TrimSpace(practiceLang),
		Rate:       practiceRate,
		Watch:      practiceWatch,
		TTSCommand: ttsCommand,
		STTCommand: sttCommand,
		LogLevel:   strings.ToLower(strings.TrimSpace(logLevel)),
		LogFile:    logFile,
	}
	if cfg.LogFile == "" {
		cfg.LogFile = config.DefaultLogPath()
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := segment.ParseMode(cfg.Mode)
	if err != nil {
		return apperrors.Validation(err.Error())
	}

	logger, closeLog, err := logging.Open(cfg.LogFile, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()
	slog.SetDefault(logger)

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	stdinPiped := path == "" && !term.IsTerminal(int(os.Stdin.Fd()))
	if cfg.Watch && path == "" {
		return apperrors.Validation("--watch requires a file argument")
	}

	text, err := readSource(path, stdinPiped, os.Stdin)
	if err != nil {
		return err
	}

	ctrl := session.New(session.Options{Mode: mode, Lang: cfg.Lang, Rate: cfg.Rate})
	if text != "" {
		if err := ctrl.Load(text); err != nil {
			return err
		}
	}

	output := speech.NewCommandOutput(cfg.TTSCommand, logger)
	input := speech.NewCommandInput(cfg.STTCommand, logger)
	if err := output.Available(); err != nil {
		logger.Warn("speech synthesis unavailable", "err", err)
	}
	if err := input.Available(); err != nil {
		logger.Warn("speech recognition unavailable", "err", err)
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close journal: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads <-chan textsrc.Reload
	if cfg.Watch {
		reloads, err = textsrc.Watch(ctx, path, logger)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	logger.Info("starting practice",
		"mode", cfg.Mode, "lang", cfg.Lang, "rate", cfg.Rate,
		"source", sourceName(path, stdinPiped), "watch", cfg.Watch)

	m := tui.NewModel(tui.Options{
		Session: ctrl,
		Output:  output,
		Input:   input,
		Journal: st,
		Logger:  logger,
		Reloads: reloads,
	})
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if stdinPiped {
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	program := tea.NewProgram(m, programOpts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	report, err := stats.BuildReport(ctx, st, ctrl.SessionID())
	if err != nil {
		return fmt.Errorf("failed to build summary: %w", err)
	}
	return stats.RenderSummary(cmd.OutOrStdout(), report)
}

// readSource returns the practice text from path, from piped stdin, or ""
// when the editor should collect it.
func readSource(path string, stdinPiped bool, stdin io.Reader) (string, error) {
	switch {
	case path != "":
		return textsrc.LoadFile(path)
	case stdinPiped:
		return textsrc.Read(stdin, "stdin")
	default:
		return "", nil
	}
}

func sourceName(path string, stdinPiped bool) string {
	switch {
	case path != "":
		return path
	case stdinPiped:
		return "stdin"
	default:
		return "editor"
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that speech synthesis and recognition are available",
		Args:  cobra.NoArgs,
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Writer: cmd.ErrOrStderr(), Level: logging.ParseLevel(cfg.LogLevel)})
	return checkSpeech(cmd.OutOrStdout(),
		speech.NewCommandOutput(cfg.TTSCommand, logger),
		speech.NewCommandInput(cfg.STTCommand, logger))
}

// checkSpeech prints the availability of both speech ports and fails when
// either is missing.
func checkSpeech(w io.Writer, output speech.Output, input speech.Input) error {
	results := []struct {
		name string
		err  error
	}{
		{name: "synthesis", err: output.Available()},
		{name: "recognition", err: input.Available()},
	}
	var missing []error
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = "unavailable: " + r.err.Error()
			missing = append(missing, r.err)
		}
		if _, err := fmt.Fprintf(w, "%-12s %s\n", r.name, status); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if len(missing) > 0 {
		return apperrors.Join(missing...)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# memospeak configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q           # full, paragraph or line
# lang = %q          # BCP 47 language tag
# rate = %.2f             # Playback rate, 0.5-2 in 0.25 steps
# watch = false           # Reload the text file when it changes

[speech]
# tts-command = "espeak-ng -v {voice} -s {wpm}"   # Text arrives on stdin
# stt-command = "whisper-listen --lang {lang}"    # Prints the transcript

[log]
# level = %q          # debug, info, warn or error
# file = %q
`,
		defaultMode,
		defaultLang,
		defaultRate,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
