// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
	"github.com/verte-zerg/memospeak/internal/logging"
	"github.com/verte-zerg/memospeak/internal/model"
	"github.com/verte-zerg/memospeak/internal/score"
	"github.com/verte-zerg/memospeak/internal/segment"
	"github.com/verte-zerg/memospeak/internal/session"
	"github.com/verte-zerg/memospeak/internal/speech"
	"github.com/verte-zerg/memospeak/internal/store"
	"github.com/verte-zerg/memospeak/internal/textsrc"
)

type screen int

const (
	screenEntry screen = iota
	screenPractice
)

// chromeHeight is the number of rows around the segment viewport.
const chromeHeight = 11

// Options wires the model to its collaborators.
type Options struct {
	Session *session.Controller
	Output  speech.Output
	Input   speech.Input
	// Journal is optional; scored attempts are recorded when set.
	Journal *store.Store
	Logger  *slog.Logger
	// Reloads delivers new contents of a watched source file.
	Reloads <-chan textsrc.Reload
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	session *session.Controller
	output  speech.Output
	input   speech.Input
	journal *store.Store
	logger  *slog.Logger
	reloads <-chan textsrc.Reload
	scorer  *score.Scorer
	now     func() time.Time

	screen screen
	width  int
	height int

	editor    textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model
	progress  progress.Model
	help      help.Model
	keys      practiceKeys
	entryKeys entryKeys

	status    string
	statusErr bool

	cancelPlayback context.CancelFunc
	cancelListen   context.CancelFunc
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	matchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	missStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	successStyle = matchStyle.Bold(true)
	failStyle    = missStyle.Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the practice TUI. A loaded session opens on the
// practice screen, an empty one on the text entry screen.
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	output := opts.Output
	input := opts.Input
	if output == nil || input == nil {
		noop := speech.NewNoOp(logger)
		if output == nil {
			output = noop
		}
		if input == nil {
			input = noop
		}
	}

	editor := textarea.New()
	editor.Placeholder = "Paste or type the text to memorize..."
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Focus()

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
	}

	m := &Model{
		session:   opts.Session,
		output:    output,
		input:     input,
		journal:   opts.Journal,
		logger:    logger,
		reloads:   opts.Reloads,
		scorer:    score.ForLang(opts.Session.Lang()),
		now:       time.Now,
		editor:    editor,
		viewport:  vp,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:      help.New(),
		keys:      newPracticeKeys(),
		entryKeys: newEntryKeys(),
	}
	if m.session.State() == session.StateLoaded {
		m.screen = screenPractice
		m.editor.Blur()
	}
	m.refreshContent()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForReload(m.reloads)}
	if m.screen == screenEntry {
		cmds = append(cmds, textarea.Blink)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case playbackDoneMsg:
		m.handlePlaybackDone(msg)
		return m, nil
	case recognitionMsg:
		m.handleRecognition(msg)
		return m, nil
	case reloadMsg:
		m.handleReload(textsrc.Reload(msg))
		return m, waitForReload(m.reloads)
	case reloadClosedMsg:
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.screen == screenEntry {
			return m.updateEntry(msg)
		}
		return m.updatePractice(msg)
	}
	if m.screen == screenEntry {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.entryKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.entryKeys.Load):
		m.loadText(textsrc.Normalize(m.editor.Value()))
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) updatePractice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Play):
		return m, m.togglePlayback()
	case key.Matches(msg, m.keys.Record):
		return m, m.toggleRecording()
	case key.Matches(msg, m.keys.Prev):
		m.move(m.session.Previous)
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.move(m.session.Next)
		return m, nil
	case key.Matches(msg, m.keys.Mode):
		m.setMode(m.session.Mode().Next())
		return m, nil
	case key.Matches(msg, m.keys.Line):
		m.setMode(segment.Line)
		return m, nil
	case key.Matches(msg, m.keys.Para):
		m.setMode(segment.Paragraph)
		return m, nil
	case key.Matches(msg, m.keys.Full):
		m.setMode(segment.Full)
		return m, nil
	case key.Matches(msg, m.keys.Faster):
		m.setInfo(fmt.Sprintf("Speed %.2f×", m.session.StepRate(1)))
		return m, nil
	case key.Matches(msg, m.keys.Slower):
		m.setInfo(fmt.Sprintf("Speed %.2f×", m.session.StepRate(-1)))
		return m, nil
	case key.Matches(msg, m.keys.New):
		return m, m.newText()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) loadText(text string) {
	m.cancelAll()
	if err := m.session.Load(text); err != nil {
		m.setError(err)
		return
	}
	m.logger.Info("text loaded",
		"session", m.session.SessionID(),
		"mode", m.session.Mode().String(),
		"segments", len(m.session.Segments()))
	m.screen = screenPractice
	m.editor.Blur()
	m.clearStatus()
	m.refreshContent()
}

func (m *Model) newText() tea.Cmd {
	m.cancelAll()
	m.session.Reset()
	m.screen = screenEntry
	m.editor.Reset()
	m.clearStatus()
	m.refreshContent()
	return tea.Batch(m.editor.Focus(), textarea.Blink)
}

func (m *Model) move(step func() bool) {
	if m.session.Recording() {
		m.setInfo("Stop recording before moving.")
		return
	}
	step()
	m.clearStatus()
	m.refreshContent()
}

func (m *Model) setMode(mode segment.Mode) {
	if !m.session.SetMode(mode) {
		m.setInfo("Stop recording before changing the mode.")
		return
	}
	if !m.session.Speaking() {
		m.releasePlayback()
	}
	m.clearStatus()
	m.refreshContent()
}

func (m *Model) togglePlayback() tea.Cmd {
	if m.session.Speaking() {
		m.session.StopPlayback()
		m.releasePlayback()
		m.logger.Debug("playback stopped")
		return nil
	}
	token, err := m.session.BeginPlayback()
	if err != nil {
		m.setError(err)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelPlayback = cancel
	m.clearStatus()
	m.logger.Debug("playback started", "segment", m.session.Cursor(), "rate", m.session.Rate())
	return tea.Batch(
		speakCmd(ctx, m.output, token, m.session.Current(), m.session.Lang(), m.session.Rate()),
		m.spinner.Tick,
	)
}

func (m *Model) toggleRecording() tea.Cmd {
	if m.session.Recording() {
		m.session.AbortAttempt()
		m.releaseListen()
		m.setInfo("Recording stopped.")
		m.logger.Debug("attempt aborted")
		return nil
	}
	token, err := m.session.BeginAttempt()
	if err != nil {
		m.setError(err)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelListen = cancel
	m.clearStatus()
	m.logger.Debug("attempt started", "segment", m.session.Cursor())
	return tea.Batch(
		listenCmd(ctx, m.input, token, m.session.Lang()),
		m.spinner.Tick,
	)
}

func (m *Model) handlePlaybackDone(msg playbackDoneMsg) {
	if !m.session.EndPlayback(msg.token) {
		return
	}
	m.releasePlayback()
	if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
		m.logger.Warn("playback failed", "err", msg.err)
		m.setError(msg.err)
	}
}

func (m *Model) handleRecognition(msg recognitionMsg) {
	if msg.err != nil {
		if err := m.session.FailAttempt(msg.token); err != nil {
			return
		}
		m.releaseListen()
		m.logger.Warn("recognition failed", "code", apperrors.CodeOf(msg.err), "err", msg.err)
		m.setError(msg.err)
		return
	}
	attempt, err := m.session.CompleteAttempt(msg.token, msg.transcript)
	if err != nil {
		return
	}
	m.releaseListen()
	m.logger.Info("attempt scored",
		"segment", attempt.SegmentIndex,
		"score", attempt.Percent(),
		"success", attempt.Success())
	m.record(attempt)
	m.clearStatus()
	m.refreshContent()
}

func (m *Model) handleReload(r textsrc.Reload) {
	if r.Err != nil {
		m.logger.Warn("reload failed", "err", r.Err)
		m.setError(r.Err)
		return
	}
	m.loadText(r.Text)
	if m.screen == screenPractice {
		m.setInfo("Source changed; text reloaded.")
	}
}

func (m *Model) record(attempt session.Attempt) {
	if m.journal == nil {
		return
	}
	rec := model.AttemptRecord{
		SessionID:    m.session.SessionID(),
		Mode:         m.session.Mode().String(),
		SegmentIndex: attempt.SegmentIndex,
		Expected:     attempt.Expected,
		Transcript:   attempt.Transcript,
		Score:        attempt.Percent(),
		Success:      attempt.Success(),
		CreatedAt:    m.now(),
	}
	if _, err := m.journal.InsertAttempt(context.Background(), rec); err != nil {
		m.logger.Error("failed to record attempt", "err", err)
	}
}

func (m *Model) busy() bool {
	return m.session.Speaking() || m.session.Recording()
}

func (m *Model) releasePlayback() {
	if m.cancelPlayback != nil {
		m.cancelPlayback()
		m.cancelPlayback = nil
	}
}

func (m *Model) releaseListen() {
	if m.cancelListen != nil {
		m.cancelListen()
		m.cancelListen = nil
	}
}

func (m *Model) cancelAll() {
	m.session.StopPlayback()
	m.session.AbortAttempt()
	m.releasePlayback()
	m.releaseListen()
}

func (m *Model) setError(err error) {
	m.status = apperrors.UserMessage(err)
	m.statusErr = true
}

func (m *Model) setInfo(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	w := int(float64(m.width) * 0.80)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) layout() {
	width := m.contentWidth()
	m.help.Width = m.width
	m.progress.Width = width
	m.editor.SetWidth(width)
	if m.height > 0 {
		m.editor.SetHeight(max(3, m.height-6))
	}
	m.viewport.Width = width
	m.viewport.Height = max(3, m.height-chromeHeight)
	m.refreshContent()
}

// refreshContent re-renders the current segment into the viewport.
func (m *Model) refreshContent() {
	current := m.session.Current()
	style := wordStyle(plainWords)
	if attempt, ok := m.session.LastAttempt(); ok {
		style = matchedWords(attempt.Result)
	}
	lines := buildStyledLines(current, m.scorer, style)
	m.viewport.SetContent(wrapStyledLines(lines, m.contentWidth()))
	m.viewport.GotoTop()
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.screen == screenEntry {
		body = m.entryView()
	} else {
		body = m.practiceView()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) entryView() string {
	parts := []string{
		titleStyle.Render("memospeak") + "  " + badgeStyle.Render("enter a text to memorize"),
		m.editor.View(),
	}
	if line := m.renderStatus(); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, m.help.View(m.entryKeys))
	return strings.Join(parts, "\n")
}

func (m *Model) practiceView() string {
	parts := []string{
		m.renderHeader(),
		m.renderProgress(),
		"",
		m.viewport.View(),
		"",
	}
	if line := m.renderAttempt(); line != "" {
		parts = append(parts, line)
	}
	if line := m.renderActivity(); line != "" {
		parts = append(parts, line)
	}
	if line := m.renderTally(); line != "" {
		parts = append(parts, line)
	}
	if line := m.renderStatus(); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m *Model) renderHeader() string {
	pos, total := m.session.Position()
	segments := []string{
		titleStyle.Render("memospeak"),
		badgeStyle.Render(modeLabel(m.session.Mode())),
		badgeStyle.Render(fmt.Sprintf("%d / %d", pos, total)),
		badgeStyle.Render(fmt.Sprintf("%.2f×", m.session.Rate())),
	}
	return strings.Join(segments, "  ")
}

func (m *Model) renderProgress() string {
	pct := m.session.Progress()
	label := footerStyle.Render(fmt.Sprintf(" %d%%", pct))
	if m.width == 0 {
		return fmt.Sprintf("Progress %d%%", pct)
	}
	return m.progress.ViewAs(float64(pct)/100) + label
}

func (m *Model) renderAttempt() string {
	attempt, ok := m.session.LastAttempt()
	if !ok {
		return ""
	}
	verdict := failStyle.Render(fmt.Sprintf("%d%%", attempt.Percent()))
	if attempt.Success() {
		verdict = successStyle.Render(fmt.Sprintf("%d%%", attempt.Percent()))
	}
	heard := attempt.Transcript
	if heard == "" {
		heard = "…"
	}
	return fmt.Sprintf("Heard: %s  Score %s", infoStyle.Render(heard), verdict)
}

func (m *Model) renderActivity() string {
	switch {
	case m.session.Recording():
		return m.spinner.View() + " Listening... press r to stop"
	case m.session.Speaking():
		return m.spinner.View() + " Speaking... press space to stop"
	default:
		return ""
	}
}

func (m *Model) renderTally() string {
	tally := m.session.Tally()
	if tally.Attempts == 0 {
		return ""
	}
	return footerStyle.Render(fmt.Sprintf("Correct %d · Attempts %d · Accuracy %d%%",
		tally.Successes, tally.Attempts, tally.SuccessRate()))
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return infoStyle.Render(m.status)
}

func modeLabel(mode segment.Mode) string {
	switch mode {
	case segment.Line:
		return "Lines"
	case segment.Paragraph:
		return "Paragraphs"
	default:
		return "Full text"
	}
}
