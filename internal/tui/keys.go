package tui

import "github.com/charmbracelet/bubbles/key"

type practiceKeys struct {
	Prev   key.Binding
	Next   key.Binding
	Play   key.Binding
	Record key.Binding
	Mode   key.Binding
	Line   key.Binding
	Para   key.Binding
	Full   key.Binding
	Faster key.Binding
	Slower key.Binding
	New    key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newPracticeKeys() practiceKeys {
	return practiceKeys{
		Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Play:   key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "listen")),
		Record: key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "repeat aloud")),
		Mode:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "mode")),
		Line:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "lines")),
		Para:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "paragraphs")),
		Full:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "full text")),
		Faster: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new text")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k practiceKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Record, k.Prev, k.Next, k.Mode, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k practiceKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Record, k.Prev, k.Next},
		{k.Mode, k.Line, k.Para, k.Full},
		{k.Faster, k.Slower, k.New},
		{k.Help, k.Quit},
	}
}

type entryKeys struct {
	Load key.Binding
	Quit key.Binding
}

func newEntryKeys() entryKeys {
	return entryKeys{
		Load: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "start practice")),
		Quit: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k entryKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Load, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k entryKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
