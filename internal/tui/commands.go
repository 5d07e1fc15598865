package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/memospeak/internal/session"
	"github.com/verte-zerg/memospeak/internal/speech"
	"github.com/verte-zerg/memospeak/internal/textsrc"
)

type playbackDoneMsg struct {
	token session.Token
	err   error
}

type recognitionMsg struct {
	token      session.Token
	transcript string
	err        error
}

type reloadMsg textsrc.Reload

type reloadClosedMsg struct{}

func speakCmd(ctx context.Context, out speech.Output, token session.Token, text, lang string, rate float64) tea.Cmd {
	return func() tea.Msg {
		err := out.Speak(ctx, text, lang, rate)
		return playbackDoneMsg{token: token, err: err}
	}
}

func listenCmd(ctx context.Context, in speech.Input, token session.Token, lang string) tea.Cmd {
	return func() tea.Msg {
		transcript, err := in.Listen(ctx, lang)
		return recognitionMsg{token: token, transcript: transcript, err: err}
	}
}

func waitForReload(ch <-chan textsrc.Reload) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return reloadClosedMsg{}
		}
		return reloadMsg(r)
	}
}
