package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
	"github.com/verte-zerg/memospeak/internal/segment"
)

const verse = "один два три\nчетыре пять\n\nшесть семь\nвосемь"

func newLoaded(t *testing.T, mode segment.Mode) *Controller {
	t.Helper()
	c := New(Options{Mode: mode, Lang: "ru-RU"})
	ids := 0
	c.newID = func() string {
		ids++
		return fmt.Sprintf("session-%d", ids)
	}
	require.NoError(t, c.Load(verse))
	return c
}

func attempt(t *testing.T, c *Controller, transcript string) Attempt {
	t.Helper()
	token, err := c.BeginAttempt()
	require.NoError(t, err)
	a, err := c.CompleteAttempt(token, transcript)
	require.NoError(t, err)
	return a
}

func TestNewIsEmpty(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, StateEmpty, c.State())
	assert.Empty(t, c.Segments())
	assert.Equal(t, "", c.Current())
	assert.Equal(t, 0, c.Progress())
	assert.InDelta(t, 1.0, c.Rate(), 1e-9)

	_, err := c.BeginAttempt()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = c.BeginPlayback()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.False(t, c.Next())
	assert.False(t, c.Previous())
}

func TestLoadRejectsBlank(t *testing.T) {
	c := New(Options{})
	err := c.Load(" \n\t ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, StateEmpty, c.State())
}

func TestLoadDerivesSegments(t *testing.T) {
	c := newLoaded(t, segment.Line)
	assert.Equal(t, StateLoaded, c.State())
	assert.Equal(t, []string{"один два три", "четыре пять", "шесть семь", "восемь"}, c.Segments())
	assert.Equal(t, "один два три", c.Current())
	assert.Equal(t, "session-1", c.SessionID())
	pos, total := c.Position()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 4, total)
	assert.Equal(t, 25, c.Progress())

	full := newLoaded(t, segment.Full)
	assert.Equal(t, []string{verse}, full.Segments())
	assert.Equal(t, 100, full.Progress())
}

func TestNavigationClamps(t *testing.T) {
	c := newLoaded(t, segment.Paragraph)
	require.Len(t, c.Segments(), 2)

	assert.False(t, c.Previous())
	assert.Equal(t, 0, c.Cursor())

	assert.True(t, c.Next())
	assert.Equal(t, 1, c.Cursor())
	assert.Equal(t, "шесть семь\nвосемь", c.Current())

	assert.False(t, c.Next())
	assert.Equal(t, 1, c.Cursor())

	assert.True(t, c.Previous())
	assert.Equal(t, 0, c.Cursor())
}

func TestNavigationClearsAttempt(t *testing.T) {
	c := newLoaded(t, segment.Line)
	attempt(t, c, "один два три")
	_, ok := c.LastAttempt()
	require.True(t, ok)

	c.Previous()
	_, ok = c.LastAttempt()
	assert.False(t, ok, "clamped move still clears the attempt")

	attempt(t, c, "один")
	c.Next()
	_, ok = c.LastAttempt()
	assert.False(t, ok)
	assert.Equal(t, 2, c.Tally().Attempts)
}

func TestAttemptScoringAndTally(t *testing.T) {
	c := newLoaded(t, segment.Line)

	a := attempt(t, c, "Один, два, три!")
	assert.Equal(t, 100, a.Percent())
	assert.True(t, a.Success())
	assert.Equal(t, 0, a.SegmentIndex)

	a = attempt(t, c, "один два четыре")
	assert.Equal(t, 67, a.Percent())
	assert.False(t, a.Success())

	a = attempt(t, c, "")
	assert.Equal(t, 0, a.Percent())

	last, ok := c.LastAttempt()
	require.True(t, ok)
	assert.Equal(t, "", last.Transcript)

	tally := c.Tally()
	assert.Equal(t, 3, tally.Attempts)
	assert.Equal(t, 1, tally.Successes)
	assert.Equal(t, 33, tally.SuccessRate())
}

func TestSuccessThresholdBoundary(t *testing.T) {
	c := New(Options{Mode: segment.Full})
	require.NoError(t, c.Load("a b c d e f g h i j"))

	a := attempt(t, c, "a b c d e f g x y z")
	assert.Equal(t, 70, a.Percent())
	assert.True(t, a.Success())

	a = attempt(t, c, "a b c d e f x x x x")
	assert.Equal(t, 60, a.Percent())
	assert.False(t, a.Success())
	assert.Equal(t, Tally{Successes: 1, Attempts: 2}, c.Tally())
}

func TestSuccessRate(t *testing.T) {
	cases := []struct {
		tally Tally
		want  int
	}{
		{Tally{}, 0},
		{Tally{Successes: 1, Attempts: 3}, 33},
		{Tally{Successes: 2, Attempts: 3}, 67},
		{Tally{Successes: 1, Attempts: 2}, 50},
		{Tally{Successes: 5, Attempts: 5}, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.tally.SuccessRate(), "%+v", tc.tally)
	}
}

func TestSingleAttemptInFlight(t *testing.T) {
	c := newLoaded(t, segment.Line)
	token, err := c.BeginAttempt()
	require.NoError(t, err)
	assert.True(t, c.Recording())

	_, err = c.BeginAttempt()
	assert.ErrorIs(t, err, ErrAttemptInFlight)

	assert.False(t, c.Next(), "navigation is disabled while recording")
	assert.False(t, c.SetMode(segment.Full))
	assert.Equal(t, segment.Line, c.Mode())

	_, err = c.CompleteAttempt(token, "один два три")
	require.NoError(t, err)
	assert.False(t, c.Recording())
	assert.True(t, c.Next())
}

func TestAbortedAttemptIsNotCounted(t *testing.T) {
	c := newLoaded(t, segment.Line)
	token, err := c.BeginAttempt()
	require.NoError(t, err)

	c.AbortAttempt()
	assert.False(t, c.Recording())

	_, err = c.CompleteAttempt(token, "один два три")
	assert.ErrorIs(t, err, ErrStaleAttempt)
	assert.Equal(t, Tally{}, c.Tally())

	next, err := c.BeginAttempt()
	require.NoError(t, err)
	assert.NotEqual(t, token, next)
	assert.ErrorIs(t, c.FailAttempt(token), ErrStaleAttempt)
	require.NoError(t, c.FailAttempt(next))
	assert.False(t, c.Recording())
	assert.Equal(t, 0, c.Tally().Attempts)
}

func TestPlaybackIsOrthogonalToRecording(t *testing.T) {
	c := newLoaded(t, segment.Line)
	play, err := c.BeginPlayback()
	require.NoError(t, err)
	_, err = c.BeginPlayback()
	assert.ErrorIs(t, err, ErrPlaybackInFlight)

	rec, err := c.BeginAttempt()
	require.NoError(t, err)
	assert.True(t, c.Speaking())
	assert.True(t, c.Recording())

	assert.True(t, c.EndPlayback(play))
	assert.False(t, c.Speaking())
	assert.True(t, c.Recording())
	require.NoError(t, c.FailAttempt(rec))
}

func TestStoppedPlaybackIgnoresLateEnd(t *testing.T) {
	c := newLoaded(t, segment.Line)
	first, err := c.BeginPlayback()
	require.NoError(t, err)
	c.StopPlayback()
	second, err := c.BeginPlayback()
	require.NoError(t, err)

	assert.False(t, c.EndPlayback(first))
	assert.True(t, c.Speaking())
	assert.True(t, c.EndPlayback(second))
	assert.False(t, c.Speaking())
}

func TestModeSwitchKeepsTally(t *testing.T) {
	c := newLoaded(t, segment.Line)
	attempt(t, c, "один два три")
	c.Next()
	c.Next()
	require.Equal(t, 2, c.Cursor())

	require.True(t, c.SetMode(segment.Paragraph))
	assert.Equal(t, 0, c.Cursor())
	assert.Len(t, c.Segments(), 2)
	assert.Equal(t, Tally{Successes: 1, Attempts: 1}, c.Tally())
	_, ok := c.LastAttempt()
	assert.False(t, ok)
}

func TestModeChangeStopsPlayback(t *testing.T) {
	c := newLoaded(t, segment.Line)
	token, err := c.BeginPlayback()
	require.NoError(t, err)

	require.True(t, c.SetMode(segment.Full))
	assert.False(t, c.Speaking())
	assert.False(t, c.EndPlayback(token), "late finish of the old segment is ignored")
}

func TestModeSetWhileEmptyAppliesOnLoad(t *testing.T) {
	c := New(Options{Mode: segment.Full})
	require.True(t, c.SetMode(segment.Line))
	require.NoError(t, c.Load(verse))
	assert.Len(t, c.Segments(), 4)
}

func TestLoadResetsTallyAndSpeech(t *testing.T) {
	c := newLoaded(t, segment.Line)
	attempt(t, c, "один два три")
	c.Next()
	token, err := c.BeginAttempt()
	require.NoError(t, err)
	_, err = c.BeginPlayback()
	require.NoError(t, err)

	require.NoError(t, c.Load("новый текст"))
	assert.Equal(t, "session-2", c.SessionID())
	assert.Equal(t, Tally{}, c.Tally())
	assert.Equal(t, 0, c.Cursor())
	assert.False(t, c.Recording())
	assert.False(t, c.Speaking())
	_, err = c.CompleteAttempt(token, "один два три")
	assert.ErrorIs(t, err, ErrStaleAttempt)
}

func TestReset(t *testing.T) {
	c := newLoaded(t, segment.Line)
	attempt(t, c, "один два три")
	c.Reset()
	assert.Equal(t, StateEmpty, c.State())
	assert.Equal(t, "", c.Text())
	assert.Empty(t, c.Segments())
	assert.Equal(t, Tally{}, c.Tally())
	assert.Equal(t, "", c.SessionID())
	assert.Equal(t, segment.Line, c.Mode())
}

func TestRate(t *testing.T) {
	c := New(Options{Rate: 1.5})
	assert.InDelta(t, 1.5, c.Rate(), 1e-9)

	require.NoError(t, c.SetRate(0.75))
	assert.ErrorIs(t, c.SetRate(0.8), apperrors.ErrValidation)
	assert.ErrorIs(t, c.SetRate(2.25), apperrors.ErrValidation)
	assert.InDelta(t, 0.75, c.Rate(), 1e-9)

	assert.InDelta(t, 1.0, c.StepRate(1), 1e-9)
	c.StepRate(10)
	assert.InDelta(t, 2.0, c.Rate(), 1e-9)
	c.StepRate(-10)
	assert.InDelta(t, 0.5, c.Rate(), 1e-9)
}
