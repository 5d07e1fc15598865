// Package session holds the practice state machine for one studied text.
//
// A Controller is either Empty or Loaded. Playback and recording are
// independent flags that can only be raised while Loaded. The controller is
// not safe for concurrent use; the terminal update loop is its only caller,
// and speech results come back to it as messages carrying the token that
// was handed out when the operation began.
package session

import (
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
	"github.com/verte-zerg/memospeak/internal/score"
	"github.com/verte-zerg/memospeak/internal/segment"
	"github.com/verte-zerg/memospeak/internal/speech"
)

// State is the user-visible session state.
type State int

const (
	// StateEmpty means no text is loaded.
	StateEmpty State = iota
	// StateLoaded means a text is loaded and segments can be navigated.
	StateLoaded
)

// String returns the state name.
func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "empty"
}

var (
	// ErrNotLoaded is returned by operations that need a loaded text.
	ErrNotLoaded = errors.New("no text loaded")
	// ErrNoSegment is returned when the current segment is empty.
	ErrNoSegment = errors.New("nothing to practice")
	// ErrAttemptInFlight is returned when an attempt is already recording.
	ErrAttemptInFlight = errors.New("already recording")
	// ErrPlaybackInFlight is returned when a segment is already being read.
	ErrPlaybackInFlight = errors.New("already speaking")
	// ErrStaleAttempt is returned for results of an attempt that was stopped
	// or superseded.
	ErrStaleAttempt = errors.New("stale attempt result")
)

// Token identifies one playback or recording run.
type Token uint64

// Tally counts practice attempts since the text was loaded.
type Tally struct {
	Successes int
	Attempts  int
}

// SuccessRate returns round(successes/attempts*100), or 0 without attempts.
func (t Tally) SuccessRate() int {
	if t.Attempts == 0 {
		return 0
	}
	return int(math.Round(float64(t.Successes) / float64(t.Attempts) * 100))
}

// Attempt is the outcome of the last completed recognition.
type Attempt struct {
	SegmentIndex int
	Expected     string
	Transcript   string
	Result       score.Result
}

// Percent returns the match percentage.
func (a Attempt) Percent() int {
	return a.Result.Percent
}

// Success reports whether the attempt reached score.SuccessThreshold.
func (a Attempt) Success() bool {
	return a.Result.Success()
}

// Options configures a Controller.
type Options struct {
	Mode segment.Mode
	Lang string
	Rate float64
}

// Controller is the session state machine.
type Controller struct {
	state     State
	text      string
	mode      segment.Mode
	segments  []string
	cursor    int
	tally     Tally
	last      *Attempt
	sessionID string

	speaking      bool
	recording     bool
	playbackToken Token
	attemptToken  Token

	lang   string
	rate   float64
	scorer *score.Scorer
	newID  func() string
}

// New returns an Empty controller.
func New(opts Options) *Controller {
	rate := opts.Rate
	if rate == 0 {
		rate = speech.DefaultRate
	}
	return &Controller{
		mode:   opts.Mode,
		lang:   opts.Lang,
		rate:   speech.ClampRate(rate),
		scorer: score.ForLang(opts.Lang),
		newID:  uuid.NewString,
	}
}

// Load commits text as the working text. Blank text is rejected and leaves
// the controller unchanged. Loading resets the cursor, the tally and the
// last attempt, stops any in-flight speech, and starts a new session id.
func (c *Controller) Load(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.Validation("text is empty")
	}
	c.stopAll()
	c.state = StateLoaded
	c.text = text
	c.segments = segment.Split(text, c.mode)
	c.cursor = 0
	c.tally = Tally{}
	c.last = nil
	c.sessionID = c.newID()
	return nil
}

// Reset returns to Empty, discarding the text and the tally.
func (c *Controller) Reset() {
	c.stopAll()
	c.state = StateEmpty
	c.text = ""
	c.segments = nil
	c.cursor = 0
	c.tally = Tally{}
	c.last = nil
	c.sessionID = ""
}

func (c *Controller) stopAll() {
	if c.speaking {
		c.speaking = false
		c.playbackToken++
	}
	if c.recording {
		c.recording = false
		c.attemptToken++
	}
}

// SetMode selects the segmentation mode. While Loaded it re-derives the
// segments, moves the cursor to the first segment and clears the last
// attempt; the tally is kept. Playback of the old segment is stopped. It is
// refused while recording.
func (c *Controller) SetMode(mode segment.Mode) bool {
	if c.recording {
		return false
	}
	c.StopPlayback()
	c.mode = mode
	if c.state != StateLoaded {
		return true
	}
	c.segments = segment.Split(c.text, mode)
	c.cursor = 0
	c.last = nil
	return true
}

// Next moves to the following segment, staying put at the last one. It
// reports whether the cursor moved. The last attempt is cleared either way.
// It is refused while recording.
func (c *Controller) Next() bool {
	if c.state != StateLoaded || c.recording {
		return false
	}
	c.last = nil
	if c.cursor >= len(c.segments)-1 {
		return false
	}
	c.cursor++
	return true
}

// Previous moves to the preceding segment, staying put at the first one. It
// reports whether the cursor moved. The last attempt is cleared either way.
// It is refused while recording.
func (c *Controller) Previous() bool {
	if c.state != StateLoaded || c.recording {
		return false
	}
	c.last = nil
	if c.cursor == 0 {
		return false
	}
	c.cursor--
	return true
}

// BeginPlayback marks the current segment as being read aloud.
func (c *Controller) BeginPlayback() (Token, error) {
	if err := c.checkPracticable(); err != nil {
		return 0, err
	}
	if c.speaking {
		return 0, ErrPlaybackInFlight
	}
	c.speaking = true
	c.playbackToken++
	return c.playbackToken, nil
}

// StopPlayback clears the speaking flag; a later EndPlayback for the stopped
// run is ignored.
func (c *Controller) StopPlayback() {
	if !c.speaking {
		return
	}
	c.speaking = false
	c.playbackToken++
}

// EndPlayback records that playback for token finished. It reports whether
// the token was current.
func (c *Controller) EndPlayback(token Token) bool {
	if !c.speaking || token != c.playbackToken {
		return false
	}
	c.speaking = false
	return true
}

// BeginAttempt starts recording an attempt for the current segment. Only one
// attempt may be in flight.
func (c *Controller) BeginAttempt() (Token, error) {
	if err := c.checkPracticable(); err != nil {
		return 0, err
	}
	if c.recording {
		return 0, ErrAttemptInFlight
	}
	c.recording = true
	c.attemptToken++
	return c.attemptToken, nil
}

// AbortAttempt stops the in-flight attempt without counting it.
func (c *Controller) AbortAttempt() {
	if !c.recording {
		return
	}
	c.recording = false
	c.attemptToken++
}

// CompleteAttempt scores transcript against the current segment, counts the
// attempt and stores it as the last attempt.
func (c *Controller) CompleteAttempt(token Token, transcript string) (Attempt, error) {
	if !c.recording || token != c.attemptToken {
		return Attempt{}, ErrStaleAttempt
	}
	c.recording = false
	expected := c.Current()
	attempt := Attempt{
		SegmentIndex: c.cursor,
		Expected:     expected,
		Transcript:   transcript,
		Result:       c.scorer.Compare(expected, transcript),
	}
	c.tally.Attempts++
	if attempt.Success() {
		c.tally.Successes++
	}
	c.last = &attempt
	return attempt, nil
}

// FailAttempt ends the in-flight attempt after a recognition error. The
// attempt is not counted.
func (c *Controller) FailAttempt(token Token) error {
	if !c.recording || token != c.attemptToken {
		return ErrStaleAttempt
	}
	c.recording = false
	return nil
}

func (c *Controller) checkPracticable() error {
	if c.state != StateLoaded {
		return ErrNotLoaded
	}
	if len(c.segments) == 0 {
		return ErrNoSegment
	}
	return nil
}

// SetRate sets the playback rate. Rates outside [0.5, 2] or off the 0.25
// grid are rejected.
func (c *Controller) SetRate(rate float64) error {
	if rate < speech.MinRate || rate > speech.MaxRate {
		return apperrors.Validationf("rate must be between %.2f and %.2f", speech.MinRate, speech.MaxRate)
	}
	if math.Abs(speech.ClampRate(rate)-rate) > 1e-9 {
		return apperrors.Validationf("rate must be a multiple of %.2f", speech.RateStep)
	}
	c.rate = rate
	return nil
}

// StepRate moves the rate by delta steps, clamped to the supported range.
func (c *Controller) StepRate(delta int) float64 {
	c.rate = speech.ClampRate(c.rate + float64(delta)*speech.RateStep)
	return c.rate
}

// State returns the session state.
func (c *Controller) State() State { return c.state }

// Text returns the working text.
func (c *Controller) Text() string { return c.text }

// Mode returns the segmentation mode.
func (c *Controller) Mode() segment.Mode { return c.mode }

// Lang returns the practice language tag.
func (c *Controller) Lang() string { return c.lang }

// Rate returns the playback rate.
func (c *Controller) Rate() float64 { return c.rate }

// SessionID identifies the current load; empty while Empty.
func (c *Controller) SessionID() string { return c.sessionID }

// Speaking reports whether playback is in progress.
func (c *Controller) Speaking() bool { return c.speaking }

// Recording reports whether an attempt is in flight.
func (c *Controller) Recording() bool { return c.recording }

// Tally returns the attempt counters.
func (c *Controller) Tally() Tally { return c.tally }

// Cursor returns the current segment index.
func (c *Controller) Cursor() int { return c.cursor }

// Segments returns a copy of the segment sequence.
func (c *Controller) Segments() []string {
	out := make([]string, len(c.segments))
	copy(out, c.segments)
	return out
}

// Current returns the current segment, or "" when there is none.
func (c *Controller) Current() string {
	if c.cursor < 0 || c.cursor >= len(c.segments) {
		return ""
	}
	return c.segments[c.cursor]
}

// LastAttempt returns the last attempt since the cursor last moved.
func (c *Controller) LastAttempt() (Attempt, bool) {
	if c.last == nil {
		return Attempt{}, false
	}
	return *c.last, true
}

// Position returns the 1-based index of the current segment and the count.
func (c *Controller) Position() (int, int) {
	if len(c.segments) == 0 {
		return 0, 0
	}
	return c.cursor + 1, len(c.segments)
}

// Progress returns round((cursor+1)/count*100), or 0 without segments.
func (c *Controller) Progress() int {
	pos, total := c.Position()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(pos) / float64(total) * 100))
}
