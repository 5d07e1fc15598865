// Package speech defines the synthesis and recognition ports and their
// command-line implementations.
package speech

import "context"

// Output reads text aloud.
type Output interface {
	// Speak blocks until playback finishes, fails, or ctx is cancelled.
	// Cancellation stops playback and returns ctx.Err().
	Speak(ctx context.Context, text, lang string, rate float64) error
	// Available reports an unsupported-capability error when the engine
	// cannot run on this host.
	Available() error
}

// Input recognizes a single spoken utterance.
type Input interface {
	// Listen blocks until exactly one transcript or error is produced, or
	// ctx is cancelled. No interim results are reported.
	Listen(ctx context.Context, lang string) (string, error)
	// Available reports an unsupported-capability error when the engine
	// cannot run on this host.
	Available() error
}

const (
	// MinRate is the slowest playback rate.
	MinRate = 0.5
	// MaxRate is the fastest playback rate.
	MaxRate = 2.0
	// RateStep is the increment between supported rates.
	RateStep = 0.25
	// DefaultRate is normal speaking speed.
	DefaultRate = 1.0
)

// ClampRate snaps rate to the nearest supported step within bounds.
func ClampRate(rate float64) float64 {
	if rate < MinRate {
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	steps := (rate - MinRate) / RateStep
	return MinRate + float64(int(steps+0.5))*RateStep
}
