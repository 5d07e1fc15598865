// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings resolved from flags and the config file.
type Config struct {
	Mode       string  `flag:"mode" validate:"required,oneof=full paragraph para line"`
	Lang       string  `flag:"lang" validate:"required,bcp47_language_tag"`
	Rate       float64 `flag:"rate" validate:"gte=0.5,lte=2,rate_step"`
	Watch      bool    `flag:"watch"`
	TTSCommand string  `flag:"tts-cmd"`
	STTCommand string  `flag:"stt-cmd"`
	LogLevel   string  `flag:"log-level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFile    string  `flag:"log-file"`
}

// AttemptRecord is one scored attempt in the journal.
type AttemptRecord struct {
	ID           int64
	SessionID    string
	Mode         string
	SegmentIndex int
	Expected     string
	Transcript   string
	Score        int
	Success      bool
	CreatedAt    time.Time
}

// SegmentSummary aggregates the attempts made on one segment.
type SegmentSummary struct {
	Mode         string
	SegmentIndex int
	Expected     string
	Attempts     int
	Successes    int
	BestScore    int
	LastScore    int
}
