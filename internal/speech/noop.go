package speech

import (
	"context"
	"log/slog"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
)

// Compile-time interface checks.
var (
	_ Output = (*NoOp)(nil)
	_ Input  = (*NoOp)(nil)
)

// NoOp is a speech port used when speech is disabled.
type NoOp struct {
	logger *slog.Logger
}

// NewNoOp creates a no-op speech port.
func NewNoOp(logger *slog.Logger) *NoOp {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoOp{logger: logger}
}

// Available always reports an unsupported capability.
func (n *NoOp) Available() error {
	return apperrors.Unsupportedf("speech is disabled")
}

// Speak does nothing and reports an unsupported capability.
func (n *NoOp) Speak(_ context.Context, text, _ string, _ float64) error {
	n.logger.Debug("speech no-op: would say", "text", text)
	return n.Available()
}

// Listen reports an unsupported capability.
func (n *NoOp) Listen(_ context.Context, _ string) (string, error) {
	return "", n.Available()
}
