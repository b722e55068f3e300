package voice

import (
	"context"
	"log/slog"
)

// Synthesizer speaks text to a visitor. Implementations must not block the
// caller; utterances are fire-and-forget and may overlap.
type Synthesizer interface {
	Speak(ctx context.Context, visitorID, text string)
}

// LogSynthesizer writes utterances to the log. It stands in for speech
// output when no broker is configured.
type LogSynthesizer struct {
	logger *slog.Logger
}

// NewLogSynthesizer creates a LogSynthesizer.
func NewLogSynthesizer(logger *slog.Logger) *LogSynthesizer {
	return &LogSynthesizer{logger: logger}
}

func (s *LogSynthesizer) Speak(ctx context.Context, visitorID, text string) {
	s.logger.InfoContext(ctx, "speak",
		slog.String("visitor_id", visitorID),
		slog.String("text", text),
	)
}
