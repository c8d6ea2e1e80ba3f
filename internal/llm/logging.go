package llm

import (
	"context"
	"time"

	"lingobuddy/internal/observability"
)

// LoggingProvider is a decorator that logs every completion call.
type LoggingProvider struct {
	inner Provider
}

// WithLogging wraps a Provider with structured logging.
func WithLogging(p Provider) Provider {
	return &LoggingProvider{inner: p}
}

func (l *LoggingProvider) Name() string { return l.inner.Name() }

func (l *LoggingProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()
	reply, err := l.inner.Chat(ctx, messages)
	log := observability.LoggerFromContext(ctx)

	if err != nil {
		log.Error("completion failed",
			"provider", l.inner.Name(),
			"messages", len(messages),
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return "", err
	}

	log.Info("completion ok",
		"provider", l.inner.Name(),
		"messages", len(messages),
		"latency_ms", time.Since(start).Milliseconds(),
		"reply_chars", len(reply),
	)
	return reply, nil
}
