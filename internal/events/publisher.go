package events

import (
	"context"
	"log/slog"
)

type Event interface {
	EventName() string
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// LogPublisher writes events to the structured log as an audit trail.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, e Event) {
	l := p.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "domain event", "event", e.EventName(), "payload", e)
}

type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
