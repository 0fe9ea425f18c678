// Package events carries operator notices out of the request path.
package events

import (
	"context"
	"log/slog"
)

// Notice kinds
const (
	KindInfo  = "info"
	KindError = "error"
)

type Notice struct {
	Kind     string
	Workflow string
	Text     string
}

// Notifier receives notices. Implementations must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Multi fans a notice out to every non-nil notifier.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, x := range m {
		if x != nil {
			x.Notify(ctx, n)
		}
	}
}

// Log writes notices to a structured logger.
func Log(log *slog.Logger) Notifier {
	return NotifierFunc(func(ctx context.Context, n Notice) {
		level := slog.LevelInfo
		if n.Kind == KindError {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "notice", "workflow", n.Workflow, "text", n.Text)
	})
}

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(context.Context, Notice) {})
