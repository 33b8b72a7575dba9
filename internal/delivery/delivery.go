// Package delivery turns fired alerts into something the user actually sees.
// The substrate hands every fired alert to one Adapter; which one is a config
// choice.
package delivery

import (
	"context"
	"io"
	"log/slog"

	"solace/internal/alerts"
)

// Adapter delivers one fired alert. Implementations must be safe for
// concurrent use; a returned error means the alert was not shown (it is
// logged, never retried).
type Adapter interface {
	Deliver(ctx context.Context, alert alerts.PendingAlert) error
}

// LogAdapter writes alerts to the structured log. It is the default sink and
// the fallback when no other adapter is configured.
type LogAdapter struct {
	log *slog.Logger
}

func NewLogAdapter(log *slog.Logger) *LogAdapter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogAdapter{log: log}
}

func (a *LogAdapter) Deliver(_ context.Context, alert alerts.PendingAlert) error {
	a.log.Info("alert",
		slog.String("identifier", alert.Identifier),
		slog.String("title", alert.Content.Title),
		slog.String("body", alert.Content.Body),
		slog.String("category", string(alert.Content.Category)))
	return nil
}
