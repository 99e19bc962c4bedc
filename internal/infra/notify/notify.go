// Package notify provides the default domain.Notifier implementation.
// Message rendering and real delivery belong to an external collaborator;
// this logger-backed notifier records what would have been sent.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/domain"
)

// LogNotifier logs every notification instead of delivering it.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a notifier that writes to the given logger.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Send records the notification and reports success.
func (n *LogNotifier) Send(ctx context.Context, recipient string, kind domain.NotificationKind, data map[string]any) error {
	n.log.Info().
		Str("recipient", recipient).
		Str("template", string(kind)).
		Fields(data).
		Msg("notification dispatched")
	return nil
}

var _ domain.Notifier = (*LogNotifier)(nil)
