package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes every event to the structured log. It is the default
// delivery channel when no external messaging integration is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, partyID string, eventKind string, payload map[string]string) error {
	attrs := []any{
		slog.String("party_id", partyID),
		slog.String("event", eventKind),
	}
	for k, v := range payload {
		attrs = append(attrs, slog.String(k, v))
	}
	slog.Info("notification dispatched", attrs...)
	return nil
}
