package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/db"
)

// LogNotifier writes emitted events to the structured log. It is the default
// event transport when nothing heavier is configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event db.DomainEvent) error {
	n.Logger.Info().
		Str("topic", event.Topic).
		Str("event_id", common.UUIDString(event.ID)).
		Str("aggregate_id", common.UUIDString(event.AggregateID)).
		RawJSON("payload", event.Payload).
		Msg("domain_event")
	return nil
}
