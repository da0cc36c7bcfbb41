package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/courier-im/courier/internal/domain"
	"github.com/courier-im/courier/internal/registry"
	"github.com/courier-im/courier/pkg/log"
)

type notificationDispatcher struct {
	registry registry.Registry
}

// NewNotificationDispatcher creates a dispatcher backed by the given
// connection registry.
func NewNotificationDispatcher(reg registry.Registry) Dispatcher {
	return &notificationDispatcher{registry: reg}
}

// Notify looks up the recipient's live connection and pushes the serialized
// message. Persistence has already succeeded by the time this runs; nothing
// here blocks, retries, or surfaces an error.
func (d *notificationDispatcher) Notify(ctx context.Context, msg *domain.Message) {
	l := log.Ctx(ctx)

	conn, ok := d.registry.Lookup(msg.RecipientID)
	if !ok {
		l.Debug().
			Uint(log.FieldMessageID, msg.ID).
			Uint(log.FieldRecipientID, msg.RecipientID).
			Msg("recipient offline, notification skipped")
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldMessageID, msg.ID).Msg("failed to serialize notification")
		return
	}

	if !conn.TrySend(data) {
		l.Debug().
			Uint(log.FieldMessageID, msg.ID).
			Uint(log.FieldRecipientID, msg.RecipientID).
			Msg("transport buffer full, notification dropped")
		return
	}

	l.Debug().
		Uint(log.FieldMessageID, msg.ID).
		Uint(log.FieldRecipientID, msg.RecipientID).
		Msg("notification delivered")
}
