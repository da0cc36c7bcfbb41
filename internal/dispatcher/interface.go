package dispatcher

import (
	"context"

	"github.com/courier-im/courier/internal/domain"
)

// Dispatcher pushes persisted messages to the recipient's live connection.
type Dispatcher interface {
	// Notify is best-effort: an offline recipient or an unwritable
	// transport is a silent skip, never an error to the send path.
	Notify(ctx context.Context, msg *domain.Message)
}
