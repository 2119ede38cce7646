package messaging

import (
	"context"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
)

// AuditPublisher delivers transition audit events to an external stream.
// Publishing is best-effort relative to the entry mutation: the database
// audit row is the durable record, the stream is for downstream consumers.
type AuditPublisher interface {
	// PublishTransition emits one audit event.
	PublishTransition(ctx context.Context, record domain.TransitionRecord) error

	// Close releases the underlying producer.
	Close() error
}
