package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/realtime"
	"go.uber.org/zap"
)

// notifier publishes change events after a mutation has committed. A failed
// publish is logged and never fails the request that caused it.
type notifier struct {
	events realtime.Publisher
	logger *zap.Logger
}

func newNotifier(events realtime.Publisher, logger *zap.Logger) notifier {
	if events == nil {
		events = realtime.NopPublisher{}
	}
	return notifier{events: events, logger: logger}
}

func (n notifier) publish(ctx context.Context, typ realtime.EventType, tenantID uuid.UUID, projectID *uuid.UUID, entityID uuid.UUID) {
	ev := realtime.Event{
		Type:      typ,
		TenantID:  tenantID,
		ProjectID: projectID,
		EntityID:  entityID,
		At:        time.Now().UTC(),
	}
	if err := n.events.Publish(ctx, ev); err != nil {
		n.logger.Warn("failed to publish event",
			zap.String("type", string(typ)),
			zap.String("entity_id", entityID.String()),
			zap.Error(err),
		)
	}
}
