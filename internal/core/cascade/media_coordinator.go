package cascade

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/buy01/marketplace-system/internal/api/metrics"
	"github.com/buy01/marketplace-system/internal/core/domain"
	"github.com/buy01/marketplace-system/internal/core/ports"
)

// MediaCascadeGroup is the consumer group name for the media coordinator.
const MediaCascadeGroup = "media-cascade"

// MediaDeleter is the slice of the media service the coordinator needs.
type MediaDeleter interface {
	DeleteAllByOwner(ctx context.Context, ownerID string) error
	DeleteAllByProduct(ctx context.Context, productID string) error
}

// MediaCoordinator consumes both deletion kinds: user-deleted covers media the
// user owns directly (including unattached uploads), product-deleted covers
// media attached to a removed product. Both paths are terminal; no further
// events are emitted.
type MediaCoordinator struct {
	media  MediaDeleter
	logger zerolog.Logger
}

func NewMediaCoordinator(media MediaDeleter, logger zerolog.Logger) *MediaCoordinator {
	return &MediaCoordinator{media: media, logger: logger}
}

// Register subscribes the coordinator to both topics on the relay.
func (c *MediaCoordinator) Register(relay ports.EventRelay) {
	relay.Subscribe(domain.EventUserDeleted, MediaCascadeGroup, c.HandleUserDeleted)
	relay.Subscribe(domain.EventProductDeleted, MediaCascadeGroup, c.HandleProductDeleted)
}

func (c *MediaCoordinator) HandleUserDeleted(ctx context.Context, event domain.CascadeEvent) error {
	return c.handle(ctx, event, func() error {
		return c.media.DeleteAllByOwner(ctx, event.PayloadID)
	})
}

func (c *MediaCoordinator) HandleProductDeleted(ctx context.Context, event domain.CascadeEvent) error {
	return c.handle(ctx, event, func() error {
		return c.media.DeleteAllByProduct(ctx, event.PayloadID)
	})
}

func (c *MediaCoordinator) handle(ctx context.Context, event domain.CascadeEvent, deleteFn func() error) error {
	start := time.Now()

	if err := deleteFn(); err != nil {
		metrics.CascadeEventsErrorsTotal.WithLabelValues(string(event.Kind), MediaCascadeGroup).Inc()
		c.logger.Warn().Err(err).
			Str("kind", string(event.Kind)).
			Str("payload_id", event.PayloadID).
			Msg("media cascade delete failed, nacking for redelivery")
		return err
	}

	metrics.CascadeEventsProcessedTotal.WithLabelValues(string(event.Kind), MediaCascadeGroup).Inc()
	metrics.CascadeProcessingDuration.WithLabelValues(string(event.Kind)).Observe(time.Since(start).Seconds())
	return nil
}
