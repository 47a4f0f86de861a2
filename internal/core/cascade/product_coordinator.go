// Package cascade contains the coordinators that react to relayed deletion
// events. Each coordinator performs a local bulk delete and, where downstream
// cleanup depends on it, fans out follow-up events. Handlers are idempotent:
// a redelivered event finds an empty set and stops.
package cascade

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/buy01/marketplace-system/internal/api/metrics"
	"github.com/buy01/marketplace-system/internal/core/domain"
	"github.com/buy01/marketplace-system/internal/core/ports"
)

// ProductCascadeGroup is the consumer group name for the product coordinator.
const ProductCascadeGroup = "product-cascade"

// DedupChecker abstracts the best-effort duplicate marker (Redis). A failing
// checker never blocks processing; idempotency is ultimately guaranteed by the
// empty-set short-circuit in the bulk deletes.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, kind, payloadID string, ts time.Time) (bool, error)
	Mark(ctx context.Context, kind, payloadID string, ts time.Time) error
}

// ProductDeleter is the slice of the product service the coordinator needs.
type ProductDeleter interface {
	DeleteAllByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// ProductCoordinator consumes user-deleted events, removes the user's
// products, and emits one product-deleted event per removed product so the
// media coordinator can clean up attachments.
type ProductCoordinator struct {
	products ProductDeleter
	relay    ports.EventPublisher
	dedup    DedupChecker
	logger   zerolog.Logger
}

func NewProductCoordinator(products ProductDeleter, relay ports.EventPublisher, dedup DedupChecker, logger zerolog.Logger) *ProductCoordinator {
	return &ProductCoordinator{products: products, relay: relay, dedup: dedup, logger: logger}
}

// Register subscribes the coordinator on the relay.
func (c *ProductCoordinator) Register(relay ports.EventRelay) {
	relay.Subscribe(domain.EventUserDeleted, ProductCascadeGroup, c.HandleUserDeleted)
}

// HandleUserDeleted is the consumer entry point. A returned error nacks the
// event for redelivery; emit failures after the delete committed do not.
func (c *ProductCoordinator) HandleUserDeleted(ctx context.Context, event domain.CascadeEvent) error {
	start := time.Now()

	if c.skipDuplicate(ctx, event) {
		return nil
	}

	deletedIDs, err := c.products.DeleteAllByOwner(ctx, event.PayloadID)
	if err != nil {
		metrics.CascadeEventsErrorsTotal.WithLabelValues(string(event.Kind), ProductCascadeGroup).Inc()
		return err
	}

	c.mark(ctx, event)

	// Fan out one event per product rather than a batch: downstream media
	// cleanup is keyed per product id.
	for _, id := range deletedIDs {
		downstream := domain.NewCascadeEvent(domain.EventProductDeleted, id)
		if err := c.relay.Publish(ctx, downstream); err != nil {
			// Local delete already committed; there is no rollback and no
			// retry path for this emit. See cascade_emit_failures_total.
			metrics.CascadeEmitFailuresTotal.WithLabelValues(string(domain.EventProductDeleted)).Inc()
			c.logger.Error().Err(err).
				Str("user_id", event.PayloadID).
				Str("product_id", id).
				Msg("failed to emit product-deleted after local delete")
		}
	}

	metrics.CascadeEventsProcessedTotal.WithLabelValues(string(event.Kind), ProductCascadeGroup).Inc()
	metrics.CascadeProcessingDuration.WithLabelValues(string(event.Kind)).Observe(time.Since(start).Seconds())

	if len(deletedIDs) > 0 {
		c.logger.Info().
			Str("user_id", event.PayloadID).
			Int("products_deleted", len(deletedIDs)).
			Msg("user-deleted cascade processed")
	}
	return nil
}

func (c *ProductCoordinator) skipDuplicate(ctx context.Context, event domain.CascadeEvent) bool {
	if c.dedup == nil {
		return false
	}
	isDup, err := c.dedup.IsDuplicate(ctx, string(event.Kind)+":"+ProductCascadeGroup, event.PayloadID, event.EmittedAt)
	if err != nil {
		c.logger.Warn().Err(err).Str("payload_id", event.PayloadID).Msg("dedup check failed, processing anyway")
		return false
	}
	if isDup {
		metrics.CascadeDedupTotal.WithLabelValues("hit").Inc()
		c.logger.Debug().Str("payload_id", event.PayloadID).Msg("duplicate cascade event skipped")
		return true
	}
	metrics.CascadeDedupTotal.WithLabelValues("miss").Inc()
	return false
}

func (c *ProductCoordinator) mark(ctx context.Context, event domain.CascadeEvent) {
	if c.dedup == nil {
		return
	}
	if err := c.dedup.Mark(ctx, string(event.Kind)+":"+ProductCascadeGroup, event.PayloadID, event.EmittedAt); err != nil {
		c.logger.Warn().Err(err).Str("payload_id", event.PayloadID).Msg("failed to set dedup marker")
	}
}
