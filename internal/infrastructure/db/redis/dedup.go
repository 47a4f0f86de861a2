package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker provides best-effort duplicate detection for cascade events,
// backed by Redis. Key format: cascade:<scope>:<payload_id>:<unix_timestamp>,
// where scope is kind plus consumer group so independent consumers do not
// shadow each other's markers.
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact event has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, scope, payloadID string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(scope, payloadID, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this event has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, scope, payloadID string, ts time.Time) error {
	return d.client.Set(ctx, d.key(scope, payloadID, ts), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(scope, payloadID string, ts time.Time) string {
	return fmt.Sprintf("cascade:%s:%s:%d", scope, payloadID, ts.Unix())
}
