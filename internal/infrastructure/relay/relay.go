// Package relay provides an in-process, at-least-once, per-key-ordered
// pub/sub channel with one topic per cascade event kind. It models the broker
// contract the coordinators are written against: a consumer group sees events
// for the same key in publish order, an erroring handler is redelivered the
// event, and nothing is acknowledged on shutdown mid-flight.
package relay

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/buy01/marketplace-system/internal/api/metrics"
	"github.com/buy01/marketplace-system/internal/core/domain"
	"github.com/buy01/marketplace-system/internal/core/ports"
)

const (
	defaultShards       = 8
	channelBuffer       = 256
	defaultRetryWait    = 100 * time.Millisecond
	defaultMaxRetryWait = 5 * time.Second
)

// Options tune relay behaviour. Zero values fall back to defaults.
type Options struct {
	// Shards is the number of worker channels per consumer group. Events are
	// routed by fnv hash of their payload id, so a given key always lands on
	// the same worker and stays ordered.
	Shards int
	// RetryWait is the initial pause between redeliveries of the same event.
	RetryWait time.Duration
	// MaxRetryWait caps the backoff between redeliveries. A nacked event is
	// redelivered until its handler succeeds; only cancellation stops it.
	MaxRetryWait time.Duration
}

type subscription struct {
	group   string
	handler ports.CascadeHandler
	shards  []chan domain.CascadeEvent
}

// Relay implements ports.EventRelay.
type Relay struct {
	mu      sync.RWMutex
	subs    map[string][]*subscription // topic -> one subscription per group
	opts    Options
	logger  zerolog.Logger
	wg      sync.WaitGroup
	started bool
}

func New(opts Options, logger zerolog.Logger) *Relay {
	if opts.Shards <= 0 {
		opts.Shards = defaultShards
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}
	if opts.MaxRetryWait <= 0 {
		opts.MaxRetryWait = defaultMaxRetryWait
	}
	return &Relay{
		subs:   make(map[string][]*subscription),
		opts:   opts,
		logger: logger,
	}
}

// Subscribe registers a handler for the kind's topic under a consumer group.
// All subscriptions must be in place before Start.
func (r *Relay) Subscribe(kind domain.EventKind, group string, handler ports.CascadeHandler) {
	sub := &subscription{
		group:   group,
		handler: handler,
		shards:  make([]chan domain.CascadeEvent, r.opts.Shards),
	}
	for i := range sub.shards {
		sub.shards[i] = make(chan domain.CascadeEvent, channelBuffer)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[kind.Topic()] = append(r.subs[kind.Topic()], sub)
}

// Start launches the consumer workers. Workers stop consuming when ctx is
// cancelled; an event a worker has already dequeued but not finished is not
// acknowledged, mirroring broker semantics where it would be redelivered to a
// successor consumer.
func (r *Relay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	for topic, subs := range r.subs {
		for _, sub := range subs {
			for i, ch := range sub.shards {
				r.wg.Add(1)
				go r.runWorker(ctx, topic, sub, i, ch)
			}
		}
	}
}

// Publish appends the event to its kind's topic. Delivery to each subscribed
// group is asynchronous; publish only fails when the relay is shutting down or
// a shard buffer stays full until the caller's context expires.
func (r *Relay) Publish(ctx context.Context, event domain.CascadeEvent) error {
	r.mu.RLock()
	subs := r.subs[event.Kind.Topic()]
	r.mu.RUnlock()

	for _, sub := range subs {
		ch := sub.shards[shardIndex(event.PayloadID, len(sub.shards))]
		select {
		case ch <- event:
			metrics.RelayQueueDepth.WithLabelValues(event.Kind.Topic()).Inc()
		case <-ctx.Done():
			return fmt.Errorf("publish %s/%s: %w", event.Kind, event.PayloadID, ctx.Err())
		}
	}

	r.logger.Debug().
		Str("topic", event.Kind.Topic()).
		Str("payload_id", event.PayloadID).
		Int("groups", len(subs)).
		Msg("event published")
	return nil
}

// Wait blocks until all workers have exited. Call after cancelling the context
// passed to Start.
func (r *Relay) Wait() {
	r.wg.Wait()
}

func shardIndex(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % n
}

func (r *Relay) runWorker(ctx context.Context, topic string, sub *subscription, id int, ch <-chan domain.CascadeEvent) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			metrics.RelayQueueDepth.WithLabelValues(topic).Dec()
			r.deliver(ctx, topic, sub, id, event)
		}
	}
}

// deliver invokes the handler, redelivering on error until it succeeds, with
// exponential backoff capped at MaxRetryWait. The worker does not move to the
// next event for this shard until the current one is acknowledged, preserving
// per-key order. Cancellation is the only way an event is left unfinished.
func (r *Relay) deliver(ctx context.Context, topic string, sub *subscription, workerID int, event domain.CascadeEvent) {
	wait := r.opts.RetryWait
	for attempt := 1; ; attempt++ {
		err := sub.handler(ctx, event)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			// Shutdown mid-flight: leave the event unacknowledged.
			return
		}

		r.logger.Warn().Err(err).
			Str("topic", topic).
			Str("group", sub.group).
			Str("payload_id", event.PayloadID).
			Int("worker_id", workerID).
			Int("attempt", attempt).
			Msg("handler nacked event, will redeliver")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if wait < r.opts.MaxRetryWait {
			wait *= 2
			if wait > r.opts.MaxRetryWait {
				wait = r.opts.MaxRetryWait
			}
		}
	}
}
