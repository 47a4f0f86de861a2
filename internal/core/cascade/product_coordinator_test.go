package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubProductDeleter struct {
	ids   []string
	err   error
	calls int
}

func (d *stubProductDeleter) DeleteAllByOwner(_ context.Context, _ string) ([]string, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.ids, nil
}

type stubPublisher struct {
	published  []domain.CascadeEvent
	publishErr error
}

func (p *stubPublisher) Publish(_ context.Context, e domain.CascadeEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.published = append(p.published, e)
	return nil
}

type stubDedup struct {
	duplicate bool
	checkErr  error
	markCalls int
}

func (d *stubDedup) IsDuplicate(_ context.Context, _, _ string, _ time.Time) (bool, error) {
	if d.checkErr != nil {
		return false, d.checkErr
	}
	return d.duplicate, nil
}

func (d *stubDedup) Mark(_ context.Context, _, _ string, _ time.Time) error {
	d.markCalls++
	return nil
}

func userDeletedEvent(userID string) domain.CascadeEvent {
	return domain.NewCascadeEvent(domain.EventUserDeleted, userID)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHandleUserDeleted_FansOutPerProduct(t *testing.T) {
	products := &stubProductDeleter{ids: []string{"prod1", "prod2"}}
	pub := &stubPublisher{}
	coord := NewProductCoordinator(products, pub, nil, zerolog.Nop())

	if err := coord.HandleUserDeleted(context.Background(), userDeletedEvent("user123")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(pub.published) != 2 {
		t.Fatalf("expected 2 downstream events, got %d", len(pub.published))
	}
	for i, want := range []string{"prod1", "prod2"} {
		e := pub.published[i]
		if e.Kind != domain.EventProductDeleted || e.PayloadID != want {
			t.Fatalf("event %d: got %+v", i, e)
		}
	}
}

func TestHandleUserDeleted_NoProductsNoEvents(t *testing.T) {
	products := &stubProductDeleter{}
	pub := &stubPublisher{}
	coord := NewProductCoordinator(products, pub, nil, zerolog.Nop())

	if err := coord.HandleUserDeleted(context.Background(), userDeletedEvent("user123")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("expected no downstream events, got %d", len(pub.published))
	}
}

func TestHandleUserDeleted_DuplicateSkipped(t *testing.T) {
	products := &stubProductDeleter{ids: []string{"prod1"}}
	pub := &stubPublisher{}
	coord := NewProductCoordinator(products, pub, &stubDedup{duplicate: true}, zerolog.Nop())

	if err := coord.HandleUserDeleted(context.Background(), userDeletedEvent("user123")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if products.calls != 0 {
		t.Fatalf("expected delete skipped on duplicate, got %d calls", products.calls)
	}
	if len(pub.published) != 0 {
		t.Fatalf("expected no downstream events, got %d", len(pub.published))
	}
}

func TestHandleUserDeleted_DedupFailureProcessesAnyway(t *testing.T) {
	products := &stubProductDeleter{ids: []string{"prod1"}}
	pub := &stubPublisher{}
	dedup := &stubDedup{checkErr: errors.New("redis down")}
	coord := NewProductCoordinator(products, pub, dedup, zerolog.Nop())

	if err := coord.HandleUserDeleted(context.Background(), userDeletedEvent("user123")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if products.calls != 1 {
		t.Fatalf("expected one delete despite dedup failure, got %d", products.calls)
	}
}

func TestHandleUserDeleted_DeleteFailureNacks(t *testing.T) {
	products := &stubProductDeleter{err: errors.New("storage unavailable")}
	pub := &stubPublisher{}
	dedup := &stubDedup{}
	coord := NewProductCoordinator(products, pub, dedup, zerolog.Nop())

	if err := coord.HandleUserDeleted(context.Background(), userDeletedEvent("user123")); err == nil {
		t.Fatalf("expected error for redelivery")
	}
	if len(pub.published) != 0 {
		t.Fatalf("expected no downstream events on failure, got %d", len(pub.published))
	}
	if dedup.markCalls != 0 {
		t.Fatalf("expected no dedup marker on failure, got %d", dedup.markCalls)
	}
}

func TestHandleUserDeleted_EmitFailureDoesNotNack(t *testing.T) {
	products := &stubProductDeleter{ids: []string{"prod1"}}
	pub := &stubPublisher{publishErr: errors.New("relay down")}
	coord := NewProductCoordinator(products, pub, nil, zerolog.Nop())

	// The local delete committed; redelivering would find an empty set and
	// never re-emit, so the handler must not nack.
	if err := coord.HandleUserDeleted(context.Background(), userDeletedEvent("user123")); err != nil {
		t.Fatalf("expected nil despite emit failure, got %v", err)
	}
}

func TestHandleUserDeleted_MarksAfterDelete(t *testing.T) {
	products := &stubProductDeleter{ids: []string{"prod1"}}
	dedup := &stubDedup{}
	coord := NewProductCoordinator(products, &stubPublisher{}, dedup, zerolog.Nop())

	if err := coord.HandleUserDeleted(context.Background(), userDeletedEvent("user123")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if dedup.markCalls != 1 {
		t.Fatalf("expected one dedup marker, got %d", dedup.markCalls)
	}
}
