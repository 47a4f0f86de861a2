package cascade

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/buy01/marketplace-system/internal/core/auth"
	"github.com/buy01/marketplace-system/internal/core/domain"
	"github.com/buy01/marketplace-system/internal/core/service"
	"github.com/buy01/marketplace-system/internal/infrastructure/relay"
)

// The flow test wires real services and the real relay over in-memory stores
// and checks that deleting an account removes everything reachable from it:
// the user's products, the user's own media, and media other users attached to
// those products.

// ---------------------------------------------------------------------------
// In-memory stores (mutex-guarded: relay workers run concurrently)
// ---------------------------------------------------------------------------

type memUserStore struct {
	mu   sync.Mutex
	byID map[string]*domain.User
}

func (s *memUserStore) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := *u
	clone.ID = fmt.Sprintf("user%d", len(s.byID)+1)
	s.byID[clone.ID] = &clone
	return &clone, nil
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *memUserStore) Update(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *u
	s.byID[u.ID] = &clone
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.byID, id)
	return nil
}

type memProductStore struct {
	mu   sync.Mutex
	byID map[string]*domain.Product
}

func (s *memProductStore) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	clone.ID = fmt.Sprintf("prod%d", len(s.byID)+1)
	s.byID[clone.ID] = &clone
	return &clone, nil
}

func (s *memProductStore) FindByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *memProductStore) FindAll(_ context.Context) ([]*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range s.byID {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (s *memProductStore) FindByOwner(_ context.Context, ownerID string) ([]*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range s.byID {
		if p.OwnerID == ownerID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memProductStore) Update(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *p
	s.byID[p.ID] = &clone
	return nil
}

func (s *memProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *memProductStore) DeleteAllByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.byID, id)
	}
	return nil
}

func (s *memProductStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

type memMediaStore struct {
	mu   sync.Mutex
	byID map[string]*domain.Media
}

func (s *memMediaStore) Create(_ context.Context, m *domain.Media) (*domain.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *m
	clone.ID = fmt.Sprintf("media%d", len(s.byID)+1)
	s.byID[clone.ID] = &clone
	return &clone, nil
}

func (s *memMediaStore) FindByID(_ context.Context, id string) (*domain.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrMediaNotFound
	}
	clone := *m
	return &clone, nil
}

func (s *memMediaStore) FindByOwner(_ context.Context, ownerID string) ([]*domain.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Media{}
	for _, m := range s.byID {
		if m.OwnerID == ownerID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memMediaStore) FindByProduct(_ context.Context, productID string) ([]*domain.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Media{}
	for _, m := range s.byID {
		if m.ProductID == productID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memMediaStore) FindAllByIDs(_ context.Context, ids []string) ([]*domain.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Media{}
	for _, id := range ids {
		if m, ok := s.byID[id]; ok {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memMediaStore) Update(_ context.Context, m *domain.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[m.ID]; !ok {
		return domain.ErrMediaNotFound
	}
	clone := *m
	s.byID[m.ID] = &clone
	return nil
}

func (s *memMediaStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrMediaNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *memMediaStore) DeleteAllByOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.byID {
		if m.OwnerID == ownerID {
			delete(s.byID, id)
		}
	}
	return nil
}

func (s *memMediaStore) DeleteAllByProduct(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.byID {
		if m.ProductID == productID {
			delete(s.byID, id)
		}
	}
	return nil
}

func (s *memMediaStore) DeleteAllByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.byID, id)
	}
	return nil
}

func (s *memMediaStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	return ok
}

func (s *memMediaStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

// ---------------------------------------------------------------------------
// Flow
// ---------------------------------------------------------------------------

func TestAccountDeletionCascadesAcrossStores(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users := &memUserStore{byID: map[string]*domain.User{
		"seller1": {ID: "seller1", Email: "seller@example.com", PasswordHash: string(hash), Role: domain.RoleSeller},
		"seller2": {ID: "seller2", Email: "other@example.com", PasswordHash: string(hash), Role: domain.RoleSeller},
	}}
	products := &memProductStore{byID: map[string]*domain.Product{
		// seller1 owns two products; seller2's product must survive.
		"prodA": {ID: "prodA", OwnerID: "seller1", Name: "A", Price: 10, Quantity: 1},
		"prodB": {ID: "prodB", OwnerID: "seller1", Name: "B", Price: 20, Quantity: 2},
		"prodC": {ID: "prodC", OwnerID: "seller2", Name: "C", Price: 30, Quantity: 3},
	}}
	media := &memMediaStore{byID: map[string]*domain.Media{
		// Owned by seller1 and unattached: removed on the owner path.
		"mediaOwn": {ID: "mediaOwn", OwnerID: "seller1"},
		// Owned by seller2 but attached to seller1's product: only the
		// product-deleted fan-out can reach it.
		"mediaAttached": {ID: "mediaAttached", OwnerID: "seller2", ProductID: "prodA"},
		// Unrelated: must survive.
		"mediaOther": {ID: "mediaOther", OwnerID: "seller2"},
	}}

	log := zerolog.Nop()
	bus := relay.New(relay.Options{Shards: 2, RetryWait: 10 * time.Millisecond}, log)

	authority := auth.NewAuthority("test-secret", time.Hour)
	userSvc := service.NewUserService(users, authority, bus, log)
	productSvc := service.NewProductService(products, bus, log)
	mediaSvc := service.NewMediaService(media, products, log)

	NewProductCoordinator(productSvc, bus, nil, log).Register(bus)
	NewMediaCoordinator(mediaSvc, log).Register(bus)

	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)
	defer func() {
		cancel()
		bus.Wait()
	}()

	if err := userSvc.DeleteAccount(ctx, "seller1", "seller1"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	waitUntil(t, func() bool {
		return products.count() == 1 && media.count() == 1
	})

	if _, err := products.FindByID(ctx, "prodC"); err != nil {
		t.Fatalf("unrelated product removed: %v", err)
	}
	if media.has("mediaOwn") {
		t.Fatalf("directly owned media survived the cascade")
	}
	if media.has("mediaAttached") {
		t.Fatalf("media attached to a deleted product survived the cascade")
	}
	if !media.has("mediaOther") {
		t.Fatalf("unrelated media was removed")
	}
}

// Redelivering the same event after completion must be a no-op: every bulk
// delete finds an empty set and no further events fan out.
func TestCascadeRedeliveryIsIdempotent(t *testing.T) {
	products := &memProductStore{byID: map[string]*domain.Product{}}
	media := &memMediaStore{byID: map[string]*domain.Media{}}

	log := zerolog.Nop()
	bus := relay.New(relay.Options{Shards: 1}, log)

	productSvc := service.NewProductService(products, bus, log)
	coord := NewProductCoordinator(productSvc, bus, nil, log)
	mediaSvc := service.NewMediaService(media, products, log)
	mediaCoord := NewMediaCoordinator(mediaSvc, log)

	event := domain.NewCascadeEvent(domain.EventUserDeleted, "ghost")
	for i := 0; i < 3; i++ {
		if err := coord.HandleUserDeleted(context.Background(), event); err != nil {
			t.Fatalf("product coordinator redelivery %d: %v", i, err)
		}
		if err := mediaCoord.HandleUserDeleted(context.Background(), event); err != nil {
			t.Fatalf("media coordinator redelivery %d: %v", i, err)
		}
	}
}
