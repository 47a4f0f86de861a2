package ports

import (
	"context"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// ProductRepository defines persistence operations for products. The bulk
// deletes are single store-level operations; callers are expected to look up
// first and skip the call entirely when the set is empty.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindAll(ctx context.Context) ([]*domain.Product, error)
	// FindByOwner returns an empty slice, not an error, when the owner has no products.
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	DeleteAllByIDs(ctx context.Context, ids []string) error
}
