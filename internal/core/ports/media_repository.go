package ports

import (
	"context"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// MediaRepository defines persistence operations for media metadata.
type MediaRepository interface {
	Create(ctx context.Context, m *domain.Media) (*domain.Media, error)
	FindByID(ctx context.Context, id string) (*domain.Media, error)
	// FindByOwner returns an empty slice, not an error, when the owner has no media.
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Media, error)
	FindByProduct(ctx context.Context, productID string) ([]*domain.Media, error)
	FindAllByIDs(ctx context.Context, ids []string) ([]*domain.Media, error)
	Update(ctx context.Context, m *domain.Media) error
	Delete(ctx context.Context, id string) error
	DeleteAllByOwner(ctx context.Context, ownerID string) error
	DeleteAllByProduct(ctx context.Context, productID string) error
	DeleteAllByIDs(ctx context.Context, ids []string) error
}
