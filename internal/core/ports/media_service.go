package ports

import (
	"context"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// CreateMediaInput carries upload bookkeeping data. The file bytes themselves
// are stored by the collaborating storage layer; only metadata lands here.
type CreateMediaInput struct {
	OwnerID          string
	OriginalFilename string
	FilePath         string
	ContentType      string
	Size             int64
}

// MediaService defines media use cases.
type MediaService interface {
	CreateMetadata(ctx context.Context, in CreateMediaInput) (*domain.Media, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Media, error)
	// AssociateWithProduct attaches an uploaded media to a product. Only the
	// media owner may associate; the read happens before the ownership check,
	// and nothing is written on failure.
	AssociateWithProduct(ctx context.Context, mediaID, productID, requesterID string) (*domain.Media, error)
	Delete(ctx context.Context, mediaID, requesterID string) error
	// Bulk entry points used by the cascade coordinators. Each looks up first
	// and issues zero store deletes when the set is empty.
	DeleteAllByOwner(ctx context.Context, ownerID string) error
	DeleteAllByProduct(ctx context.Context, productID string) error
	DeleteAllByIDs(ctx context.Context, ids []string) error
}
