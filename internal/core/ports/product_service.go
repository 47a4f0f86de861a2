package ports

import (
	"context"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// CreateProductInput carries the data for listing a new product. OwnerID and
// OwnerRole come from the authenticated principal, never from the request body.
type CreateProductInput struct {
	OwnerID     string
	OwnerRole   domain.Role
	Name        string
	Description string
	Price       float64
	Quantity    int
}

// UpdateProductInput carries a product mutation.
type UpdateProductInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

// ProductService defines product use cases. Every mutation authorizes the
// requester against the product owner before touching the store.
type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	GetAll(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, id string, in UpdateProductInput, requesterID string) (*domain.Product, error)
	// Delete removes one product and publishes a product-deleted event so
	// attached media is cleaned up asynchronously.
	Delete(ctx context.Context, id, requesterID string) error
	// DeleteAllByOwner bulk-deletes every product of the owner and returns the
	// deleted ids. Used by the cascade coordinator; no ownership check since
	// the triggering user no longer exists.
	DeleteAllByOwner(ctx context.Context, ownerID string) ([]string, error)
}
