package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/buy01/marketplace-system/internal/core/authz"
	"github.com/buy01/marketplace-system/internal/core/domain"
	"github.com/buy01/marketplace-system/internal/core/ports"
)

// ProductService implements product CRUD with ownership checks, plus the bulk
// deletion entry point the cascade coordinator uses.
type ProductService struct {
	repo   ports.ProductRepository
	relay  ports.EventPublisher
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, relay ports.EventPublisher, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, relay: relay, logger: logger}
}

func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	if in.OwnerRole != domain.RoleSeller {
		return nil, domain.ErrSellerRequired
	}

	now := time.Now().UTC()
	product := &domain.Product{
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", created.ID).Str("owner_id", created.OwnerID).Msg("product created")
	return created, nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Update follows read-then-authorize-then-write: the product is loaded, the
// requester is checked against its owner, and only then is anything written.
func (s *ProductService) Update(ctx context.Context, id string, in ports.UpdateProductInput, requesterID string) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(product.OwnerID, requesterID) {
		return nil, domain.ErrUnauthorized
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Quantity = in.Quantity
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes one product and publishes product-deleted so the media
// coordinator detaches and removes attached media.
func (s *ProductService) Delete(ctx context.Context, id, requesterID string) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanMutate(product.OwnerID, requesterID) {
		return domain.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return err
	}

	event := domain.NewCascadeEvent(domain.EventProductDeleted, product.ID)
	if err := s.relay.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to publish product-deleted event")
		return nil
	}

	s.logger.Info().Str("product_id", product.ID).Msg("product deleted")
	return nil
}

// DeleteAllByOwner bulk-deletes the owner's products in one store operation
// and returns the deleted ids for downstream fan-out. An owner with no
// products yields a no-op and zero delete calls, which is what makes duplicate
// user-deleted deliveries idempotent.
func (s *ProductService) DeleteAllByOwner(ctx context.Context, ownerID string) ([]string, error) {
	products, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	if err := s.repo.DeleteAllByIDs(ctx, ids); err != nil {
		return nil, err
	}

	s.logger.Info().Str("owner_id", ownerID).Int("count", len(ids)).Msg("products bulk-deleted")
	return ids, nil
}
