package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/buy01/marketplace-system/internal/core/authz"
	"github.com/buy01/marketplace-system/internal/core/domain"
	"github.com/buy01/marketplace-system/internal/core/ports"
)

// MediaService implements media metadata bookkeeping. File bytes live in the
// storage layer; this service tracks ownership and product attachment. The
// attachment is recorded on both sides: Media.ProductID and the product's
// ordered MediaIDs list.
type MediaService struct {
	repo     ports.MediaRepository
	products ports.ProductRepository
	logger   zerolog.Logger
}

func NewMediaService(repo ports.MediaRepository, products ports.ProductRepository, logger zerolog.Logger) *MediaService {
	return &MediaService{repo: repo, products: products, logger: logger}
}

func (s *MediaService) CreateMetadata(ctx context.Context, in ports.CreateMediaInput) (*domain.Media, error) {
	now := time.Now().UTC()
	media := &domain.Media{
		OwnerID:          in.OwnerID,
		OriginalFilename: in.OriginalFilename,
		FilePath:         in.FilePath,
		ContentType:      in.ContentType,
		Size:             in.Size,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := s.repo.Create(ctx, media)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("media_id", created.ID).Str("owner_id", created.OwnerID).Msg("media uploaded")
	return created, nil
}

func (s *MediaService) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Media, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

// AssociateWithProduct attaches media to a product. Read first, then the
// ownership check, then the writes; an unauthorized requester changes nothing.
// The media id is also appended to the product's ordered MediaIDs list.
func (s *MediaService) AssociateWithProduct(ctx context.Context, mediaID, productID, requesterID string) (*domain.Media, error) {
	media, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(media.OwnerID, requesterID) {
		return nil, domain.ErrUnauthorized
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	media.ProductID = productID
	media.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, media); err != nil {
		return nil, err
	}

	if !containsID(product.MediaIDs, media.ID) {
		product.MediaIDs = append(product.MediaIDs, media.ID)
		product.UpdatedAt = time.Now().UTC()
		if err := s.products.Update(ctx, product); err != nil {
			return nil, err
		}
	}
	return media, nil
}

func (s *MediaService) Delete(ctx context.Context, mediaID, requesterID string) error {
	media, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if !authz.CanMutate(media.OwnerID, requesterID) {
		return domain.ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, media.ID); err != nil {
		return err
	}
	s.detachFromProduct(ctx, media)
	return nil
}

// detachFromProduct removes a deleted media's id from its product's MediaIDs
// list. Best effort: the product may already be gone mid-cascade.
func (s *MediaService) detachFromProduct(ctx context.Context, media *domain.Media) {
	if media.ProductID == "" {
		return
	}
	product, err := s.products.FindByID(ctx, media.ProductID)
	if err != nil {
		return
	}
	kept := make([]string, 0, len(product.MediaIDs))
	for _, id := range product.MediaIDs {
		if id != media.ID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(product.MediaIDs) {
		return
	}
	product.MediaIDs = kept
	product.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, product); err != nil {
		s.logger.Warn().Err(err).
			Str("media_id", media.ID).
			Str("product_id", product.ID).
			Msg("failed to detach deleted media from product")
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// DeleteAllByOwner removes every media owned directly by the user, including
// uploads never attached to any product. Empty set means zero delete calls.
func (s *MediaService) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	medias, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(medias) == 0 {
		return nil
	}

	if err := s.repo.DeleteAllByOwner(ctx, ownerID); err != nil {
		return err
	}
	s.logger.Info().Str("owner_id", ownerID).Int("count", len(medias)).Msg("media bulk-deleted by owner")
	return nil
}

// DeleteAllByProduct removes every media attached to the product.
func (s *MediaService) DeleteAllByProduct(ctx context.Context, productID string) error {
	medias, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return err
	}
	if len(medias) == 0 {
		return nil
	}

	if err := s.repo.DeleteAllByProduct(ctx, productID); err != nil {
		return err
	}
	s.logger.Info().Str("product_id", productID).Int("count", len(medias)).Msg("media bulk-deleted by product")
	return nil
}

// DeleteAllByIDs removes the listed media. Ids with no backing row are
// ignored; the delete is only issued for rows that exist.
func (s *MediaService) DeleteAllByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	medias, err := s.repo.FindAllByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(medias) == 0 {
		return nil
	}

	found := make([]string, 0, len(medias))
	for _, m := range medias {
		found = append(found, m.ID)
	}
	return s.repo.DeleteAllByIDs(ctx, found)
}
