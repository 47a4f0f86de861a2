package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

const mediaCollection = "media"

type MediaRepository struct {
	coll *mongo.Collection
}

func NewMediaRepository(db *mongo.Database) *MediaRepository {
	return &MediaRepository{coll: db.Collection(mediaCollection)}
}

// EnsureIndexes creates the owner and product indexes used by cascade lookups.
func (r *MediaRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "product_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create media indexes: %w", err)
	}
	return nil
}

type mongoMedia struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID          string             `bson:"owner_id"`
	ProductID        string             `bson:"product_id,omitempty"`
	OriginalFilename string             `bson:"original_filename"`
	FilePath         string             `bson:"file_path"`
	ContentType      string             `bson:"content_type"`
	Size             int64              `bson:"size"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
}

func (r *MediaRepository) Create(ctx context.Context, m *domain.Media) (*domain.Media, error) {
	doc := mongoMedia{
		OwnerID:          m.OwnerID,
		ProductID:        m.ProductID,
		OriginalFilename: m.OriginalFilename,
		FilePath:         m.FilePath,
		ContentType:      m.ContentType,
		Size:             m.Size,
		CreatedAt:        m.CreatedAt.Unix(),
		UpdatedAt:        m.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}

	created := *m
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *MediaRepository) FindByID(ctx context.Context, id string) (*domain.Media, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMediaNotFound
	}

	var mm mongoMedia
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mm); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrMediaNotFound
		}
		return nil, fmt.Errorf("find media: %w", err)
	}
	return mm.toDomain(), nil
}

func (r *MediaRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Media, error) {
	return r.findMany(ctx, bson.M{"owner_id": ownerID})
}

func (r *MediaRepository) FindByProduct(ctx context.Context, productID string) ([]*domain.Media, error) {
	return r.findMany(ctx, bson.M{"product_id": productID})
}

func (r *MediaRepository) FindAllByIDs(ctx context.Context, ids []string) ([]*domain.Media, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []*domain.Media{}, nil
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *MediaRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.Media, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	defer cur.Close(ctx)

	medias := []*domain.Media{}
	for cur.Next(ctx) {
		var mm mongoMedia
		if err := cur.Decode(&mm); err != nil {
			return nil, fmt.Errorf("decode media: %w", err)
		}
		medias = append(medias, mm.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return medias, nil
}

func (r *MediaRepository) Update(ctx context.Context, m *domain.Media) error {
	oid, err := primitive.ObjectIDFromHex(m.ID)
	if err != nil {
		return domain.ErrMediaNotFound
	}

	update := bson.M{"$set": bson.M{
		"product_id": m.ProductID,
		"updated_at": m.UpdatedAt.Unix(),
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMediaNotFound
	}
	return nil
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMediaNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMediaNotFound
	}
	return nil
}

func (r *MediaRepository) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"owner_id": ownerID}); err != nil {
		return fmt.Errorf("delete media by owner: %w", err)
	}
	return nil
}

func (r *MediaRepository) DeleteAllByProduct(ctx context.Context, productID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"product_id": productID}); err != nil {
		return fmt.Errorf("delete media by product: %w", err)
	}
	return nil
}

func (r *MediaRepository) DeleteAllByIDs(ctx context.Context, ids []string) error {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil
	}
	if _, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}}); err != nil {
		return fmt.Errorf("delete media by ids: %w", err)
	}
	return nil
}

func (mm mongoMedia) toDomain() *domain.Media {
	return &domain.Media{
		ID:               mm.ID.Hex(),
		OwnerID:          mm.OwnerID,
		ProductID:        mm.ProductID,
		OriginalFilename: mm.OriginalFilename,
		FilePath:         mm.FilePath,
		ContentType:      mm.ContentType,
		Size:             mm.Size,
		CreatedAt:        unixToTime(mm.CreatedAt),
		UpdatedAt:        unixToTime(mm.UpdatedAt),
	}
}
