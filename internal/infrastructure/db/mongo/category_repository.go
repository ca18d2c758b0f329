package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

const collectionCategories = "categories"

type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: db.Collection(collectionCategories)}
}

type mongoCategory struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoCategory{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}

	_, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCategoryExists
		}
		return err
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCategory
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}

	return &domain.Category{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt.UTC(),
	}, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	categories := []domain.Category{}
	for cur.Next(ctx) {
		var doc mongoCategory
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		categories = append(categories, domain.Category{
			ID:          doc.ID,
			Name:        doc.Name,
			Description: doc.Description,
			CreatedAt:   doc.CreatedAt.UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

// EnsureIndexes creates necessary indexes on the categories collection.
func (r *CategoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
