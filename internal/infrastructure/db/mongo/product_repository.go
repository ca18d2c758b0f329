package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketbase/catalog-api/internal/core/domain"
	"github.com/marketbase/catalog-api/internal/core/ports"
)

const collectionProducts = "products"

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

// mongoRef is the stored {id, name} reference to another aggregate.
type mongoRef struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

// mongoProduct is the persisted document shape. Price is stored as a
// float64 so range predicates stay numeric; the exact decimal lives only
// at the domain/API boundary.
type mongoProduct struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Price     float64   `bson:"price"`
	Category  mongoRef  `bson:"category"`
	Owner     mongoRef  `bson:"owner"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toDocument(p *domain.Product) mongoProduct {
	return mongoProduct{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		Category:  mongoRef{ID: p.Category.ID, Name: p.Category.Name},
		Owner:     mongoRef{ID: p.Owner.ID, Name: p.Owner.Name},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromDocument(doc mongoProduct) domain.Product {
	return domain.Product{
		ID:        doc.ID,
		Name:      doc.Name,
		Price:     decimal.NewFromFloat(doc.Price),
		Category:  domain.Reference{ID: doc.Category.ID, Name: doc.Category.Name},
		Owner:     domain.Reference{ID: doc.Owner.ID, Name: doc.Owner.Name},
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

// buildProductFilter translates the optional filter parts into a Mongo
// predicate. Absent parts impose no constraint; supplied parts are ANDed
// by the top-level document. A min above the max simply matches nothing.
func buildProductFilter(f ports.ProductFilter) bson.M {
	filter := bson.M{}

	if f.Name != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Name), "$options": "i"}
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = f.MinPrice.InexactFloat64()
	}
	if f.MaxPrice != nil {
		price["$lte"] = f.MaxPrice.InexactFloat64()
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if f.CategoryID != "" {
		filter["category.id"] = f.CategoryID
	}
	if f.OwnerID != "" {
		filter["owner.id"] = f.OwnerID
	}

	return filter
}

// sortDocument maps the resolved sort keys to a Mongo sort spec. "id" maps
// to "_id"; every other field passes through verbatim. A trailing _id key
// is appended as a tie-breaker so page boundaries stay deterministic.
func sortDocument(keys []ports.SortKey) bson.D {
	sort := make(bson.D, 0, len(keys)+1)
	sawID := false
	for _, k := range keys {
		field := k.Field
		if field == "id" {
			field = "_id"
		}
		if field == "_id" {
			sawID = true
		}
		dir := 1
		if k.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	if !sawID {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toDocument(p))
	return err
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoProduct
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	product := fromDocument(doc)
	return &product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.findList(ctx, bson.M{})
}

func (r *ProductRepository) FindByCategoryID(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return r.findList(ctx, bson.M{"category.id": categoryID})
}

func (r *ProductRepository) findList(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	return decodeProducts(ctx, cur)
}

// FindPage runs the filtered query in counted mode: one count query plus
// one page query sharing the same predicate and ordering.
func (r *ProductRepository) FindPage(ctx context.Context, f ports.ProductFilter, req ports.PageRequest) ([]domain.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildProductFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	content, err := r.findSorted(ctx, filter, req, int64(req.Size))
	if err != nil {
		return nil, 0, err
	}
	return content, total, nil
}

// FindSlice runs the same query as FindPage but skips the count: it
// fetches one extra document past the page to learn whether a further
// page exists.
func (r *ProductRepository) FindSlice(ctx context.Context, f ports.ProductFilter, req ports.PageRequest) ([]domain.Product, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	content, err := r.findSorted(ctx, buildProductFilter(f), req, int64(req.Size)+1)
	if err != nil {
		return nil, false, err
	}

	hasNext := len(content) > req.Size
	if hasNext {
		content = content[:req.Size]
	}
	return content, hasNext, nil
}

func (r *ProductRepository) findSorted(ctx context.Context, filter bson.M, req ports.PageRequest, limit int64) ([]domain.Product, error) {
	opts := options.Find().
		SetSort(sortDocument(req.Sort)).
		SetSkip(req.Offset()).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	return decodeProducts(ctx, cur)
}

func decodeProducts(ctx context.Context, cur *mongo.Cursor) ([]domain.Product, error) {
	products := []domain.Product{}
	for cur.Next(ctx) {
		var doc mongoProduct
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		products = append(products, fromDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// Update applies patch in a single document write conditioned on the
// owner observed at authorization time. A single-document update is
// atomic, so the check cannot be invalidated by a concurrent owner change.
func (r *ProductRepository) Update(ctx context.Context, id, ownerID string, patch ports.ProductPatch) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Price != nil {
		set["price"] = patch.Price.InexactFloat64()
	}
	if patch.Category != nil {
		set["category"] = mongoRef{ID: patch.Category.ID, Name: patch.Category.Name}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoProduct
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "owner.id": ownerID},
		bson.M{"$set": set},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	product := fromDocument(doc)
	return &product, nil
}

// Delete removes the product under the same owner condition as Update.
func (r *ProductRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "owner.id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteByOwnerID(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"owner.id": ownerID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes on the products collection.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner.id", Value: 1}}},
		{Keys: bson.D{{Key: "category.id", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
