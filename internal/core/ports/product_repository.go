package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

// ProductFilter carries the optional predicates for product queries.
// Zero values impose no constraint; the repository ANDs only the
// supplied parts. OwnerID is set by the "by user" listing variant and
// is mandatory there.
type ProductFilter struct {
	Name       string           // case-insensitive substring match
	MinPrice   *decimal.Decimal // inclusive lower bound
	MaxPrice   *decimal.Decimal // inclusive upper bound
	CategoryID string           // exact match
	OwnerID    string           // exact match; enforced by the per-user listing
}

// ProductPatch carries the fields of a partial update. Nil fields keep
// their prior values.
type ProductPatch struct {
	Name     *string
	Price    *decimal.Decimal
	Category *domain.Reference
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByCategoryID(ctx context.Context, categoryID string) ([]domain.Product, error)

	// FindPage returns one page of matches plus the total match count.
	FindPage(ctx context.Context, filter ProductFilter, req PageRequest) ([]domain.Product, int64, error)
	// FindSlice returns one page of matches plus a flag reporting whether a
	// further page exists. It must yield the same content, in the same
	// order, as FindPage for identical inputs; only the count query is
	// skipped.
	FindSlice(ctx context.Context, filter ProductFilter, req PageRequest) ([]domain.Product, bool, error)

	// Update applies patch to the product only while its owner is still
	// ownerID, so an authorization decision cannot be invalidated between
	// load and write. Returns the updated product, or ErrProductNotFound
	// when no matching document exists.
	Update(ctx context.Context, id, ownerID string, patch ProductPatch) (*domain.Product, error)
	// Delete removes the product under the same owner condition as Update.
	Delete(ctx context.Context, id, ownerID string) error
	// DeleteByOwnerID removes every product owned by ownerID and reports
	// how many were removed. Used by the user-deletion cascade.
	DeleteByOwnerID(ctx context.Context, ownerID string) (int64, error)
}

// ProductCache is a read-through cache for single-product lookups.
// Implementations must treat a miss as (nil, nil), not an error.
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, p *domain.Product) error
	Invalidate(ctx context.Context, id string) error
}
