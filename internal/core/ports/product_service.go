package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

// CreateProductInput carries the data needed to create a product. The
// owner is the acting principal, never part of the input.
type CreateProductInput struct {
	Name       string
	Price      decimal.Decimal
	CategoryID string
}

// UpdateProductInput carries a partial update: nil fields retain their
// prior values.
type UpdateProductInput struct {
	Name       *string
	Price      *decimal.Decimal
	CategoryID *string
}

// SearchInput carries the filter and pagination parameters of the search
// endpoints.
type SearchInput struct {
	Name       string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	CategoryID string
	Page       int
	Size       int
	Sort       []string
}

// RefSummary is the {id, name} view of a related aggregate exposed in
// responses. Owner summaries never include email, password, or roles.
type RefSummary struct {
	ID   string
	Name string
}

// ProductResponse is the service-level view of a product.
type ProductResponse struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Category  RefSummary
	Owner     RefSummary
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PageMeta describes the current page common to both result shapes.
type PageMeta struct {
	Number           int // zero-based page index
	Size             int
	NumberOfElements int
	Sort             []SortKey
}

// ProductPage is the counted pagination result: content plus totals.
type ProductPage struct {
	Content       []ProductResponse
	PageMeta      PageMeta
	TotalElements int64
	TotalPages    int
}

// ProductSlice is the lightweight pagination result: no totals, just
// whether more pages exist.
type ProductSlice struct {
	Content  []ProductResponse
	PageMeta PageMeta
	First    bool
	Last     bool
	Empty    bool
}

// ProductService defines the use-case operations over products.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput, actor domain.Principal) (*ProductResponse, error)
	FindByID(ctx context.Context, id string) (*ProductResponse, error)
	// FindAll returns every product unpaginated. Admin-only; the route
	// enforces the role before this is invoked.
	FindAll(ctx context.Context) ([]ProductResponse, error)
	FindAllPaginated(ctx context.Context, page, size int, sort []string) (*ProductPage, error)
	FindAllSlice(ctx context.Context, page, size int, sort []string) (*ProductSlice, error)
	FindWithFilters(ctx context.Context, input SearchInput) (*ProductPage, error)
	FindByUserIDWithFilters(ctx context.Context, userID string, input SearchInput) (*ProductPage, error)
	FindByCategoryID(ctx context.Context, categoryID string) ([]ProductResponse, error)
	Update(ctx context.Context, id string, input UpdateProductInput, actor domain.Principal) (*ProductResponse, error)
	Delete(ctx context.Context, id string, actor domain.Principal) error
}
