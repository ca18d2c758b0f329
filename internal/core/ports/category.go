package ports

import (
	"context"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
}

// CreateCategoryInput carries the data needed to create a category.
type CreateCategoryInput struct {
	Name        string
	Description string
}

// CategoryService defines the use-case operations over categories.
type CategoryService interface {
	Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
}
