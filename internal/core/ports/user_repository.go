package ports

import (
	"context"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
