package ports

import (
	"context"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

type AuthService interface {
	// Register creates an account. An empty roles slice grants the base
	// user role.
	Register(ctx context.Context, name, email, password string, roles []string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// UserService covers account administration beyond auth.
type UserService interface {
	// Delete removes the user and cascades to every product they own.
	Delete(ctx context.Context, id string) error
}
