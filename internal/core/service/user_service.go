package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/marketbase/catalog-api/internal/core/ports"
)

// UserService implements account administration. Deleting a user cascades
// to every product they own, mirroring the one-to-many ownership relation.
type UserService struct {
	users    ports.UserRepository
	products ports.ProductRepository
	logger   zerolog.Logger
}

func NewUserService(users ports.UserRepository, products ports.ProductRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, products: products, logger: logger}
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	removed, err := s.products.DeleteByOwnerID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", id).
		Int64("products_removed", removed).
		Msg("user deleted")
	return nil
}
