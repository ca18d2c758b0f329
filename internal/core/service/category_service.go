package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marketbase/catalog-api/internal/core/domain"
	"github.com/marketbase/catalog-api/internal/core/ports"
)

// CategoryService implements category use cases.
type CategoryService struct {
	repo   ports.CategoryRepository
	logger zerolog.Logger
}

func NewCategoryService(repo ports.CategoryRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

func (s *CategoryService) Create(ctx context.Context, input ports.CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	category := &domain.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", category.ID).Str("name", category.Name).Msg("category created")
	return category, nil
}

func (s *CategoryService) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) FindAll(ctx context.Context) ([]domain.Category, error) {
	return s.repo.FindAll(ctx)
}
