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

// ProductService orchestrates product use cases: filter and pagination
// resolution, ownership authorization, and persistence.
type ProductService struct {
	repo       ports.ProductRepository
	categories ports.CategoryRepository
	cache      ports.ProductCache
	elevated   domain.RoleSet
	logger     zerolog.Logger
}

func NewProductService(
	repo ports.ProductRepository,
	categories ports.CategoryRepository,
	cache ports.ProductCache,
	logger zerolog.Logger,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		cache:      cache,
		elevated:   domain.ElevatedRoles,
		logger:     logger,
	}
}

// Create validates the input, assigns the acting principal as owner, and
// persists the product. The creator is always the owner, so no ownership
// check applies here.
func (s *ProductService) Create(ctx context.Context, input ports.CreateProductInput, actor domain.Principal) (*ports.ProductResponse, error) {
	if actor.ID == "" {
		return nil, domain.ErrInvalidCredentials
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:        uuid.NewString(),
		Name:      name,
		Price:     input.Price,
		Category:  domain.Reference{ID: category.ID, Name: category.Name},
		Owner:     domain.Reference{ID: actor.ID, Name: actor.Name},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("owner_id", actor.ID).
		Msg("product created")

	resp := toResponse(*product)
	return &resp, nil
}

// FindByID returns one product by id, trying the cache first. Any
// authenticated principal may read any product.
func (s *ProductService) FindByID(ctx context.Context, id string) (*ports.ProductResponse, error) {
	if cached, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("cache read failed")
	} else if cached != nil {
		resp := toResponse(*cached)
		return &resp, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, product); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("cache write failed")
	}

	resp := toResponse(*product)
	return &resp, nil
}

// FindAll returns every product without pagination. The admin-only route
// gate runs before this is reached.
func (s *ProductService) FindAll(ctx context.Context) ([]ports.ProductResponse, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(products), nil
}

func (s *ProductService) FindAllPaginated(ctx context.Context, page, size int, sort []string) (*ports.ProductPage, error) {
	return s.findPage(ctx, ports.ProductFilter{}, ports.ResolvePageRequest(page, size, sort))
}

func (s *ProductService) FindAllSlice(ctx context.Context, page, size int, sort []string) (*ports.ProductSlice, error) {
	req := ports.ResolvePageRequest(page, size, sort)

	content, hasNext, err := s.repo.FindSlice(ctx, ports.ProductFilter{}, req)
	if err != nil {
		return nil, err
	}

	return &ports.ProductSlice{
		Content:  toResponses(content),
		PageMeta: pageMeta(req, len(content)),
		First:    req.Page == 0,
		Last:     !hasNext,
		Empty:    len(content) == 0,
	}, nil
}

func (s *ProductService) FindWithFilters(ctx context.Context, input ports.SearchInput) (*ports.ProductPage, error) {
	return s.findPage(ctx, searchFilter(input, ""), ports.ResolvePageRequest(input.Page, input.Size, input.Sort))
}

// FindByUserIDWithFilters is the per-user search variant: the owner
// constraint is mandatory and ANDed in regardless of the other filters.
func (s *ProductService) FindByUserIDWithFilters(ctx context.Context, userID string, input ports.SearchInput) (*ports.ProductPage, error) {
	return s.findPage(ctx, searchFilter(input, userID), ports.ResolvePageRequest(input.Page, input.Size, input.Sort))
}

func (s *ProductService) FindByCategoryID(ctx context.Context, categoryID string) ([]ports.ProductResponse, error) {
	products, err := s.repo.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return toResponses(products), nil
}

// Update loads the product, authorizes the actor against its current
// owner, and applies only the supplied fields. Existence is checked before
// authorization so a missing product is reported as not found, never as
// forbidden.
func (s *ProductService) Update(ctx context.Context, id string, input ports.UpdateProductInput, actor domain.Principal) (*ports.ProductResponse, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanMutate(existing.Owner.ID, actor, s.elevated) {
		s.logger.Info().
			Str("product_id", id).
			Str("owner_id", existing.Owner.ID).
			Str("actor_id", actor.ID).
			Msg("product mutation denied")
		return nil, domain.ErrForbidden
	}

	patch, err := s.buildPatch(ctx, input)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, existing.Owner.ID, patch)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("cache invalidation failed")
	}

	s.logger.Info().Str("product_id", id).Str("actor_id", actor.ID).Msg("product updated")

	resp := toResponse(*updated)
	return &resp, nil
}

// Delete removes the product permanently under the same authorization
// rule as Update.
func (s *ProductService) Delete(ctx context.Context, id string, actor domain.Principal) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanMutate(existing.Owner.ID, actor, s.elevated) {
		s.logger.Info().
			Str("product_id", id).
			Str("owner_id", existing.Owner.ID).
			Str("actor_id", actor.ID).
			Msg("product deletion denied")
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id, existing.Owner.ID); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("cache invalidation failed")
	}

	s.logger.Info().Str("product_id", id).Str("actor_id", actor.ID).Msg("product deleted")
	return nil
}

// buildPatch validates the supplied fields of a partial update and
// resolves the category reference when a new category id is given.
func (s *ProductService) buildPatch(ctx context.Context, input ports.UpdateProductInput) (ports.ProductPatch, error) {
	var patch ports.ProductPatch

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return patch, domain.ErrInvalidInput
		}
		patch.Name = &name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return patch, domain.ErrInvalidInput
		}
		patch.Price = input.Price
	}
	if input.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *input.CategoryID)
		if err != nil {
			return patch, err
		}
		patch.Category = &domain.Reference{ID: category.ID, Name: category.Name}
	}

	return patch, nil
}

func (s *ProductService) findPage(ctx context.Context, filter ports.ProductFilter, req ports.PageRequest) (*ports.ProductPage, error) {
	content, total, err := s.repo.FindPage(ctx, filter, req)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(req.Size) - 1) / int64(req.Size))

	return &ports.ProductPage{
		Content:       toResponses(content),
		PageMeta:      pageMeta(req, len(content)),
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

func searchFilter(input ports.SearchInput, ownerID string) ports.ProductFilter {
	return ports.ProductFilter{
		Name:       strings.TrimSpace(input.Name),
		MinPrice:   input.MinPrice,
		MaxPrice:   input.MaxPrice,
		CategoryID: input.CategoryID,
		OwnerID:    ownerID,
	}
}

func pageMeta(req ports.PageRequest, elements int) ports.PageMeta {
	return ports.PageMeta{
		Number:           req.Page,
		Size:             req.Size,
		NumberOfElements: elements,
		Sort:             req.Sort,
	}
}

func toResponse(p domain.Product) ports.ProductResponse {
	return ports.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  ports.RefSummary{ID: p.Category.ID, Name: p.Category.Name},
		Owner:     ports.RefSummary{ID: p.Owner.ID, Name: p.Owner.Name},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toResponses(products []domain.Product) []ports.ProductResponse {
	responses := make([]ports.ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, toResponse(p))
	}
	return responses
}
