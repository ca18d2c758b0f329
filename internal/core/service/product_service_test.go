package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/marketbase/catalog-api/internal/core/domain"
	"github.com/marketbase/catalog-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	products map[string]*domain.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) FindAll(_ context.Context) ([]domain.Product, error) {
	return r.sorted(r.match(ports.ProductFilter{}), []ports.SortKey{{Field: "id"}}), nil
}

func (r *stubProductRepo) FindByCategoryID(_ context.Context, categoryID string) ([]domain.Product, error) {
	return r.sorted(r.match(ports.ProductFilter{CategoryID: categoryID}), []ports.SortKey{{Field: "id"}}), nil
}

// match applies the same predicates the real Mongo filter would use.
func (r *stubProductRepo) match(f ports.ProductFilter) []domain.Product {
	var matched []domain.Product
	for _, p := range r.products {
		if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.CategoryID != "" && p.Category.ID != f.CategoryID {
			continue
		}
		if f.OwnerID != "" && p.Owner.ID != f.OwnerID {
			continue
		}
		matched = append(matched, *p)
	}
	return matched
}

func (r *stubProductRepo) sorted(products []domain.Product, keys []ports.SortKey) []domain.Product {
	sort.SliceStable(products, func(i, j int) bool {
		for _, k := range keys {
			var cmp int
			switch k.Field {
			case "id":
				cmp = strings.Compare(products[i].ID, products[j].ID)
			case "name":
				cmp = strings.Compare(products[i].Name, products[j].Name)
			case "price":
				cmp = products[i].Price.Cmp(products[j].Price)
			default:
				continue
			}
			if cmp == 0 {
				continue
			}
			if k.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		// tie-breaker mirrors the repository's trailing _id sort
		return products[i].ID < products[j].ID
	})
	return products
}

func (r *stubProductRepo) page(f ports.ProductFilter, req ports.PageRequest) ([]domain.Product, int) {
	matched := r.sorted(r.match(f), req.Sort)
	total := len(matched)

	skip := req.Page * req.Size
	if skip >= total {
		return []domain.Product{}, total
	}
	end := skip + req.Size
	if end > total {
		end = total
	}
	return matched[skip:end], total
}

func (r *stubProductRepo) FindPage(_ context.Context, f ports.ProductFilter, req ports.PageRequest) ([]domain.Product, int64, error) {
	content, total := r.page(f, req)
	return content, int64(total), nil
}

func (r *stubProductRepo) FindSlice(_ context.Context, f ports.ProductFilter, req ports.PageRequest) ([]domain.Product, bool, error) {
	content, total := r.page(f, req)
	hasNext := (req.Page+1)*req.Size < total
	return content, hasNext, nil
}

func (r *stubProductRepo) Update(_ context.Context, id, ownerID string, patch ports.ProductPatch) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok || p.Owner.ID != ownerID {
		return nil, domain.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	p.UpdatedAt = time.Now().UTC()
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id, ownerID string) error {
	p, ok := r.products[id]
	if !ok || p.Owner.ID != ownerID {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) DeleteByOwnerID(_ context.Context, ownerID string) (int64, error) {
	var removed int64
	for id, p := range r.products {
		if p.Owner.ID == ownerID {
			delete(r.products, id)
			removed++
		}
	}
	return removed, nil
}

type stubCategoryRepo struct {
	categories map[string]*domain.Category
}

func newStubCategoryRepo(categories ...*domain.Category) *stubCategoryRepo {
	r := &stubCategoryRepo{categories: make(map[string]*domain.Category)}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id string) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCategoryRepo) FindAll(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

// stubCache records invalidations; reads always miss.
type stubCache struct {
	invalidated []string
}

func (c *stubCache) Get(_ context.Context, _ string) (*domain.Product, error) { return nil, nil }
func (c *stubCache) Set(_ context.Context, _ *domain.Product) error           { return nil }
func (c *stubCache) Invalidate(_ context.Context, id string) error {
	c.invalidated = append(c.invalidated, id)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	catAudio  = &domain.Category{ID: "cat-audio", Name: "Audio"}
	catOffice = &domain.Category{ID: "cat-office", Name: "Office"}

	alice = domain.Principal{ID: "u1", Name: "Alice Doe", Roles: []string{domain.RoleUser}}
	bob   = domain.Principal{ID: "u2", Name: "Bob Stone", Roles: []string{domain.RoleUser}}
	admin = domain.Principal{ID: "u3", Name: "Root Admin", Roles: []string{domain.RoleAdmin}}
)

func newTestService(t *testing.T) (*ProductService, *stubProductRepo, *stubCache) {
	t.Helper()
	repo := newStubProductRepo()
	cache := &stubCache{}
	svc := NewProductService(repo, newStubCategoryRepo(catAudio, catOffice), cache, zerolog.Nop())
	return svc, repo, cache
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCreate(t *testing.T, svc *ProductService, name, priceStr, categoryID string, owner domain.Principal) *ports.ProductResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), ports.CreateProductInput{
		Name:       name,
		Price:      price(priceStr),
		CategoryID: categoryID,
	}, owner)
	if err != nil {
		t.Fatalf("Create(%s) returned error: %v", name, err)
	}
	return resp
}

// ---------------------------------------------------------------------------
// Create / FindByID
// ---------------------------------------------------------------------------

func TestProductService_Create_ThenFindByID(t *testing.T) {
	svc, _, _ := newTestService(t)

	created := mustCreate(t, svc, "Quantum Speaker", "129.50", catAudio.ID, alice)

	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.Owner.ID != alice.ID || created.Owner.Name != alice.Name {
		t.Fatalf("owner not assigned from principal: %+v", created.Owner)
	}
	if created.Category.Name != "Audio" {
		t.Fatalf("category summary not resolved: %+v", created.Category)
	}

	found, err := svc.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if found.Name != "Quantum Speaker" || !found.Price.Equal(price("129.50")) {
		t.Fatalf("round-trip mismatch: %+v", found)
	}
}

func TestProductService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ports.CreateProductInput{Name: "   ", Price: price("10"), CategoryID: catAudio.ID}, alice)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank name: expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.Create(ctx, ports.CreateProductInput{Name: "Lamp", Price: price("-1"), CategoryID: catAudio.ID}, alice)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("negative price: expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.Create(ctx, ports.CreateProductInput{Name: "Lamp", Price: price("10"), CategoryID: "nope"}, alice)
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("missing category: expected ErrCategoryNotFound, got %v", err)
	}

	_, err = svc.Create(ctx, ports.CreateProductInput{Name: "Lamp", Price: price("10"), CategoryID: catAudio.ID}, domain.Principal{})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("missing principal: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestProductService_FindByID_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.FindByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Ownership authorization
// ---------------------------------------------------------------------------

func TestProductService_Update_OwnershipRule(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Desk Lamp", "100", catOffice.ID, alice)
	newPrice := price("50")

	// A stranger with only the base role is denied.
	_, err := svc.Update(ctx, created.ID, ports.UpdateProductInput{Price: &newPrice}, bob)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger update: expected ErrForbidden, got %v", err)
	}

	// The owner may update.
	updated, err := svc.Update(ctx, created.ID, ports.UpdateProductInput{Price: &newPrice}, alice)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if !updated.Price.Equal(newPrice) {
		t.Fatalf("price not applied: %v", updated.Price)
	}

	// An admin may update someone else's product.
	adminPrice := price("25")
	updated, err = svc.Update(ctx, created.ID, ports.UpdateProductInput{Price: &adminPrice}, admin)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if !updated.Price.Equal(adminPrice) {
		t.Fatalf("admin price not applied: %v", updated.Price)
	}
	// The owner is never reassigned.
	if updated.Owner.ID != alice.ID {
		t.Fatalf("owner changed: %+v", updated.Owner)
	}
}

func TestProductService_Update_Partial(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Desk Lamp", "100", catOffice.ID, alice)
	newPrice := price("75")

	updated, err := svc.Update(ctx, created.ID, ports.UpdateProductInput{Price: &newPrice}, alice)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Desk Lamp" {
		t.Fatalf("name should be unchanged, got %q", updated.Name)
	}
	if updated.Category.ID != catOffice.ID {
		t.Fatalf("category should be unchanged, got %+v", updated.Category)
	}
	if !updated.Price.Equal(newPrice) {
		t.Fatalf("price should be updated, got %v", updated.Price)
	}
}

func TestProductService_Update_NotFoundBeforeForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	newPrice := price("10")

	// A missing product reports not-found even for an unprivileged stranger.
	_, err := svc.Update(context.Background(), "missing", ports.UpdateProductInput{Price: &newPrice}, bob)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_Update_InvalidPatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Desk Lamp", "100", catOffice.ID, alice)

	blank := "  "
	if _, err := svc.Update(ctx, created.ID, ports.UpdateProductInput{Name: &blank}, alice); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank name patch: expected ErrInvalidInput, got %v", err)
	}

	negative := price("-5")
	if _, err := svc.Update(ctx, created.ID, ports.UpdateProductInput{Price: &negative}, alice); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("negative price patch: expected ErrInvalidInput, got %v", err)
	}

	missingCat := "nope"
	if _, err := svc.Update(ctx, created.ID, ports.UpdateProductInput{CategoryID: &missingCat}, alice); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("missing category patch: expected ErrCategoryNotFound, got %v", err)
	}
}

func TestProductService_Delete_OwnershipRule(t *testing.T) {
	svc, repo, cache := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Desk Lamp", "100", catOffice.ID, alice)

	if err := svc.Delete(ctx, created.ID, bob); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger delete: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID, alice); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := repo.products[created.ID]; ok {
		t.Fatalf("product still present after delete")
	}
	if len(cache.invalidated) == 0 || cache.invalidated[len(cache.invalidated)-1] != created.ID {
		t.Fatalf("cache not invalidated on delete: %v", cache.invalidated)
	}

	// Elevated role deletes another owner's product.
	other := mustCreate(t, svc, "Router", "60", catOffice.ID, alice)
	if err := svc.Delete(ctx, other.ID, admin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestProductService_Delete_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Delete(context.Background(), "missing", bob)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound (never forbidden), got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Pagination
// ---------------------------------------------------------------------------

func seedProducts(t *testing.T, svc *ProductService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		name := "Item " + string(rune('A'+i))
		mustCreate(t, svc, name, decimal.NewFromInt(int64(10*(i+1))).String(), catAudio.ID, alice)
	}
}

func TestProductService_FindAllPaginated_Totals(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedProducts(t, svc, 7)

	page, err := svc.FindAllPaginated(context.Background(), 0, 3, nil)
	if err != nil {
		t.Fatalf("FindAllPaginated: %v", err)
	}
	if page.TotalElements != 7 || page.TotalPages != 3 {
		t.Fatalf("expected 7 elements in 3 pages, got %d/%d", page.TotalElements, page.TotalPages)
	}
	if len(page.Content) != 3 || page.PageMeta.NumberOfElements != 3 {
		t.Fatalf("expected 3 items on first page, got %d", len(page.Content))
	}
}

func TestProductService_PageBeyondEnd(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedProducts(t, svc, 4)
	ctx := context.Background()

	page, err := svc.FindAllPaginated(ctx, 5, 10, nil)
	if err != nil {
		t.Fatalf("FindAllPaginated: %v", err)
	}
	if len(page.Content) != 0 {
		t.Fatalf("expected empty content beyond last page, got %d items", len(page.Content))
	}

	slice, err := svc.FindAllSlice(ctx, 5, 10, nil)
	if err != nil {
		t.Fatalf("FindAllSlice: %v", err)
	}
	if !slice.Empty || !slice.Last || len(slice.Content) != 0 {
		t.Fatalf("expected empty last slice, got %+v", slice)
	}
}

func TestProductService_SliceMatchesPageContent(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedProducts(t, svc, 9)
	ctx := context.Background()

	for pageIdx := 0; pageIdx < 4; pageIdx++ {
		page, err := svc.FindAllPaginated(ctx, pageIdx, 4, []string{"price,desc"})
		if err != nil {
			t.Fatalf("page %d: %v", pageIdx, err)
		}
		slice, err := svc.FindAllSlice(ctx, pageIdx, 4, []string{"price,desc"})
		if err != nil {
			t.Fatalf("slice %d: %v", pageIdx, err)
		}

		if len(page.Content) != len(slice.Content) {
			t.Fatalf("page %d: content length differs: %d vs %d", pageIdx, len(page.Content), len(slice.Content))
		}
		for i := range page.Content {
			if page.Content[i].ID != slice.Content[i].ID {
				t.Fatalf("page %d item %d: ordering differs: %s vs %s", pageIdx, i, page.Content[i].ID, slice.Content[i].ID)
			}
		}

		wantLast := (pageIdx+1)*4 >= 9
		if slice.Last != wantLast {
			t.Fatalf("page %d: expected last=%v, got %v", pageIdx, wantLast, slice.Last)
		}
		if slice.First != (pageIdx == 0) {
			t.Fatalf("page %d: first flag wrong", pageIdx)
		}
	}
}

// ---------------------------------------------------------------------------
// Filters
// ---------------------------------------------------------------------------

func seedCatalog(t *testing.T, svc *ProductService) {
	t.Helper()
	mustCreate(t, svc, "Ultra Laptop", "1200", catOffice.ID, alice)
	mustCreate(t, svc, "Laptop Stand", "45", catOffice.ID, bob)
	mustCreate(t, svc, "Pro Speaker", "300", catAudio.ID, alice)
	mustCreate(t, svc, "Nano Speaker", "80", catAudio.ID, bob)
	mustCreate(t, svc, "Eco Lamp", "30", catOffice.ID, alice)
}

func ids(content []ports.ProductResponse) map[string]struct{} {
	set := make(map[string]struct{}, len(content))
	for _, p := range content {
		set[p.ID] = struct{}{}
	}
	return set
}

func search(t *testing.T, svc *ProductService, input ports.SearchInput) *ports.ProductPage {
	t.Helper()
	page, err := svc.FindWithFilters(context.Background(), input)
	if err != nil {
		t.Fatalf("FindWithFilters(%+v): %v", input, err)
	}
	return page
}

func TestProductService_FindWithFilters_Composition(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedCatalog(t, svc)

	min, max := price("40"), price("400")
	combined := search(t, svc, ports.SearchInput{
		Name: "spea", MinPrice: &min, MaxPrice: &max, CategoryID: catAudio.ID, Size: 100,
	})

	// The combined filter equals the intersection of the individual filters.
	byName := ids(search(t, svc, ports.SearchInput{Name: "spea", Size: 100}).Content)
	byPrice := ids(search(t, svc, ports.SearchInput{MinPrice: &min, MaxPrice: &max, Size: 100}).Content)
	byCategory := ids(search(t, svc, ports.SearchInput{CategoryID: catAudio.ID, Size: 100}).Content)

	for _, p := range combined.Content {
		for name, set := range map[string]map[string]struct{}{"name": byName, "price": byPrice, "category": byCategory} {
			if _, ok := set[p.ID]; !ok {
				t.Fatalf("combined result %s not in individual %s result", p.ID, name)
			}
		}
	}

	var intersection int
	for id := range byName {
		_, inPrice := byPrice[id]
		_, inCat := byCategory[id]
		if inPrice && inCat {
			intersection++
		}
	}
	if intersection != len(combined.Content) {
		t.Fatalf("expected %d combined results, got %d", intersection, len(combined.Content))
	}
	if combined.TotalElements != 2 {
		t.Fatalf("expected both speakers to match, got %d", combined.TotalElements)
	}
}

func TestProductService_FindWithFilters_CaseInsensitiveName(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedCatalog(t, svc)

	page := search(t, svc, ports.SearchInput{Name: "LAPTOP", Size: 100})
	if page.TotalElements != 2 {
		t.Fatalf("expected 2 laptop matches, got %d", page.TotalElements)
	}
}

func TestProductService_FindWithFilters_InvertedBoundsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedCatalog(t, svc)

	min, max := price("500"), price("100")
	page := search(t, svc, ports.SearchInput{MinPrice: &min, MaxPrice: &max, Size: 100})
	if page.TotalElements != 0 || len(page.Content) != 0 {
		t.Fatalf("inverted bounds should match nothing, got %d", page.TotalElements)
	}
}

func TestProductService_FindByUserIDWithFilters_ScopesToOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedCatalog(t, svc)

	page, err := svc.FindByUserIDWithFilters(context.Background(), bob.ID, ports.SearchInput{Size: 100})
	if err != nil {
		t.Fatalf("FindByUserIDWithFilters: %v", err)
	}
	if page.TotalElements != 2 {
		t.Fatalf("expected 2 products for bob, got %d", page.TotalElements)
	}
	for _, p := range page.Content {
		if p.Owner.ID != bob.ID {
			t.Fatalf("foreign product leaked into per-user listing: %+v", p)
		}
	}

	// Owner constraint is ANDed with the other filters.
	page, err = svc.FindByUserIDWithFilters(context.Background(), bob.ID, ports.SearchInput{Name: "speaker", Size: 100})
	if err != nil {
		t.Fatalf("FindByUserIDWithFilters: %v", err)
	}
	if page.TotalElements != 1 || page.Content[0].Name != "Nano Speaker" {
		t.Fatalf("expected only bob's speaker, got %+v", page.Content)
	}
}

func TestProductService_FindByCategoryID(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedCatalog(t, svc)

	products, err := svc.FindByCategoryID(context.Background(), catAudio.ID)
	if err != nil {
		t.Fatalf("FindByCategoryID: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 audio products, got %d", len(products))
	}
}
