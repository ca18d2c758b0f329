package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/marketbase/catalog-api/internal/api/metrics"
	"github.com/marketbase/catalog-api/internal/core/domain"
	"github.com/marketbase/catalog-api/internal/core/ports"
)

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /api/products.
//
// @Summary      Create a product owned by the authenticated user
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product details"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), ports.CreateProductInput{
		Name:       req.Name,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}, actor)
	if err != nil {
		return err
	}

	metrics.ProductsCreatedTotal.WithLabelValues(created.Category.Name).Inc()
	return c.JSON(http.StatusCreated, toProductResponse(*created))
}

// FindAll handles GET /api/products. Admin-only; the route is wrapped in
// the RBAC middleware before this runs.
//
// @Summary      List every product without pagination (admin)
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   productResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/products [get]
func (h *ProductHandler) FindAll(c echo.Context) error {
	products, err := h.service.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// FindAllPaginated handles GET /api/products/paginated.
//
// @Summary      List products with counted pagination
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int       false  "Zero-based page index"  default(0)
// @Param        size  query     int       false  "Page size"              default(10)
// @Param        sort  query     []string  false  "Sort keys, e.g. price,desc"
// @Success      200   {object}  pageResponse
// @Router       /api/products/paginated [get]
func (h *ProductHandler) FindAllPaginated(c echo.Context) error {
	page, size, sort := paginationParams(c)

	result, err := h.service.FindAllPaginated(c.Request().Context(), page, size, sort)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// FindAllSlice handles GET /api/products/slice: same content as the
// paginated variant, but without the count query.
//
// @Summary      List products with slice pagination (no totals)
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int       false  "Zero-based page index"  default(0)
// @Param        size  query     int       false  "Page size"              default(10)
// @Param        sort  query     []string  false  "Sort keys, e.g. price,desc"
// @Success      200   {object}  sliceResponse
// @Router       /api/products/slice [get]
func (h *ProductHandler) FindAllSlice(c echo.Context) error {
	page, size, sort := paginationParams(c)

	result, err := h.service.FindAllSlice(c.Request().Context(), page, size, sort)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSliceResponse(result))
}

// Search handles GET /api/products/search.
//
// @Summary      Search products with filters and counted pagination
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        name        query     string    false  "Case-insensitive name substring"
// @Param        minPrice    query     number    false  "Inclusive lower price bound"
// @Param        maxPrice    query     number    false  "Inclusive upper price bound"
// @Param        categoryId  query     string    false  "Category id"
// @Param        page        query     int       false  "Zero-based page index"
// @Param        size        query     int       false  "Page size"
// @Param        sort        query     []string  false  "Sort keys"
// @Success      200         {object}  pageResponse
// @Failure      400         {object}  errorResponse
// @Router       /api/products/search [get]
func (h *ProductHandler) Search(c echo.Context) error {
	input, err := searchParams(c)
	if err != nil {
		return err
	}

	result, err := h.service.FindWithFilters(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// SearchByUser handles GET /api/products/user/:userId: the same search,
// scoped to one owner.
//
// @Summary      Search one user's products with filters and pagination
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Owner user id"
// @Success      200     {object}  pageResponse
// @Failure      400     {object}  errorResponse
// @Router       /api/products/user/{userId} [get]
func (h *ProductHandler) SearchByUser(c echo.Context) error {
	input, err := searchParams(c)
	if err != nil {
		return err
	}

	result, err := h.service.FindByUserIDWithFilters(c.Request().Context(), c.Param("userId"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// Get handles GET /api/products/:id.
//
// @Summary      Get a product by id
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.service.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(*product))
}

// FindByCategory handles GET /api/products/category/:categoryId.
//
// @Summary      List products in a category
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        categoryId  path   string  true  "Category id"
// @Success      200         {array}  productResponse
// @Router       /api/products/category/{categoryId} [get]
func (h *ProductHandler) FindByCategory(c echo.Context) error {
	products, err := h.service.FindByCategoryID(c.Request().Context(), c.Param("categoryId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// Update handles PUT /api/products/:id. Only the owner or an elevated
// role may mutate; absent body fields keep their prior values.
//
// @Summary      Update a product (owner or elevated role)
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  productResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateProductInput{
		Name:       req.Name,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}, actor)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.MutationsDeniedTotal.WithLabelValues("update").Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(*updated))
}

// Delete handles DELETE /api/products/:id under the same authorization
// rule as Update.
//
// @Summary      Delete a product (owner or elevated role)
// @Tags         products
// @Security     BearerAuth
// @Param        id  path  string  true  "Product id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.MutationsDeniedTotal.WithLabelValues("delete").Inc()
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Query parameter parsing ---

func paginationParams(c echo.Context) (page, size int, sort []string) {
	page = intParam(c, "page", 0)
	size = intParam(c, "size", 10)
	sort = c.QueryParams()["sort"]
	return page, size, sort
}

func intParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func searchParams(c echo.Context) (ports.SearchInput, error) {
	page, size, sort := paginationParams(c)
	input := ports.SearchInput{
		Name:       c.QueryParam("name"),
		CategoryID: c.QueryParam("categoryId"),
		Page:       page,
		Size:       size,
		Sort:       sort,
	}

	var err error
	if input.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		return input, err
	}
	if input.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		return input, err
	}
	return input, nil
}

func priceParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return &d, nil
}
