package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketbase/catalog-api/internal/core/ports"
)

// CategoryHandler handles HTTP requests for category operations.
type CategoryHandler struct {
	service ports.CategoryService
}

func NewCategoryHandler(service ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

type createCategoryRequest struct {
	Name        string `json:"name"        validate:"required,min=2,max=150"`
	Description string `json:"description" validate:"max=500"`
}

// Create handles POST /api/categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCategoryRequest  true  "Category details"
// @Success      201   {object}  domain.Category
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.service.Create(c.Request().Context(), ports.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

// FindAll handles GET /api/categories.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Category
// @Router       /api/categories [get]
func (h *CategoryHandler) FindAll(c echo.Context) error {
	categories, err := h.service.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

// Get handles GET /api/categories/:id.
//
// @Summary      Get a category by id
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Category id"
// @Success      200  {object}  domain.Category
// @Failure      404  {object}  errorResponse
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	category, err := h.service.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}
