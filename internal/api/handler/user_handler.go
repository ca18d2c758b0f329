package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketbase/catalog-api/internal/core/ports"
)

// UserHandler handles account administration endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Delete handles DELETE /api/users/:id. Admin-only; removing a user also
// removes every product they own.
//
// @Summary      Delete a user and their products (admin)
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
