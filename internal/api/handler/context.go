package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

// ctxPrincipal rebuilds the authenticated principal from the claims the
// Auth middleware injected. An empty subject means the middleware never
// ran or the token carried no identity; either way the request cannot
// proceed.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	name, _ := c.Get("user_name").(string)
	roles, _ := c.Get("roles").([]string)

	return domain.Principal{ID: userID, Name: name, Roles: roles}, nil
}
