package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/marketbase/catalog-api/internal/core/domain"
)

func TestHTTPErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound},
		{"category not found", domain.ErrCategoryNotFound, http.StatusNotFound},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"category exists", domain.ErrCategoryExists, http.StatusConflict},
		{"wrapped sentinel", fmt.Errorf("load product: %w", domain.ErrProductNotFound), http.StatusNotFound},
		{"echo http error", echo.NewHTTPError(http.StatusBadRequest, "bad payload"), http.StatusBadRequest},
		{"unknown error", errors.New("mongo exploded"), http.StatusInternalServerError},
	}

	e := echo.New()
	handle := NewHTTPErrorHandler(zerolog.Nop())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handle(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp["error"] == "" {
				t.Fatalf("expected error envelope, got %q", rec.Body.String())
			}
		})
	}
}

func TestHTTPErrorHandler_InternalErrorHidesCause(t *testing.T) {
	e := echo.New()
	handle := NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handle(errors.New("dial tcp: connection refused"), c)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["error"] != "internal server error" {
		t.Fatalf("internal cause leaked to client: %q", resp["error"])
	}
}
