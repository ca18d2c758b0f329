package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createProductRequest struct {
	Name       string          `json:"name"        validate:"required,min=2,max=150"`
	Price      decimal.Decimal `json:"price"       validate:"required"`
	CategoryID string          `json:"category_id" validate:"required"`
}

// updateProductRequest carries a partial update: absent fields keep their
// prior values, so every field is a pointer.
type updateProductRequest struct {
	Name       *string          `json:"name,omitempty"        validate:"omitempty,min=2,max=150"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	CategoryID *string          `json:"category_id,omitempty"`
}

// --- Response types ---
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

// refResponse is the summarized view of a related record. For owners it
// deliberately exposes only id and name.
type refResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  refResponse     `json:"category"`
	Owner     refResponse     `json:"owner"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// pageResponse is the counted pagination shape: content plus totals.
type pageResponse struct {
	Content          []productResponse `json:"content"`
	Page             int               `json:"page"`
	Size             int               `json:"size"`
	NumberOfElements int               `json:"number_of_elements"`
	TotalElements    int64             `json:"total_elements"`
	TotalPages       int               `json:"total_pages"`
}

// sliceResponse is the lightweight pagination shape: no totals, only
// whether more pages exist.
type sliceResponse struct {
	Content          []productResponse `json:"content"`
	Page             int               `json:"page"`
	Size             int               `json:"size"`
	NumberOfElements int               `json:"number_of_elements"`
	First            bool              `json:"first"`
	Last             bool              `json:"last"`
	Empty            bool              `json:"empty"`
}
