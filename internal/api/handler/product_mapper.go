package handler

import (
	"github.com/marketbase/catalog-api/internal/core/ports"
)

// --- Service output → Response ---

func toProductResponse(p ports.ProductResponse) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  refResponse{ID: p.Category.ID, Name: p.Category.Name},
		Owner:     refResponse{ID: p.Owner.ID, Name: p.Owner.Name},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductResponses(products []ports.ProductResponse) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toPageResponse(page *ports.ProductPage) pageResponse {
	return pageResponse{
		Content:          toProductResponses(page.Content),
		Page:             page.PageMeta.Number,
		Size:             page.PageMeta.Size,
		NumberOfElements: page.PageMeta.NumberOfElements,
		TotalElements:    page.TotalElements,
		TotalPages:       page.TotalPages,
	}
}

func toSliceResponse(slice *ports.ProductSlice) sliceResponse {
	return sliceResponse{
		Content:          toProductResponses(slice.Content),
		Page:             slice.PageMeta.Number,
		Size:             slice.PageMeta.Size,
		NumberOfElements: slice.PageMeta.NumberOfElements,
		First:            slice.First,
		Last:             slice.Last,
		Empty:            slice.Empty,
	}
}
