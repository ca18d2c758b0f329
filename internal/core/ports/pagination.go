package ports

import "strings"

const (
	// DefaultPage is the zero-based page index used when none is supplied.
	DefaultPage = 0
	// DefaultSize is the page size used when none is supplied.
	DefaultSize = 10
	// MaxSize caps the page size to keep a single query bounded.
	MaxSize = 100
	// DefaultSortField orders results by id when no sort is supplied.
	DefaultSortField = "id"
)

// SortKey is a single (field, direction) ordering term.
type SortKey struct {
	Field string
	Desc  bool
}

// PageRequest is a normalized, deterministic page specification.
type PageRequest struct {
	Page int // zero-based
	Size int
	Sort []SortKey
}

// Offset returns the number of records to skip for this page.
func (r PageRequest) Offset() int64 {
	return int64(r.Page) * int64(r.Size)
}

// ResolvePageRequest normalizes raw pagination parameters into a PageRequest.
// Negative pages clamp to 0, non-positive sizes fall back to DefaultSize, and
// sizes above MaxSize are capped. Each sort token has the form
// "field" or "field,direction" with direction one of asc/desc
// (case-insensitive, asc when omitted). Field names are passed through
// uninterpreted; unknown fields are the store's problem, not ours.
// With no usable tokens the result sorts by id ascending.
func ResolvePageRequest(page, size int, sort []string) PageRequest {
	if page < 0 {
		page = DefaultPage
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	keys := make([]SortKey, 0, len(sort))
	for _, token := range sort {
		parts := strings.SplitN(token, ",", 2)
		field := strings.TrimSpace(parts[0])
		if field == "" {
			continue
		}
		desc := len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc")
		keys = append(keys, SortKey{Field: field, Desc: desc})
	}
	if len(keys) == 0 {
		keys = []SortKey{{Field: DefaultSortField}}
	}

	return PageRequest{Page: page, Size: size, Sort: keys}
}
