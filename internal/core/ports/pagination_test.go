package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePageRequest_Defaults(t *testing.T) {
	req := ResolvePageRequest(0, 0, nil)

	assert.Equal(t, 0, req.Page)
	assert.Equal(t, DefaultSize, req.Size)
	assert.Equal(t, []SortKey{{Field: "id"}}, req.Sort)
}

func TestResolvePageRequest_Clamps(t *testing.T) {
	req := ResolvePageRequest(-3, 5000, nil)

	assert.Equal(t, 0, req.Page)
	assert.Equal(t, MaxSize, req.Size)
}

func TestResolvePageRequest_SortTokens(t *testing.T) {
	tests := []struct {
		name string
		sort []string
		want []SortKey
	}{
		{
			name: "explicit directions",
			sort: []string{"price,desc", "name,asc"},
			want: []SortKey{{Field: "price", Desc: true}, {Field: "name"}},
		},
		{
			name: "direction defaults to asc",
			sort: []string{"name"},
			want: []SortKey{{Field: "name"}},
		},
		{
			name: "direction is case-insensitive",
			sort: []string{"createdAt,DESC"},
			want: []SortKey{{Field: "createdAt", Desc: true}},
		},
		{
			name: "unknown direction treated as asc",
			sort: []string{"price,sideways"},
			want: []SortKey{{Field: "price"}},
		},
		{
			name: "blank tokens skipped, fallback to id",
			sort: []string{"", " ,desc"},
			want: []SortKey{{Field: "id"}},
		},
		{
			name: "unknown fields pass through uninterpreted",
			sort: []string{"warehouse_rank,desc"},
			want: []SortKey{{Field: "warehouse_rank", Desc: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ResolvePageRequest(0, 10, tt.sort)
			assert.Equal(t, tt.want, req.Sort)
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	req := ResolvePageRequest(3, 25, nil)
	assert.Equal(t, int64(75), req.Offset())
}
