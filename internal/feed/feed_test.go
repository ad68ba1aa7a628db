package feed

import (
	"testing"
)

func TestResponseSlice(t *testing.T) {
	res := Response{{PostID: "a"}, {PostID: "b"}, {PostID: "c"}}

	tests := []struct {
		name     string
		offset   int
		pageSize int
		want     []string
	}{
		{name: "first page", offset: 0, pageSize: 2, want: []string{"a", "b"}},
		{name: "middle", offset: 1, pageSize: 1, want: []string{"b"}},
		{name: "clamped end", offset: 2, pageSize: 10, want: []string{"c"}},
		{name: "past end", offset: 5, pageSize: 2, want: []string{}},
		{name: "whole list", offset: 0, pageSize: 3, want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := res.Slice(tt.offset, tt.pageSize)
			if len(got) != len(tt.want) {
				t.Fatalf("Slice(%d, %d) returned %d items, want %d", tt.offset, tt.pageSize, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].PostID != id {
					t.Errorf("Slice(%d, %d)[%d] = %s, want %s", tt.offset, tt.pageSize, i, got[i].PostID, id)
				}
			}
		})
	}
}

func TestConfigWithoutOffset(t *testing.T) {
	cfg := Config{"user_id": "u1", "offset": 30, "page_size": 10}
	stripped := cfg.WithoutOffset()

	if stripped.Offset() != 0 {
		t.Errorf("Expected offset removed, got %d", stripped.Offset())
	}
	if stripped.UserID() != "u1" || stripped.PageSize() != 10 {
		t.Errorf("Other fields must survive: %+v", stripped)
	}
	if cfg.Offset() != 30 {
		t.Error("Original config must not be mutated")
	}
}

func TestConfigNumericFields(t *testing.T) {
	// Fields arrive as int from generators but as float64 after a JSON
	// round trip.
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "int fields", cfg: Config{"offset": 5, "page_size": 10}},
		{name: "float fields", cfg: Config{"offset": float64(5), "page_size": float64(10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Offset() != 5 || tt.cfg.PageSize() != 10 {
				t.Errorf("Offset()=%d PageSize()=%d", tt.cfg.Offset(), tt.cfg.PageSize())
			}
		})
	}
}
