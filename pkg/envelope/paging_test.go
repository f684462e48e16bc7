package envelope

import (
	"strings"
	"testing"
)

func render(items []PageItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " ")
}

func TestPageItems(t *testing.T) {
	tests := []struct {
		current, last int
		want          string
	}{
		{1, 0, ""},
		{1, 1, "1"},
		{2, 5, "1 2 3 4 5"},
		{1, 197, "1 2 3 … 197"},
		{3, 197, "1 2 3 … 197"},
		{6, 197, "1 … 5 6 7 … 197"},
		{195, 197, "1 … 195 196 197"},
		{197, 197, "1 … 195 196 197"},
		{4, 6, "1 … 4 5 6"},
	}
	for _, tt := range tests {
		got := render(PageItems(tt.current, tt.last))
		if got != tt.want {
			t.Errorf("PageItems(%d, %d) = %q, want %q", tt.current, tt.last, got, tt.want)
		}
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		meta     PageMeta
		from, to int
	}{
		{PageMeta{CurrentPage: 1, PerPage: 5, Total: 0}, 0, 0},
		{PageMeta{CurrentPage: 1, PerPage: 5, Total: 3}, 1, 3},
		{PageMeta{CurrentPage: 2, PerPage: 5, Total: 23}, 6, 10},
		{PageMeta{CurrentPage: 3, PerPage: 5, Total: 12}, 11, 12},
		{PageMeta{CurrentPage: 0, PerPage: 5, Total: 12}, 1, 5},
		{PageMeta{CurrentPage: 5, PerPage: 5, Total: 12}, 0, 0},
		{PageMeta{CurrentPage: 4, PerPage: 5, Total: 15}, 0, 0},
	}
	for _, tt := range tests {
		from, to := Range(tt.meta)
		if from != tt.from || to != tt.to {
			t.Errorf("Range(%+v) = %d..%d, want %d..%d", tt.meta, from, to, tt.from, tt.to)
		}
	}
}
