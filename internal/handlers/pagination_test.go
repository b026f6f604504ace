package handlers

import (
	"math"
	"testing"
)

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 20 {
		t.Fatalf("unexpected defaults: %d %d %v", page, limit, err)
	}
	for _, bad := range [][2]string{{"0", ""}, {"x", ""}, {"", "0"}, {"", "101"}} {
		if _, _, err := parsePaginationParams(bad[0], bad[1]); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}

func TestPageBounds(t *testing.T) {
	cases := []struct {
		total, page, limit, start, end int
	}{
		{total: 5, page: 1, limit: 2, start: 0, end: 2},
		{total: 5, page: 3, limit: 2, start: 4, end: 5},
		{total: 5, page: 4, limit: 2, start: 5, end: 5},
		{total: 0, page: 1, limit: 20, start: 0, end: 0},
		{total: 5, page: math.MaxInt, limit: 100, start: 5, end: 5},
		{total: 250, page: math.MaxInt/100 + 2, limit: 100, start: 250, end: 250},
	}
	for _, c := range cases {
		start, end := pageBounds(c.total, c.page, c.limit)
		if start != c.start || end != c.end {
			t.Fatalf("pageBounds(%d, %d, %d) = %d, %d", c.total, c.page, c.limit, start, end)
		}
	}
}
