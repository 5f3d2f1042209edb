package pager

import "testing"

func TestPageSize(t *testing.T) {
	tests := []struct {
		height float64
		row    float64
		want   int
	}{
		{700, 38, 15},
		{100, 38, 3},
		{70, 38, 3},
		{1000, 89, 9},
		{500, 0, 3},
	}
	for _, tt := range tests {
		if got := PageSize(tt.height, tt.row, HeaderHeight, MinimumPageSize); got != tt.want {
			t.Errorf("PageSize(%v, %v) = %d, want %d", tt.height, tt.row, got, tt.want)
		}
	}
}

func TestEstimatorFollowsResize(t *testing.T) {
	screen := NewScreen(700)
	e := NewEstimator(screen, 38, HeaderHeight, MinimumPageSize)
	if e.PageSize() != 15 {
		t.Fatalf("initial page size %d", e.PageSize())
	}

	var got []int
	e.Start(func(size int) { got = append(got, size) })
	screen.Resize(400)
	screen.Resize(400)
	screen.Resize(401)
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("unexpected notifications %v", got)
	}
	if e.PageSize() != 7 {
		t.Fatalf("page size %d, want 7", e.PageSize())
	}

	e.Close()
	screen.Resize(1000)
	if len(got) != 1 {
		t.Fatalf("notified after Close: %v", got)
	}
	if e.PageSize() != 7 {
		t.Fatalf("page size changed after Close: %d", e.PageSize())
	}
}
