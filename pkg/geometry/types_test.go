package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectIntEmptyAndArea(t *testing.T) {
	tests := []struct {
		name  string
		rect  RectInt
		empty bool
		area  int
	}{
		{"normal", RectInt{X: 1, Y: 2, Width: 10, Height: 5}, false, 50},
		{"zero width", RectInt{X: 1, Y: 2, Width: 0, Height: 5}, true, 0},
		{"negative height", RectInt{X: 1, Y: 2, Width: 10, Height: -3}, true, 0},
		{"unit", RectInt{Width: 1, Height: 1}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, tt.rect.Empty())
			assert.Equal(t, tt.area, tt.rect.Area())
		})
	}
}

func TestRectIntIntersect(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 10, Height: 10}
	b := RectInt{X: 5, Y: 5, Width: 10, Height: 10}

	inter := a.Intersect(b)
	assert.Equal(t, RectInt{X: 5, Y: 5, Width: 5, Height: 5}, inter)

	// Disjoint rectangles intersect to a degenerate rect.
	c := RectInt{X: 100, Y: 100, Width: 5, Height: 5}
	assert.True(t, a.Intersect(c).Empty())
}

func TestRectIntIoU(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 10, Height: 10}

	assert.InDelta(t, 1.0, a.IoU(a), 1e-9)

	// 5x5 overlap over a 175 union.
	b := RectInt{X: 5, Y: 5, Width: 10, Height: 10}
	assert.InDelta(t, 25.0/175.0, a.IoU(b), 1e-9)

	disjoint := RectInt{X: 50, Y: 50, Width: 10, Height: 10}
	assert.Zero(t, a.IoU(disjoint))
}

func TestRectIntClip(t *testing.T) {
	tests := []struct {
		name string
		in   RectInt
		want RectInt
	}{
		{"inside", RectInt{X: 10, Y: 10, Width: 20, Height: 20}, RectInt{X: 10, Y: 10, Width: 20, Height: 20}},
		{"negative origin", RectInt{X: -5, Y: -5, Width: 20, Height: 20}, RectInt{X: 0, Y: 0, Width: 15, Height: 15}},
		{"past right edge", RectInt{X: 90, Y: 0, Width: 20, Height: 10}, RectInt{X: 90, Y: 0, Width: 10, Height: 10}},
		{"fully outside", RectInt{X: 200, Y: 200, Width: 10, Height: 10}, RectInt{X: 100, Y: 100, Width: -100, Height: -100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clip(100, 100)
			assert.Equal(t, tt.want.X, got.X)
			assert.Equal(t, tt.want.Y, got.Y)
			if tt.want.Empty() {
				assert.True(t, got.Empty())
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRectIntCorners(t *testing.T) {
	r := RectInt{X: 2, Y: 3, Width: 4, Height: 5}
	corners := r.Corners()
	assert.Equal(t, []PointInt{
		{X: 2, Y: 3},
		{X: 6, Y: 3},
		{X: 6, Y: 8},
		{X: 2, Y: 8},
	}, corners)
}
