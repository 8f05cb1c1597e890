// Package geometry provides basic geometric types used throughout the application.
package geometry

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RectInt represents an axis-aligned rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a new RectInt.
func NewRectInt(x, y, width, height int) RectInt {
	return RectInt{X: x, Y: y, Width: width, Height: height}
}

// Empty returns true if the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the rectangle area, or 0 for degenerate rectangles.
func (r RectInt) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Right returns the exclusive right edge (X + Width).
func (r RectInt) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge (Y + Height).
func (r RectInt) Bottom() int {
	return r.Y + r.Height
}

// Intersect returns the intersection of two rectangles.
// The result is degenerate (Empty) when they do not overlap.
func (r RectInt) Intersect(other RectInt) RectInt {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.Right(), other.Right())
	y2 := min(r.Bottom(), other.Bottom())
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// IoU returns the intersection-over-union of two rectangles in [0,1].
func (r RectInt) IoU(other RectInt) float64 {
	inter := r.Intersect(other).Area()
	if inter == 0 {
		return 0
	}
	union := r.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Clip returns the rectangle clipped to the image bounds [0,width) x [0,height).
func (r RectInt) Clip(width, height int) RectInt {
	x1 := max(0, r.X)
	y1 := max(0, r.Y)
	x2 := min(width, r.Right())
	y2 := min(height, r.Bottom())
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Corners returns the four corner points in clockwise order from top-left.
func (r RectInt) Corners() []PointInt {
	return []PointInt{
		{X: r.X, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}
}
