// Package geometry provides the point and quadrilateral math used throughout
// the application. All coordinates are in image-pixel space unless stated
// otherwise.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Corner indices of a Quad. The order is fixed everywhere in the
// application: top-left, top-right, bottom-right, bottom-left.
const (
	CornerTopLeft = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

// Quad is a quadrilateral billboard surface, four corners in
// [TL, TR, BR, BL] order. The data model does not enforce convexity;
// a self-intersecting quad is permitted but containment results become
// undefined for the crossing region.
type Quad [4]Point2D

// QuadFromRect builds an axis-aligned quad from two opposite corners.
// The inputs may be given in any order.
func QuadFromRect(a, b Point2D) Quad {
	x1, x2 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y1, y2 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Quad{
		{X: x1, Y: y1},
		{X: x2, Y: y1},
		{X: x2, Y: y2},
		{X: x1, Y: y2},
	}
}

// Translate returns the quad rigidly shifted by delta.
func (q Quad) Translate(delta Point2D) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Add(delta)
	}
	return out
}

// Clamp returns the quad with every corner clamped to
// [0, width-1] x [0, height-1].
func (q Quad) Clamp(width, height int) Quad {
	var out Quad
	for i, p := range q {
		out[i] = Point2D{
			X: clamp(p.X, 0, float64(width-1)),
			Y: clamp(p.Y, 0, float64(height-1)),
		}
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the quad.
func (q Quad) Bounds() Rect {
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := minX, minY
	for _, p := range q[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Points returns the corners as a slice, for callers that iterate.
func (q Quad) Points() []Point2D {
	return []Point2D{q[0], q[1], q[2], q[3]}
}

// Centroid returns the average of the four corners.
func (q Quad) Centroid() Point2D {
	var sumX, sumY float64
	for _, p := range q {
		sumX += p.X
		sumY += p.Y
	}
	return Point2D{X: sumX / 4, Y: sumY / 4}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
