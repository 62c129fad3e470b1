package chroma

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"billboard-studio/pkg/geometry"
)

// refineBand is how far (in pixels) a contour point may sit from an edge and
// still contribute to that edge's line fit. Matches the dilation offset.
const refineBand = 2 * dilationRadius

// minFitPoints is the least contour support an edge needs before its fitted
// line replaces the extremal estimate.
const minFitPoints = 8

// edgeLine is a line in point-direction form.
type edgeLine struct {
	p, d geometry.Point2D
}

// refineCorners replaces each extremal corner with the intersection of
// least-squares lines fitted to the contour points along its two edges.
// Extremal selection keys on single pixels; the fit averages out mask noise
// along the whole edge. Any edge without enough support, or any degenerate
// intersection, keeps the extremal result.
func refineCorners(contour []geometry.Point2D, q geometry.Quad) geometry.Quad {
	lines := [4]edgeLine{}
	for i := 0; i < 4; i++ {
		a, b := q[i], q[(i+1)%4]
		pts := pointsNearSegment(contour, a, b, refineBand)
		if fitted, ok := fitLine(pts, b.Sub(a)); ok {
			lines[i] = fitted
		} else {
			lines[i] = edgeLine{p: a, d: b.Sub(a)}
		}
	}

	out := q
	// Corner i is the meet of the incoming edge (i+3)%4 and outgoing edge i.
	for i := 0; i < 4; i++ {
		if pt, ok := intersectLines(lines[(i+3)%4], lines[i]); ok {
			out[i] = pt
		}
	}
	return out
}

// pointsNearSegment keeps contour points within band of the segment a-b.
func pointsNearSegment(points []geometry.Point2D, a, b geometry.Point2D, band float64) []geometry.Point2D {
	d := b.Sub(a)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return nil
	}

	var near []geometry.Point2D
	for _, p := range points {
		t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		closest := geometry.Point2D{X: a.X + t*d.X, Y: a.Y + t*d.Y}
		if p.Distance(closest) <= band {
			near = append(near, p)
		}
	}
	return near
}

// fitLine least-squares fits a line through the points, parameterized by the
// dominant axis of the edge direction so near-vertical edges stay stable.
func fitLine(points []geometry.Point2D, dir geometry.Point2D) (edgeLine, bool) {
	if len(points) < minFitPoints {
		return edgeLine{}, false
	}

	n := len(points)
	A := mat.NewDense(n, 2, nil)
	B := mat.NewVecDense(n, nil)

	horizontal := math.Abs(dir.X) >= math.Abs(dir.Y)
	for i, p := range points {
		if horizontal {
			// y = a*x + b
			A.Set(i, 0, p.X)
			A.Set(i, 1, 1)
			B.SetVec(i, p.Y)
		} else {
			// x = a*y + b
			A.Set(i, 0, p.Y)
			A.Set(i, 1, 1)
			B.SetVec(i, p.X)
		}
	}

	var qr mat.QR
	qr.Factorize(A)
	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return edgeLine{}, false
	}

	a, b := params.AtVec(0), params.AtVec(1)
	if horizontal {
		return edgeLine{p: geometry.Point2D{X: 0, Y: b}, d: geometry.Point2D{X: 1, Y: a}}, true
	}
	return edgeLine{p: geometry.Point2D{X: b, Y: 0}, d: geometry.Point2D{X: a, Y: 1}}, true
}

// intersectLines solves l1.p + t*l1.d == l2.p + u*l2.d.
func intersectLines(l1, l2 edgeLine) (geometry.Point2D, bool) {
	denom := l1.d.X*l2.d.Y - l1.d.Y*l2.d.X
	if math.Abs(denom) < 1e-10 {
		return geometry.Point2D{}, false
	}
	dx := l2.p.X - l1.p.X
	dy := l2.p.Y - l1.p.Y
	t := (dx*l2.d.Y - dy*l2.d.X) / denom
	return geometry.Point2D{X: l1.p.X + t*l1.d.X, Y: l1.p.Y + t*l1.d.Y}, true
}
