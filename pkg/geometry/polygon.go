package geometry

// PointInPolygon tests if a point is inside a polygon using ray casting
// (even-odd rule). Points on the right/bottom boundary count as outside, so
// adjacent frames sharing an edge never both claim the same pixel.
//
// The edge test is deliberately the half-open `(pi.Y > p.Y) != (pj.Y > p.Y)`
// form, horizontal-edge quirk included; hit-testing behavior depends on it.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PointInQuad tests if a point is inside a quadrilateral frame.
func PointInQuad(p Point2D, q Quad) bool {
	return PointInPolygon(p, q[:])
}
