package viewport

import (
	"billboard-studio/pkg/geometry"
)

// DefaultHitRadius is the corner grab radius in screen pixels at zoom 1.
const DefaultHitRadius = 12

// cornerRadius is the effective screen-space grab radius at the current
// zoom. It shrinks as the view zooms in, so the handle stays proportional to
// the image, with a floor at the zoom limit so corners remain grabbable.
func cornerRadius(v View, base float64) float64 {
	r := base / v.Zoom
	if floor := base / MaxZoom; r < floor {
		r = floor
	}
	return r
}

// HitCorner returns the index of the first corner whose screen-space distance
// to pt is within the zoom-scaled grab radius.
func HitCorner(pt geometry.Point2D, corners []geometry.Point2D, v View, base float64) (int, bool) {
	radius := cornerRadius(v, base)
	for i, c := range corners {
		if pt.Distance(v.ImageToScreen(c)) <= radius {
			return i, true
		}
	}
	return 0, false
}

// HitQuad reports whether the screen point falls inside the quad body.
func HitQuad(pt geometry.Point2D, q geometry.Quad, v View) bool {
	return geometry.PointInQuad(v.ScreenToImage(pt), q)
}

// HitFrame tests committed frames topmost-first (reverse insertion order) and
// returns the index of the first hit. Priority over the uncommitted current
// buffer is the caller's concern.
func HitFrame(pt geometry.Point2D, quads []geometry.Quad, v View) (int, bool) {
	for i := len(quads) - 1; i >= 0; i-- {
		if HitQuad(pt, quads[i], v) {
			return i, true
		}
	}
	return 0, false
}
