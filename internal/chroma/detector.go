// Package chroma implements green-screen frame detection: classifying pixels
// by RGB distance to a key color, closing the mask by dilation, walking the
// outer boundary ring, and picking the quadrilateral's extremal corners.
package chroma

import (
	"errors"
	"image/color"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"billboard-studio/internal/photo"
	"billboard-studio/pkg/colorutil"
	"billboard-studio/pkg/geometry"
)

const (
	// minMatchedPixels gates out spurious tiny-patch detections.
	minMatchedPixels = 1000

	// dilationRadius is the Chebyshev (square) neighborhood used to close
	// small gaps in the color mask before contour extraction.
	dilationRadius = 3

	minContourPoints = 4

	// padRatioThreshold is how far the top/bottom (or left/right) length
	// ratio may deviate from 1.0 before perspective padding kicks in.
	padRatioThreshold = 0.10
)

// ErrNoDetection is the normal no-result outcome: not enough matching pixels
// or no usable contour. Callers keep prior state and surface guidance (e.g.
// "adjust tolerance").
var ErrNoDetection = errors.New("chroma: no region detected")

// Params controls a detection run.
type Params struct {
	Target          color.RGBA
	Tolerance       int // RGB Euclidean distance, typical 10..100
	DepthMultiplier int // perspective padding strength, typical 5..30
	RefineCorners   bool
	Workers         int // 0 = NumCPU
}

// DefaultParams returns the detection defaults used by the editor.
func DefaultParams() Params {
	return Params{
		Target:          colorutil.ChromaKey,
		Tolerance:       40,
		DepthMultiplier: 10,
	}
}

// Detector runs green-screen detection over a photo raster.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a detector. A nil logger falls back to slog's default.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// Detect finds the quadrilateral of the largest chroma-key region not covered
// by any excluded frame. Returns the four corners in [TL, TR, BR, BL] order,
// or ErrNoDetection.
func (d *Detector) Detect(r photo.Raster, p Params, exclude []geometry.Quad) (geometry.Quad, error) {
	if r.Empty() {
		return geometry.Quad{}, ErrNoDetection
	}

	mask, matched := d.colorMask(r, p, exclude)
	if matched < minMatchedPixels {
		d.logger.Info("chroma detection below pixel gate",
			"matched", matched, "gate", minMatchedPixels)
		return geometry.Quad{}, ErrNoDetection
	}

	dilated := dilate(mask, r.Width, r.Height)
	contour := boundaryRing(dilated, r.Width, r.Height)
	if len(contour) < minContourPoints {
		d.logger.Info("chroma detection has no usable contour",
			"contourPoints", len(contour))
		return geometry.Quad{}, ErrNoDetection
	}

	quad := extremalCorners(contour)
	if p.RefineCorners {
		quad = refineCorners(contour, quad)
	}
	quad = padForPerspective(quad, float64(p.DepthMultiplier))

	quad = quad.Clamp(r.Width, r.Height)
	d.logger.Info("chroma region detected",
		"matched", matched, "contourPoints", len(contour),
		"topLeft", quad[geometry.CornerTopLeft],
		"bottomRight", quad[geometry.CornerBottomRight])
	return quad, nil
}

// colorMask classifies every non-excluded pixel by Euclidean RGB distance to
// the target color. The scan is split into row bands across workers; a
// multi-megapixel photo is the one operation here worth parallelizing.
func (d *Detector) colorMask(r photo.Raster, p Params, exclude []geometry.Quad) ([]bool, int) {
	w, h := r.Width, r.Height
	mask := make([]bool, w*h)

	// Pre-computed bounding boxes keep the point-in-polygon exclusion test
	// off the vast majority of pixels.
	bounds := make([]geometry.Rect, len(exclude))
	for i, q := range exclude {
		bounds[i] = q.Bounds()
	}

	tr, tg, tb := float64(p.Target.R), float64(p.Target.G), float64(p.Target.B)
	tolSq := float64(p.Tolerance) * float64(p.Tolerance)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > h {
		workers = h
	}
	if workers < 1 {
		workers = 1
	}

	counts := make([]int, workers)
	var g errgroup.Group
	rowsPerBand := (h + workers - 1) / workers

	for band := 0; band < workers; band++ {
		y0 := band * rowsPerBand
		y1 := y0 + rowsPerBand
		if y1 > h {
			y1 = h
		}
		if y0 >= y1 {
			continue
		}
		band := band
		g.Go(func() error {
			n := 0
			for y := y0; y < y1; y++ {
				row := y * w * 4
				for x := 0; x < w; x++ {
					if excluded(float64(x), float64(y), exclude, bounds) {
						continue
					}
					i := row + x*4
					dr := float64(r.Pix[i]) - tr
					dg := float64(r.Pix[i+1]) - tg
					db := float64(r.Pix[i+2]) - tb
					if dr*dr+dg*dg+db*db <= tolSq {
						mask[y*w+x] = true
						n++
					}
				}
			}
			counts[band] = n
			return nil
		})
	}
	_ = g.Wait() // band workers never fail

	matched := 0
	for _, n := range counts {
		matched += n
	}
	return mask, matched
}

func excluded(x, y float64, quads []geometry.Quad, bounds []geometry.Rect) bool {
	p := geometry.Point2D{X: x, Y: y}
	for i, q := range quads {
		if !bounds[i].Contains(p) {
			continue
		}
		if geometry.PointInQuad(p, q) {
			return true
		}
	}
	return false
}

// dilate marks a pixel when any matched pixel lies within the Chebyshev
// dilationRadius. The square neighborhood separates into a horizontal pass
// followed by a vertical pass.
func dilate(mask []bool, w, h int) []bool {
	horiz := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			if !mask[row+x] {
				continue
			}
			x0, x1 := x-dilationRadius, x+dilationRadius
			if x0 < 0 {
				x0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			for xx := x0; xx <= x1; xx++ {
				horiz[row+xx] = true
			}
		}
	}

	out := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !horiz[y*w+x] {
				continue
			}
			y0, y1 := y-dilationRadius, y+dilationRadius
			if y0 < 0 {
				y0 = 0
			}
			if y1 >= h {
				y1 = h - 1
			}
			for yy := y0; yy <= y1; yy++ {
				out[yy*w+x] = true
			}
		}
	}
	return out
}

// boundaryRing collects the pixels just outside the dilated region: not in
// the mask themselves but 8-connected to at least one pixel that is.
func boundaryRing(dilated []bool, w, h int) []geometry.Point2D {
	var ring []geometry.Point2D
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if dilated[y*w+x] {
				continue
			}
			if touchesMask(dilated, w, h, x, y) {
				ring = append(ring, geometry.Point2D{X: float64(x), Y: float64(y)})
			}
		}
	}
	return ring
}

func touchesMask(mask []bool, w, h, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			if mask[ny*w+nx] {
				return true
			}
		}
	}
	return false
}

// extremalCorners picks the quad corners by projecting contour points onto
// the two diagonal axes: min/max of x+y give top-left and bottom-right,
// max/min of x-y give top-right and bottom-left. Robust to noisy contours
// without a full convex-hull pass.
func extremalCorners(points []geometry.Point2D) geometry.Quad {
	tl, tr, br, bl := points[0], points[0], points[0], points[0]
	for _, p := range points[1:] {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X-p.Y > tr.X-tr.Y {
			tr = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.X-p.Y < bl.X-bl.Y {
			bl = p
		}
	}
	return geometry.Quad{tl, tr, br, bl}
}

// padForPerspective widens the shorter of two opposite edges. A billboard
// seen at a shallow angle projects unequal parallel edges; pushing the
// narrow edge outward by deviation*depth approximates the true rectangular
// extent. Pad amounts are floored to whole pixels.
func padForPerspective(q geometry.Quad, depth float64) geometry.Quad {
	topW := math.Abs(q[geometry.CornerTopRight].X - q[geometry.CornerTopLeft].X)
	botW := math.Abs(q[geometry.CornerBottomRight].X - q[geometry.CornerBottomLeft].X)
	if topW > 0 && botW > 0 {
		ratio := topW / botW
		if ratio > 1+padRatioThreshold {
			// Top wider: push the bottom edge down.
			pad := math.Floor((ratio - 1) * depth)
			q[geometry.CornerBottomRight].Y += pad
			q[geometry.CornerBottomLeft].Y += pad
		} else if ratio < 1-padRatioThreshold {
			// Bottom wider: push the top edge up.
			pad := math.Floor((1/ratio - 1) * depth)
			q[geometry.CornerTopLeft].Y -= pad
			q[geometry.CornerTopRight].Y -= pad
		}
	}

	leftH := math.Abs(q[geometry.CornerBottomLeft].Y - q[geometry.CornerTopLeft].Y)
	rightH := math.Abs(q[geometry.CornerBottomRight].Y - q[geometry.CornerTopRight].Y)
	if leftH > 0 && rightH > 0 {
		ratio := leftH / rightH
		if ratio > 1+padRatioThreshold {
			// Left taller: push the right side outward.
			pad := math.Floor((ratio - 1) * depth)
			q[geometry.CornerTopRight].X += pad
			q[geometry.CornerBottomRight].X += pad
		} else if ratio < 1-padRatioThreshold {
			// Right taller: push the left side outward.
			pad := math.Floor((1/ratio - 1) * depth)
			q[geometry.CornerTopLeft].X -= pad
			q[geometry.CornerBottomLeft].X -= pad
		}
	}
	return q
}
