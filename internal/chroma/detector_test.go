package chroma

import (
	"errors"
	"image/color"
	"log/slog"
	"math"
	"os"
	"testing"

	"billboard-studio/internal/photo"
	"billboard-studio/pkg/geometry"
)

var (
	green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	gray  = color.RGBA{R: 30, G: 30, B: 30, A: 255}
)

func newRaster(w, h int, bg color.RGBA) photo.Raster {
	pix := make([]uint8, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4] = bg.R
		pix[i*4+1] = bg.G
		pix[i*4+2] = bg.B
		pix[i*4+3] = 255
	}
	return photo.Raster{Pix: pix, Width: w, Height: h}
}

func fillRect(r photo.Raster, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*r.Width + x) * 4
			r.Pix[i] = c.R
			r.Pix[i+1] = c.G
			r.Pix[i+2] = c.B
			r.Pix[i+3] = 255
		}
	}
}

func testDetector(t *testing.T) *Detector {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewDetector(logger)
}

func TestDetectAllBlackFailsGate(t *testing.T) {
	d := testDetector(t)
	r := newRaster(200, 200, color.RGBA{A: 255})

	p := DefaultParams()
	p.Target = green
	_, err := d.Detect(r, p, nil)
	if !errors.Is(err, ErrNoDetection) {
		t.Errorf("err = %v, want ErrNoDetection", err)
	}
}

func TestDetectTinyPatchFailsGate(t *testing.T) {
	d := testDetector(t)
	r := newRaster(200, 200, gray)
	fillRect(r, 50, 50, 70, 70, green) // 400 px, below the 1000-pixel gate

	p := DefaultParams()
	p.Target = green
	p.Tolerance = 60
	_, err := d.Detect(r, p, nil)
	if !errors.Is(err, ErrNoDetection) {
		t.Errorf("err = %v, want ErrNoDetection", err)
	}
}

func TestDetectSyntheticRectangle(t *testing.T) {
	d := testDetector(t)
	r := newRaster(300, 300, gray)
	fillRect(r, 100, 100, 180, 160, green) // 80x60 solid patch

	p := DefaultParams()
	p.Target = green
	p.Tolerance = 60

	quad, err := d.Detect(r, p, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	want := geometry.Quad{
		{X: 100, Y: 100},
		{X: 179, Y: 100},
		{X: 179, Y: 159},
		{X: 100, Y: 159},
	}
	// Dilation (3px) plus the boundary ring (1px) sit the contour ~4px
	// outside the patch.
	const slack = 5.0
	for i := range quad {
		if math.Abs(quad[i].X-want[i].X) > slack || math.Abs(quad[i].Y-want[i].Y) > slack {
			t.Errorf("corner %d = %v, want within %.0fpx of %v", i, quad[i], slack, want[i])
		}
	}
}

func TestDetectRefinedRectangle(t *testing.T) {
	d := testDetector(t)
	r := newRaster(300, 300, gray)
	fillRect(r, 100, 100, 180, 160, green)

	p := DefaultParams()
	p.Target = green
	p.Tolerance = 60
	p.RefineCorners = true

	quad, err := d.Detect(r, p, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	// Refinement must not fly off; same slack as the extremal path.
	if math.Abs(quad[0].X-100) > 5 || math.Abs(quad[0].Y-100) > 5 {
		t.Errorf("refined top-left = %v", quad[0])
	}
}

func TestDetectFullFrameHasNoContour(t *testing.T) {
	d := testDetector(t)
	r := newRaster(100, 100, green) // 10000 matches but no outside ring

	p := DefaultParams()
	p.Target = green
	p.Tolerance = 10
	_, err := d.Detect(r, p, nil)
	if !errors.Is(err, ErrNoDetection) {
		t.Errorf("err = %v, want ErrNoDetection", err)
	}
}

func TestDetectRespectsExclusionMask(t *testing.T) {
	d := testDetector(t)
	r := newRaster(400, 200, gray)
	fillRect(r, 20, 20, 120, 120, green)   // already covered by a frame
	fillRect(r, 250, 50, 350, 150, green)  // the patch we want

	p := DefaultParams()
	p.Target = green
	p.Tolerance = 60

	// Without exclusion the extremal corners span both patches.
	quad, err := d.Detect(r, p, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if quad[geometry.CornerTopLeft].X > 30 {
		t.Errorf("unexcluded top-left = %v, expected to fall on the first patch", quad[0])
	}

	exclude := []geometry.Quad{
		geometry.QuadFromRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 150, Y: 199}),
	}
	quad, err = d.Detect(r, p, exclude)
	if err != nil {
		t.Fatalf("Detect with exclusion: %v", err)
	}
	want := geometry.Quad{
		{X: 250, Y: 50},
		{X: 349, Y: 50},
		{X: 349, Y: 149},
		{X: 250, Y: 149},
	}
	const slack = 5.0
	for i := range quad {
		if math.Abs(quad[i].X-want[i].X) > slack || math.Abs(quad[i].Y-want[i].Y) > slack {
			t.Errorf("excluded corner %d = %v, want within %.0fpx of %v", i, quad[i], slack, want[i])
		}
	}
}

func TestDilateChebyshev(t *testing.T) {
	w, h := 11, 11
	mask := make([]bool, w*h)
	mask[5*w+5] = true

	out := dilate(mask, w, h)
	cases := []struct {
		x, y int
		want bool
	}{
		{5, 5, true},
		{2, 2, true},  // Chebyshev distance 3
		{8, 8, true},
		{8, 2, true},
		{5, 9, false}, // distance 4
		{9, 5, false},
		{1, 5, false},
	}
	for _, c := range cases {
		if got := out[c.y*w+c.x]; got != c.want {
			t.Errorf("dilated[%d,%d] = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestBoundaryRingIsOutsideMask(t *testing.T) {
	w, h := 10, 10
	mask := make([]bool, w*h)
	for y := 4; y <= 6; y++ {
		for x := 4; x <= 6; x++ {
			mask[y*w+x] = true
		}
	}

	ring := boundaryRing(mask, w, h)
	if len(ring) != 16 { // perimeter of the 5x5 square around a 3x3 block
		t.Errorf("ring has %d points, want 16", len(ring))
	}
	for _, p := range ring {
		if mask[int(p.Y)*w+int(p.X)] {
			t.Errorf("ring point %v is inside the mask", p)
		}
	}
}

func TestExtremalCorners(t *testing.T) {
	points := []geometry.Point2D{
		{X: 50, Y: 10},  // top-left-most by x+y
		{X: 90, Y: 15},  // top-right-most by x-y
		{X: 85, Y: 95},  // bottom-right-most by x+y
		{X: 20, Y: 80},  // bottom-left-most by x-y
		{X: 60, Y: 50},  // interior noise
		{X: 55, Y: 45},
	}
	q := extremalCorners(points)
	want := geometry.Quad{
		{X: 50, Y: 10}, {X: 90, Y: 15}, {X: 85, Y: 95}, {X: 20, Y: 80},
	}
	if q != want {
		t.Errorf("extremalCorners = %v, want %v", q, want)
	}
}

func TestPadForPerspectiveTopWider(t *testing.T) {
	// topWidth/bottomWidth = 1.2: the narrower bottom edge moves down,
	// the top edge never moves.
	q := geometry.Quad{
		{X: 0, Y: 0},
		{X: 120, Y: 0},
		{X: 110, Y: 100},
		{X: 10, Y: 100},
	}
	out := padForPerspective(q, 10)

	if out[geometry.CornerTopLeft].Y != 0 || out[geometry.CornerTopRight].Y != 0 {
		t.Errorf("top edge moved: %v %v", out[0], out[1])
	}
	wantPad := math.Floor(0.2 * 10)
	if out[geometry.CornerBottomRight].Y != 100+wantPad || out[geometry.CornerBottomLeft].Y != 100+wantPad {
		t.Errorf("bottom edge = %v %v, want y = %v", out[2], out[3], 100+wantPad)
	}
}

func TestPadForPerspectiveBottomWider(t *testing.T) {
	q := geometry.Quad{
		{X: 10, Y: 10},
		{X: 110, Y: 10},
		{X: 125, Y: 110},
		{X: 5, Y: 110},
	}
	out := padForPerspective(q, 10)

	if out[geometry.CornerBottomLeft].Y != 110 || out[geometry.CornerBottomRight].Y != 110 {
		t.Errorf("bottom edge moved: %v %v", out[2], out[3])
	}
	if out[geometry.CornerTopLeft].Y >= 10 {
		t.Errorf("top edge did not move up: %v", out[0])
	}
}

func TestPadForPerspectiveUnevenSides(t *testing.T) {
	// Equal widths, left side 20% taller: right side pushed outward.
	q := geometry.Quad{
		{X: 0, Y: 0},
		{X: 100, Y: 10},
		{X: 100, Y: 110},
		{X: 0, Y: 120},
	}
	out := padForPerspective(q, 10)

	if out[geometry.CornerTopLeft].X != 0 || out[geometry.CornerBottomLeft].X != 0 {
		t.Errorf("left side moved: %v %v", out[0], out[3])
	}
	if out[geometry.CornerTopRight].X <= 100 || out[geometry.CornerBottomRight].X <= 100 {
		t.Errorf("right side not pushed outward: %v %v", out[1], out[2])
	}
}

func TestPadForPerspectiveWithinThreshold(t *testing.T) {
	// 5% deviation stays untouched.
	q := geometry.Quad{
		{X: 0, Y: 0},
		{X: 105, Y: 0},
		{X: 100, Y: 100},
		{X: 0, Y: 100},
	}
	if out := padForPerspective(q, 30); out != q {
		t.Errorf("quad within threshold was padded: %v", out)
	}
}

func TestRefineCornersStableOnRectangle(t *testing.T) {
	// A clean rectangular ring: refinement must stay within ~1.5px of the
	// extremal corners.
	var ring []geometry.Point2D
	for x := 10; x <= 110; x++ {
		ring = append(ring, geometry.Point2D{X: float64(x), Y: 10})
		ring = append(ring, geometry.Point2D{X: float64(x), Y: 60})
	}
	for y := 10; y <= 60; y++ {
		ring = append(ring, geometry.Point2D{X: 10, Y: float64(y)})
		ring = append(ring, geometry.Point2D{X: 110, Y: float64(y)})
	}

	q := extremalCorners(ring)
	refined := refineCorners(ring, q)
	for i := range refined {
		if refined[i].Distance(q[i]) > 1.5 {
			t.Errorf("corner %d drifted: %v -> %v", i, q[i], refined[i])
		}
	}
}

func TestDetectEmptyRaster(t *testing.T) {
	d := testDetector(t)
	_, err := d.Detect(photo.Raster{}, DefaultParams(), nil)
	if !errors.Is(err, ErrNoDetection) {
		t.Errorf("err = %v, want ErrNoDetection", err)
	}
}
