package editor

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"testing"

	"billboard-studio/internal/frame"
	"billboard-studio/internal/photo"
	"billboard-studio/internal/viewport"
	"billboard-studio/pkg/colorutil"
	"billboard-studio/pkg/geometry"
)

// newTestEngine builds an engine with an 800x600 photo fitted 1:1 onto an
// 800x600 canvas, so screen and image coordinates coincide.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.SetCanvasSize(800, 600)
	e.SetPhoto(testPhoto(800, 600))
	v := e.View()
	if v.Zoom != 1 || v.Scale != 1 {
		t.Fatalf("fit: zoom=%v scale=%v, want 1:1", v.Zoom, v.Scale)
	}
	return e
}

func testPhoto(w, h int) *photo.Photo {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	return photo.FromImage(img)
}

func quadPoints(x, y, w, h float64) []geometry.Point2D {
	return []geometry.Point2D{
		{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h},
	}
}

func TestDrawGestureCommitsCurrentBuffer(t *testing.T) {
	e := newTestEngine(t)

	e.PointerDown(geometry.Point2D{X: 100, Y: 100}, false)
	if e.Mode() != ModeDrawing {
		t.Fatalf("mode = %v, want drawing", e.Mode())
	}
	e.PointerMove(geometry.Point2D{X: 150, Y: 140})
	if _, ok := e.CurrentDraft(); !ok {
		t.Error("no draft quad while drawing")
	}
	e.PointerUp(geometry.Point2D{X: 160, Y: 150})

	if e.Mode() != ModeIdle {
		t.Fatalf("mode = %v, want idle", e.Mode())
	}
	want := quadPoints(100, 100, 60, 50)
	got := e.Store().Current()
	if len(got) != 4 {
		t.Fatalf("current buffer has %d points, want 4", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("corner %d = %v, want %v", i, got[i], want[i])
		}
	}
	if e.Store().Active() != frame.ActiveCurrent {
		t.Errorf("active = %d, want current buffer", e.Store().Active())
	}
}

func TestDrawBelowMinimumSizeIsDiscarded(t *testing.T) {
	e := newTestEngine(t)

	e.PointerDown(geometry.Point2D{X: 100, Y: 100}, false)
	e.PointerUp(geometry.Point2D{X: 105, Y: 104})

	if n := len(e.Store().Current()); n != 0 {
		t.Errorf("current buffer has %d points, want 0", n)
	}
}

func TestDrawOutsideImageIsIgnored(t *testing.T) {
	e := newTestEngine(t)
	e.SetCanvasSize(1000, 800) // image now letterboxed inside the canvas

	e.PointerDown(geometry.Point2D{X: 990, Y: 790}, false)
	if e.Mode() != ModeIdle {
		t.Errorf("mode = %v, want idle", e.Mode())
	}
}

func TestCornerDragMovesBufferCorner(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Store().SetCurrent(quadPoints(100, 100, 200, 150)); err != nil {
		t.Fatal(err)
	}

	// Press within the hit radius of the bottom-right corner (300, 250).
	e.PointerDown(geometry.Point2D{X: 305, Y: 255}, false)
	if e.Mode() != ModeDraggingCorner {
		t.Fatalf("mode = %v, want dragging-corner", e.Mode())
	}
	e.PointerMove(geometry.Point2D{X: 330, Y: 280})
	e.PointerUp(geometry.Point2D{X: 330, Y: 280})

	got := e.Store().Current()[geometry.CornerBottomRight]
	want := geometry.Point2D{X: 330, Y: 280}
	if got != want {
		t.Errorf("BR corner = %v, want %v", got, want)
	}
}

func TestCornerBeatsFrameBody(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Store().Commit(quadPoints(100, 100, 200, 150), frame.DefaultConfig(), frame.SourceManual); err != nil {
		t.Fatal(err)
	}

	// (100,100) is both a corner and inside no body; (104,104) is inside
	// the body and within the corner hit radius. Corner wins.
	e.PointerDown(geometry.Point2D{X: 104, Y: 104}, false)
	if e.Mode() != ModeDraggingCorner {
		t.Errorf("mode = %v, want dragging-corner", e.Mode())
	}
	e.PointerUp(geometry.Point2D{X: 104, Y: 104})
}

func TestFrameDragTranslatesAllCorners(t *testing.T) {
	e := newTestEngine(t)
	idx, err := e.Store().Commit(quadPoints(100, 100, 200, 150), frame.DefaultConfig(), frame.SourceManual)
	if err != nil {
		t.Fatal(err)
	}

	e.PointerDown(geometry.Point2D{X: 200, Y: 175}, false)
	if e.Mode() != ModeDraggingFrame {
		t.Fatalf("mode = %v, want dragging-frame", e.Mode())
	}
	if e.Store().Active() != idx {
		t.Fatalf("active = %d, want %d", e.Store().Active(), idx)
	}
	e.PointerMove(geometry.Point2D{X: 210, Y: 180})
	e.PointerUp(geometry.Point2D{X: 210, Y: 180})

	f, err := e.Store().Frame(idx)
	if err != nil {
		t.Fatal(err)
	}
	want := quadPoints(110, 105, 200, 150)
	for i, p := range f.Points.Points() {
		if p != want[i] {
			t.Errorf("corner %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestModifierClickPicksColor(t *testing.T) {
	e := newTestEngine(t)
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	red := color.RGBA{R: 200, G: 10, B: 20, A: 255}
	img.SetRGBA(50, 50, red)
	e.SetPhoto(photo.FromImage(img))

	var picked color.RGBA
	var calls int
	e.OnColorPick(func(c color.RGBA) { picked = c; calls++ })

	before := e.View()
	e.PointerDown(geometry.Point2D{X: 50, Y: 50}, true)
	e.PointerMove(geometry.Point2D{X: 51, Y: 51})
	e.PointerMove(geometry.Point2D{X: 50, Y: 50})
	e.PointerUp(geometry.Point2D{X: 50, Y: 50})

	if calls != 1 {
		t.Fatalf("color pick fired %d times, want 1", calls)
	}
	if picked != red {
		t.Errorf("picked %v, want %v", picked, red)
	}
	if e.DetectParams().Target != red {
		t.Errorf("detect target = %v, want %v", e.DetectParams().Target, red)
	}
	// The sub-threshold jiggle panned and panned back; net zero.
	after := e.View()
	if math.Abs(after.PanX-before.PanX) > 1e-9 || math.Abs(after.PanY-before.PanY) > 1e-9 {
		t.Errorf("pan = (%v,%v), want unchanged (%v,%v)",
			after.PanX, after.PanY, before.PanX, before.PanY)
	}
}

func TestModifierDragPansWithoutPicking(t *testing.T) {
	e := newTestEngine(t)
	var calls int
	e.OnColorPick(func(color.RGBA) { calls++ })

	e.PointerDown(geometry.Point2D{X: 10, Y: 10}, true)
	e.PointerMove(geometry.Point2D{X: 40, Y: 40})
	e.PointerUp(geometry.Point2D{X: 40, Y: 40})

	if calls != 0 {
		t.Errorf("color pick fired %d times, want 0", calls)
	}
	v := e.View()
	if v.PanX != 30 || v.PanY != 30 {
		t.Errorf("pan = (%v,%v), want (30,30)", v.PanX, v.PanY)
	}
}

func TestPinchZoomAnchorsMidpoint(t *testing.T) {
	e := newTestEngine(t)

	p1 := geometry.Point2D{X: 300, Y: 300}
	p2 := geometry.Point2D{X: 500, Y: 300}
	mid := geometry.Point2D{X: 400, Y: 300}
	anchorImg := e.View().ScreenToImage(mid)

	e.PinchStart(p1, p2)
	if e.Mode() != ModePinching {
		t.Fatalf("mode = %v, want pinching", e.Mode())
	}
	e.PinchMove(geometry.Point2D{X: 200, Y: 300}, geometry.Point2D{X: 600, Y: 300})

	if got := e.View().Zoom; math.Abs(got-2) > 1e-9 {
		t.Errorf("zoom = %v, want 2", got)
	}
	back := e.View().ScreenToImage(mid)
	if back.Distance(anchorImg) > 1e-6 {
		t.Errorf("anchor drifted: %v vs %v", back, anchorImg)
	}

	// Spreading far past 8x the start distance clamps at max zoom.
	e.PinchMove(geometry.Point2D{X: 0, Y: 300}, geometry.Point2D{X: 4000, Y: 300})
	if got := e.View().Zoom; got != viewport.MaxZoom {
		t.Errorf("zoom = %v, want clamped to %v", got, viewport.MaxZoom)
	}

	e.PinchEnd()
	if e.Mode() != ModeIdle {
		t.Errorf("mode = %v, want idle", e.Mode())
	}
}

func TestDetectLoadsCurrentBufferAsGreenscreen(t *testing.T) {
	e := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.SetCanvasSize(800, 600)

	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	for y := 100; y < 180; y++ {
		for x := 150; x < 250; x++ {
			img.SetRGBA(x, y, colorutil.ChromaKey)
		}
	}
	e.SetPhoto(photo.FromImage(img))

	if err := e.Detect(); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if n := len(e.Store().Current()); n != 4 {
		t.Fatalf("current buffer has %d points, want 4", n)
	}

	idx, err := e.AddFrame()
	if err != nil {
		t.Fatalf("AddFrame: %v", err)
	}
	f, err := e.Store().Frame(idx)
	if err != nil {
		t.Fatal(err)
	}
	if f.Source != frame.SourceGreenscreen {
		t.Errorf("source = %v, want greenscreen", f.Source)
	}
	if n := len(e.Store().Current()); n != 0 {
		t.Errorf("current buffer has %d points after commit, want 0", n)
	}
}

func TestSetPhotoClearsFrames(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Store().Commit(quadPoints(10, 10, 50, 50), frame.DefaultConfig(), frame.SourceManual); err != nil {
		t.Fatal(err)
	}
	e.SetPhoto(testPhoto(400, 300))
	if e.Store().Len() != 0 {
		t.Errorf("store has %d frames after new photo, want 0", e.Store().Len())
	}
}

func TestChangeCallbackFiresOnMutation(t *testing.T) {
	e := newTestEngine(t)
	var changes int
	e.OnChange(func() { changes++ })

	e.PointerDown(geometry.Point2D{X: 100, Y: 100}, false)
	e.PointerMove(geometry.Point2D{X: 200, Y: 200})
	e.PointerUp(geometry.Point2D{X: 200, Y: 200})

	if changes == 0 {
		t.Error("change callback never fired during draw")
	}
}
