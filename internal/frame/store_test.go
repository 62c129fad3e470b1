package frame

import (
	"errors"
	"testing"

	"billboard-studio/pkg/geometry"
)

func quadPoints(x, y, w, h float64) []geometry.Point2D {
	return []geometry.Point2D{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

func TestCommitRejectsWrongPointCount(t *testing.T) {
	s := NewStore()

	for _, n := range []int{0, 1, 3, 5} {
		pts := quadPoints(0, 0, 10, 10)[:min(n, 4)]
		for len(pts) < n {
			pts = append(pts, geometry.Point2D{})
		}
		_, err := s.Commit(pts, DefaultConfig(), SourceManual)
		if !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("Commit with %d points: err = %v, want ErrInvalidFrame", n, err)
		}
		if s.Len() != 0 {
			t.Fatalf("store mutated by rejected commit (%d points)", n)
		}
	}

	if _, err := s.Commit(quadPoints(0, 0, 10, 10), DefaultConfig(), SourceManual); err != nil {
		t.Fatalf("valid commit failed: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestCommitCurrentSelectsNewFrame(t *testing.T) {
	s := NewStore()
	if err := s.SetCurrent(quadPoints(5, 5, 20, 20)); err != nil {
		t.Fatal(err)
	}

	idx, err := s.CommitCurrent(SourceGreenscreen)
	if err != nil {
		t.Fatalf("CommitCurrent: %v", err)
	}
	if idx != 0 || s.Active() != 0 {
		t.Errorf("idx = %d, active = %d, want 0, 0", idx, s.Active())
	}
	if len(s.Current()) != 0 {
		t.Error("current buffer should be empty after commit")
	}
	f, _ := s.Frame(0)
	if f.Source != SourceGreenscreen {
		t.Errorf("source = %v, want greenscreen", f.Source)
	}
}

func TestActiveTargetMutations(t *testing.T) {
	s := NewStore()
	s.Commit(quadPoints(0, 0, 10, 10), DefaultConfig(), SourceManual)
	s.Commit(quadPoints(50, 50, 10, 10), DefaultConfig(), SourceManual)

	if err := s.Select(1); err != nil {
		t.Fatal(err)
	}
	if err := s.MoveCorner(geometry.CornerTopRight, geometry.Point2D{X: 70, Y: 48}); err != nil {
		t.Fatal(err)
	}
	f, _ := s.Frame(1)
	if f.Points[geometry.CornerTopRight] != (geometry.Point2D{X: 70, Y: 48}) {
		t.Errorf("corner not moved: %v", f.Points[geometry.CornerTopRight])
	}

	s.TranslateActive(geometry.Point2D{X: -5, Y: 5})
	f, _ = s.Frame(1)
	if f.Points[geometry.CornerTopLeft] != (geometry.Point2D{X: 45, Y: 55}) {
		t.Errorf("translate moved top-left to %v, want (45,55)", f.Points[geometry.CornerTopLeft])
	}

	// Frame 0 must be untouched.
	f0, _ := s.Frame(0)
	if f0.Points[geometry.CornerTopLeft] != (geometry.Point2D{X: 0, Y: 0}) {
		t.Errorf("inactive frame mutated: %v", f0.Points[geometry.CornerTopLeft])
	}
}

func TestMoveCornerOnCurrentBuffer(t *testing.T) {
	s := NewStore()
	s.SetCurrent(quadPoints(0, 0, 10, 10))

	if err := s.MoveCorner(geometry.CornerBottomLeft, geometry.Point2D{X: -3, Y: 30}); err != nil {
		t.Fatal(err)
	}
	if got := s.Current()[geometry.CornerBottomLeft]; got != (geometry.Point2D{X: -3, Y: 30}) {
		t.Errorf("buffer corner = %v", got)
	}

	if err := s.MoveCorner(7, geometry.Point2D{}); err == nil {
		t.Error("out-of-range corner accepted")
	}
}

func TestDeleteAdjustsSelection(t *testing.T) {
	s := NewStore()
	s.Commit(quadPoints(0, 0, 10, 10), DefaultConfig(), SourceManual)
	s.Commit(quadPoints(20, 0, 10, 10), DefaultConfig(), SourceManual)
	s.Commit(quadPoints(40, 0, 10, 10), DefaultConfig(), SourceManual)

	s.Select(2)
	if err := s.Delete(0); err != nil {
		t.Fatal(err)
	}
	if s.Active() != 1 {
		t.Errorf("active = %d after deleting earlier frame, want 1", s.Active())
	}

	if err := s.Delete(1); err != nil {
		t.Fatal(err)
	}
	if s.Active() != ActiveCurrent {
		t.Errorf("active = %d after deleting active frame, want current buffer", s.Active())
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestSetActiveConfigClamps(t *testing.T) {
	s := NewStore()
	s.Commit(quadPoints(0, 0, 10, 10), DefaultConfig(), SourceManual)
	s.Select(0)

	cfg := DefaultConfig()
	cfg.Brightness = 999
	cfg.LightingAdjustment = -200
	cfg.LightDirection = "sideways"
	s.SetActiveConfig(cfg)

	got := s.ActiveConfig()
	if got.Brightness != 200 {
		t.Errorf("brightness = %v, want clamped 200", got.Brightness)
	}
	if got.LightingAdjustment != -50 {
		t.Errorf("lightingAdjustment = %v, want clamped -50", got.LightingAdjustment)
	}
	if got.LightDirection != LightCenter {
		t.Errorf("lightDirection = %q, want center fallback", got.LightDirection)
	}
}

func TestSetCurrentRejectsTooManyPoints(t *testing.T) {
	s := NewStore()
	pts := append(quadPoints(0, 0, 10, 10), geometry.Point2D{X: 1, Y: 1})
	if err := s.SetCurrent(pts); err == nil {
		t.Error("buffer accepted 5 points")
	}
}
