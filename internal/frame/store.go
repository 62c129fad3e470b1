package frame

import (
	"errors"
	"fmt"

	"billboard-studio/pkg/geometry"
)

// ErrInvalidFrame is returned when a commit is attempted with a point count
// other than four.
var ErrInvalidFrame = errors.New("frame must have exactly 4 points")

// ActiveCurrent marks the uncommitted current-points buffer as the active
// mutation target, as opposed to a committed frame index.
const ActiveCurrent = -1

// Store is the ordered collection of committed frames plus the uncommitted
// current-points buffer. Exactly one target is active at a time, either a
// committed frame by index or the buffer, and every mutating operation
// (corner drag, whole-frame drag, config edit) applies to the active target.
type Store struct {
	frames        []Frame
	current       []geometry.Point2D
	currentConfig AppearanceConfig
	active        int
}

// NewStore creates an empty store with the current buffer active.
func NewStore() *Store {
	return &Store{
		currentConfig: DefaultConfig(),
		active:        ActiveCurrent,
	}
}

// Len returns the number of committed frames.
func (s *Store) Len() int {
	return len(s.frames)
}

// Frames returns a copy of the committed frame list in insertion order.
func (s *Store) Frames() []Frame {
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Frame returns the committed frame at index i.
func (s *Store) Frame(i int) (Frame, error) {
	if i < 0 || i >= len(s.frames) {
		return Frame{}, fmt.Errorf("frame index %d out of range [0,%d)", i, len(s.frames))
	}
	return s.frames[i], nil
}

// Quads returns the committed frame quadrilaterals in insertion order.
// Used as the exclusion set for chroma detection.
func (s *Store) Quads() []geometry.Quad {
	out := make([]geometry.Quad, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Points
	}
	return out
}

// Commit promotes four loose points to a committed frame with the given
// config snapshot and provenance, returning the new frame's index. The store
// is left untouched when the point count is not exactly four.
func (s *Store) Commit(points []geometry.Point2D, cfg AppearanceConfig, src Source) (int, error) {
	if len(points) != 4 {
		return 0, ErrInvalidFrame
	}
	var q geometry.Quad
	copy(q[:], points)
	s.frames = append(s.frames, Frame{Points: q, Config: cfg.Clamp(), Source: src})
	return len(s.frames) - 1, nil
}

// CommitCurrent promotes the current buffer using its pending config, clears
// the buffer, and selects the new frame.
func (s *Store) CommitCurrent(src Source) (int, error) {
	idx, err := s.Commit(s.current, s.currentConfig, src)
	if err != nil {
		return 0, err
	}
	s.current = nil
	s.active = idx
	return idx, nil
}

// Current returns a copy of the current-points buffer (0 to 4 points).
func (s *Store) Current() []geometry.Point2D {
	out := make([]geometry.Point2D, len(s.current))
	copy(out, s.current)
	return out
}

// SetCurrent replaces the current-points buffer and makes it the active
// target. More than four points is rejected.
func (s *Store) SetCurrent(points []geometry.Point2D) error {
	if len(points) > 4 {
		return fmt.Errorf("current buffer holds at most 4 points, got %d", len(points))
	}
	s.current = make([]geometry.Point2D, len(points))
	copy(s.current, points)
	s.active = ActiveCurrent
	return nil
}

// ClearCurrent empties the current-points buffer.
func (s *Store) ClearCurrent() {
	s.current = nil
}

// Select makes the committed frame at index i the active target.
func (s *Store) Select(i int) error {
	if i < 0 || i >= len(s.frames) {
		return fmt.Errorf("cannot select frame %d of %d", i, len(s.frames))
	}
	s.active = i
	return nil
}

// SelectCurrent makes the uncommitted buffer the active target.
func (s *Store) SelectCurrent() {
	s.active = ActiveCurrent
}

// Active returns the active target: ActiveCurrent or a committed index.
func (s *Store) Active() int {
	return s.active
}

// ActivePoints returns the points of the active target.
func (s *Store) ActivePoints() []geometry.Point2D {
	if s.active == ActiveCurrent {
		return s.Current()
	}
	return s.frames[s.active].Points.Points()
}

// ActiveConfig returns the config of the active target (the pending config
// for the current buffer).
func (s *Store) ActiveConfig() AppearanceConfig {
	if s.active == ActiveCurrent {
		return s.currentConfig
	}
	return s.frames[s.active].Config
}

// SetActiveConfig updates the config of the active target, clamped.
func (s *Store) SetActiveConfig(cfg AppearanceConfig) {
	cfg = cfg.Clamp()
	if s.active == ActiveCurrent {
		s.currentConfig = cfg
		return
	}
	s.frames[s.active].Config = cfg
}

// MoveCorner overwrites one corner of the active target. Arbitrary corner
// positions are allowed; no convexity or ordering correction is applied.
func (s *Store) MoveCorner(corner int, p geometry.Point2D) error {
	if s.active == ActiveCurrent {
		if corner < 0 || corner >= len(s.current) {
			return fmt.Errorf("corner %d out of range for %d buffered points", corner, len(s.current))
		}
		s.current[corner] = p
		return nil
	}
	if corner < 0 || corner > 3 {
		return fmt.Errorf("corner index %d out of range", corner)
	}
	s.frames[s.active].Points[corner] = p
	return nil
}

// TranslateActive rigidly shifts every point of the active target by delta.
func (s *Store) TranslateActive(delta geometry.Point2D) {
	if s.active == ActiveCurrent {
		for i := range s.current {
			s.current[i] = s.current[i].Add(delta)
		}
		return
	}
	s.frames[s.active].Points = s.frames[s.active].Points.Translate(delta)
}

// Delete removes the committed frame at index i. The active selection falls
// back to the current buffer when it pointed at the removed frame.
func (s *Store) Delete(i int) error {
	if i < 0 || i >= len(s.frames) {
		return fmt.Errorf("cannot delete frame %d of %d", i, len(s.frames))
	}
	s.frames = append(s.frames[:i], s.frames[i+1:]...)
	switch {
	case s.active == i:
		s.active = ActiveCurrent
	case s.active > i:
		s.active--
	}
	return nil
}

// Clear removes all committed frames and the current buffer. Called when a
// new base photograph is loaded.
func (s *Store) Clear() {
	s.frames = nil
	s.current = nil
	s.currentConfig = DefaultConfig()
	s.active = ActiveCurrent
}

// Replace installs a complete frame list (JSON import), dropping the buffer.
func (s *Store) Replace(frames []Frame) {
	s.frames = make([]Frame, len(frames))
	copy(s.frames, frames)
	s.current = nil
	s.active = ActiveCurrent
}
