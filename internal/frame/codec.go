package frame

import (
	"encoding/json"
	"fmt"

	"billboard-studio/pkg/geometry"
)

// ParseError reports a malformed frame during JSON import. Frame numbers are
// 1-indexed in messages shown to the operator.
type ParseError struct {
	Frame int
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("frame %d %s", e.Frame, e.Cause)
}

// wireFrame is the serialized frame shape exchanged with the backend.
// Points are accepted in two forms: flat [x0,y0,...,x3,y3] and nested
// [[x,y],[x,y],[x,y],[x,y]]. Export always writes the flat form.
type wireFrame struct {
	Points json.RawMessage `json:"points"`
	Config json.RawMessage `json:"config,omitempty"`
}

type exportFrame struct {
	Points []float64        `json:"points"`
	Config AppearanceConfig `json:"config"`
}

// Decode parses a frame list from its wire form. The decode is
// all-or-nothing: any malformed frame fails the whole import and no partial
// list is produced.
func Decode(data []byte) ([]Frame, error) {
	var wire []wireFrame
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("frame JSON is not an array: %w", err)
	}

	frames := make([]Frame, 0, len(wire))
	for i, w := range wire {
		quad, err := decodePoints(w.Points)
		if err != nil {
			return nil, &ParseError{Frame: i + 1, Cause: err.Error()}
		}

		// Defaults-merge: absent config fields keep their documented
		// default values rather than decaying to zero.
		cfg := DefaultConfig()
		if len(w.Config) > 0 {
			if err := json.Unmarshal(w.Config, &cfg); err != nil {
				return nil, &ParseError{Frame: i + 1, Cause: fmt.Sprintf("has invalid config: %v", err)}
			}
		}

		frames = append(frames, Frame{
			Points: quad,
			Config: cfg.Clamp(),
			Source: SourceJSON,
		})
	}
	return frames, nil
}

// Encode serializes frames to the flat-number wire form. It is the exact
// inverse of Decode's flat form.
func Encode(frames []Frame) ([]byte, error) {
	wire := make([]exportFrame, len(frames))
	for i, f := range frames {
		flat := make([]float64, 0, 8)
		for _, p := range f.Points {
			flat = append(flat, p.X, p.Y)
		}
		wire[i] = exportFrame{Points: flat, Config: f.Config}
	}
	return json.MarshalIndent(wire, "", "  ")
}

// decodePoints normalizes either accepted points shape to a Quad.
// Ambiguous or unrecognized shapes are an error, never a best-effort guess.
func decodePoints(raw json.RawMessage) (geometry.Quad, error) {
	if len(raw) == 0 {
		return geometry.Quad{}, fmt.Errorf("must include 4 points")
	}

	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		if len(flat) != 8 {
			return geometry.Quad{}, fmt.Errorf("must include 4 points")
		}
		var q geometry.Quad
		for i := 0; i < 4; i++ {
			q[i] = geometry.Point2D{X: flat[i*2], Y: flat[i*2+1]}
		}
		return q, nil
	}

	var nested [][]float64
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) != 4 {
			return geometry.Quad{}, fmt.Errorf("must include 4 points")
		}
		var q geometry.Quad
		for i, pair := range nested {
			if len(pair) != 2 {
				return geometry.Quad{}, fmt.Errorf("has a corner that is not an [x,y] pair")
			}
			q[i] = geometry.Point2D{X: pair[0], Y: pair[1]}
		}
		return q, nil
	}

	return geometry.Quad{}, fmt.Errorf("has unrecognized points shape")
}

// ImportJSON replaces the store's committed frames with the decoded list.
// On error the store is left untouched.
func (s *Store) ImportJSON(data []byte) error {
	frames, err := Decode(data)
	if err != nil {
		return err
	}
	s.Replace(frames)
	return nil
}

// ExportJSON serializes the committed frames, plus the current buffer when
// it holds exactly four points.
func (s *Store) ExportJSON() ([]byte, error) {
	frames := s.Frames()
	if len(s.current) == 4 {
		var q geometry.Quad
		copy(q[:], s.current)
		frames = append(frames, Frame{Points: q, Config: s.currentConfig, Source: SourceManual})
	}
	return Encode(frames)
}
