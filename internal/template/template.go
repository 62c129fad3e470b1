// Package template provides billboard template file handling and persistence.
package template

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"billboard-studio/internal/frame"
	"billboard-studio/pkg/geometry"
)

// File represents a billboard template file (.bbtpl): one photograph plus
// the frames placed on it and scene metadata used when pricing placements.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	TimeOfDay   string    `json:"time_of_day"`
	Finish      string    `json:"finish"`
	Description string    `json:"description,omitempty"`

	// Photo path (relative to the template file).
	PhotoPath string `json:"photo,omitempty"`

	Frames []Placement `json:"frames"`
}

// Placement is one stored frame. Source is serialized as its string name so
// template files stay readable and stable across releases.
type Placement struct {
	Points geometry.Quad          `json:"points"`
	Config frame.AppearanceConfig `json:"config"`
	Source string                 `json:"source"`
}

// New creates a template with default scene settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:   1,
		Name:      name,
		Created:   now,
		Modified:  now,
		TimeOfDay: "day",
		Finish:    "matte",
	}
}

// Load loads a template from a .bbtpl file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tpl File
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, err
	}

	return &tpl, nil
}

// Save saves the template to a file.
func (t *File) Save(path string) error {
	t.Modified = time.Now()

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetPhoto sets the photo path (relative to the template file).
func (t *File) SetPhoto(templatePath, photoPath string) {
	rel, err := filepath.Rel(filepath.Dir(templatePath), photoPath)
	if err != nil {
		t.PhotoPath = photoPath
	} else {
		t.PhotoPath = rel
	}
	t.Modified = time.Now()
}

// GetPhotoPath returns the absolute path to the photo.
func (t *File) GetPhotoPath(templatePath string) string {
	if t.PhotoPath == "" {
		return ""
	}
	if filepath.IsAbs(t.PhotoPath) {
		return t.PhotoPath
	}
	return filepath.Join(filepath.Dir(templatePath), t.PhotoPath)
}

// CaptureFrames snapshots the committed frames of a store into the template.
func (t *File) CaptureFrames(s *frame.Store) {
	frames := s.Frames()
	t.Frames = make([]Placement, len(frames))
	for i, f := range frames {
		t.Frames[i] = Placement{
			Points: f.Points,
			Config: f.Config,
			Source: f.Source.String(),
		}
	}
	t.Modified = time.Now()
}

// RestoreFrames replaces the store's frames with the template's. Unknown
// source names map to the existing-frame source; configs are re-clamped so
// hand-edited files cannot smuggle out-of-range values in.
func (t *File) RestoreFrames(s *frame.Store) {
	frames := make([]frame.Frame, len(t.Frames))
	for i, p := range t.Frames {
		frames[i] = frame.Frame{
			Points: p.Points,
			Config: p.Config.Clamp(),
			Source: frame.SourceFromString(p.Source),
		}
	}
	s.Replace(frames)
}
