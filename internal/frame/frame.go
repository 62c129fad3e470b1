package frame

import (
	"billboard-studio/pkg/geometry"
)

// Source records how a frame came to exist. Informational only.
type Source int

const (
	SourceManual Source = iota
	SourceGreenscreen
	SourceExisting
	SourceJSON
)

// String returns the source name used in logs and template files.
func (s Source) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceGreenscreen:
		return "greenscreen"
	case SourceExisting:
		return "existing"
	case SourceJSON:
		return "json"
	}
	return "unknown"
}

// SourceFromString parses a source name, defaulting to existing for values
// written by older template files.
func SourceFromString(s string) Source {
	switch s {
	case "manual":
		return SourceManual
	case "greenscreen":
		return SourceGreenscreen
	case "json":
		return SourceJSON
	}
	return SourceExisting
}

// Frame is a committed quadrilateral billboard surface plus its appearance
// configuration.
type Frame struct {
	Points geometry.Quad
	Config AppearanceConfig
	Source Source
}
