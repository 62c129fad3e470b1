// Package frame provides the billboard frame data model: quadrilateral
// surfaces on a photograph, their appearance configuration, the ordered
// frame store, and the JSON wire codec.
package frame

// LightDirection names where the dominant light source sits relative to the
// billboard surface.
type LightDirection string

// The nine supported light directions.
const (
	LightTopLeft     LightDirection = "top-left"
	LightTop         LightDirection = "top"
	LightTopRight    LightDirection = "top-right"
	LightLeft        LightDirection = "left"
	LightCenter      LightDirection = "center"
	LightRight       LightDirection = "right"
	LightBottomLeft  LightDirection = "bottom-left"
	LightBottom      LightDirection = "bottom"
	LightBottomRight LightDirection = "bottom-right"
)

var lightDirections = map[LightDirection]bool{
	LightTopLeft: true, LightTop: true, LightTopRight: true,
	LightLeft: true, LightCenter: true, LightRight: true,
	LightBottomLeft: true, LightBottom: true, LightBottomRight: true,
}

// Valid reports whether d is one of the nine supported directions.
func (d LightDirection) Valid() bool {
	return lightDirections[d]
}

// AppearanceConfig holds the per-frame compositing parameters handed to the
// preview renderer. Field names match the wire format exchanged with the
// backend.
type AppearanceConfig struct {
	Brightness         float64        `json:"brightness"`
	Contrast           float64        `json:"contrast"`
	Saturation         float64        `json:"saturation"`
	DepthMultiplier    float64        `json:"depthMultiplier"`
	LightDirection     LightDirection `json:"lightDirection"`
	ImageBlur          float64        `json:"imageBlur"`
	EdgeBlur           float64        `json:"edgeBlur"`
	OverlayOpacity     float64        `json:"overlayOpacity"`
	ShadowIntensity    float64        `json:"shadowIntensity"`
	LightingAdjustment float64        `json:"lightingAdjustment"`
	ColorTemperature   float64        `json:"colorTemperature"`
	Vignette           float64        `json:"vignette"`
	EdgeSmoother       float64        `json:"edgeSmoother"`
	Sharpening         float64        `json:"sharpening"`
}

// DefaultConfig returns the documented default appearance values.
func DefaultConfig() AppearanceConfig {
	return AppearanceConfig{
		Brightness:      100,
		Contrast:        100,
		Saturation:      100,
		DepthMultiplier: 10,
		LightDirection:  LightCenter,
		OverlayOpacity:  100,
	}
}

// configRange is the clamped range of a numeric appearance field.
type configRange struct {
	min, max float64
}

var configRanges = map[string]configRange{
	"brightness":         {50, 200},
	"contrast":           {50, 200},
	"saturation":         {0, 200},
	"depthMultiplier":    {5, 30},
	"imageBlur":          {0, 10},
	"edgeBlur":           {0, 20},
	"overlayOpacity":     {0, 100},
	"shadowIntensity":    {0, 100},
	"lightingAdjustment": {-50, 50},
	"colorTemperature":   {-50, 50},
	"vignette":           {0, 100},
	"edgeSmoother":       {0, 10},
	"sharpening":         {0, 100},
}

// Clamp returns the config with every numeric field forced into its
// documented range and any unrecognized light direction reset to center.
func (c AppearanceConfig) Clamp() AppearanceConfig {
	clampField := func(name string, v float64) float64 {
		r := configRanges[name]
		if v < r.min {
			return r.min
		}
		if v > r.max {
			return r.max
		}
		return v
	}

	c.Brightness = clampField("brightness", c.Brightness)
	c.Contrast = clampField("contrast", c.Contrast)
	c.Saturation = clampField("saturation", c.Saturation)
	c.DepthMultiplier = clampField("depthMultiplier", c.DepthMultiplier)
	c.ImageBlur = clampField("imageBlur", c.ImageBlur)
	c.EdgeBlur = clampField("edgeBlur", c.EdgeBlur)
	c.OverlayOpacity = clampField("overlayOpacity", c.OverlayOpacity)
	c.ShadowIntensity = clampField("shadowIntensity", c.ShadowIntensity)
	c.LightingAdjustment = clampField("lightingAdjustment", c.LightingAdjustment)
	c.ColorTemperature = clampField("colorTemperature", c.ColorTemperature)
	c.Vignette = clampField("vignette", c.Vignette)
	c.EdgeSmoother = clampField("edgeSmoother", c.EdgeSmoother)
	c.Sharpening = clampField("sharpening", c.Sharpening)

	if !c.LightDirection.Valid() {
		c.LightDirection = LightCenter
	}
	return c
}
