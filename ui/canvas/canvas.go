// Package canvas provides the photo canvas with pan, zoom, and frame editing.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"billboard-studio/internal/editor"
	"billboard-studio/pkg/geometry"
)

// FrameCanvas displays the photograph and its frames and forwards pointer
// input to the editing engine.
type FrameCanvas struct {
	widget.BaseWidget

	engine *editor.Engine
	raster *fynecanvas.Raster

	// Last drag position; DragEnd carries no coordinates.
	lastDrag fyne.Position
	dragging bool
}

// NewFrameCanvas creates a canvas bound to the engine. The engine's change
// callback is pointed at this canvas's refresh.
func NewFrameCanvas(engine *editor.Engine) *FrameCanvas {
	fc := &FrameCanvas{engine: engine}
	fc.raster = fynecanvas.NewRaster(fc.draw)
	fc.raster.ScaleMode = fynecanvas.ImageScalePixels
	fc.ExtendBaseWidget(fc)
	engine.OnChange(fc.Refresh)
	return fc
}

// Engine returns the bound editing engine.
func (fc *FrameCanvas) Engine() *editor.Engine { return fc.engine }

// Refresh redraws the canvas.
func (fc *FrameCanvas) Refresh() {
	fc.raster.Refresh()
	fc.BaseWidget.Refresh()
}

// MouseDown starts an interaction. The pan modifier is the control key or
// the middle button.
func (fc *FrameCanvas) MouseDown(ev *desktop.MouseEvent) {
	pan := ev.Button == desktop.MouseButtonTertiary ||
		ev.Modifier&fyne.KeyModifierControl != 0
	fc.engine.PointerDown(toPoint(ev.Position), pan)
}

// MouseUp ends the interaction.
func (fc *FrameCanvas) MouseUp(ev *desktop.MouseEvent) {
	fc.dragging = false
	fc.engine.PointerUp(toPoint(ev.Position))
}

// Dragged advances the interaction with a new pointer sample.
func (fc *FrameCanvas) Dragged(ev *fyne.DragEvent) {
	fc.dragging = true
	fc.lastDrag = ev.Position
	fc.engine.PointerMove(toPoint(ev.Position))
}

// DragEnd finishes a drag when the toolkit swallows the mouse-up event.
// A duplicate release is a no-op in the engine.
func (fc *FrameCanvas) DragEnd() {
	if fc.dragging {
		fc.dragging = false
		fc.engine.PointerUp(toPoint(fc.lastDrag))
	}
}

// Tapped is required for tap delivery; presses are handled by MouseDown.
func (fc *FrameCanvas) Tapped(*fyne.PointEvent) {}

// TappedSecondary cancels the in-progress frame.
func (fc *FrameCanvas) TappedSecondary(*fyne.PointEvent) {
	fc.engine.Store().ClearCurrent()
	fc.Refresh()
}

// Scrolled zooms around the pointer.
func (fc *FrameCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		fc.engine.ZoomIn(toPoint(ev.Position))
	} else if ev.Scrolled.DY < 0 {
		fc.engine.ZoomOut(toPoint(ev.Position))
	}
}

// CreateRenderer implements fyne.Widget.
func (fc *FrameCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &frameCanvasRenderer{canvas: fc}
}

type frameCanvasRenderer struct {
	canvas *FrameCanvas
}

func (r *frameCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	r.canvas.engine.SetCanvasSize(float64(size.Width), float64(size.Height))
}

func (r *frameCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *frameCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *frameCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *frameCanvasRenderer) Destroy() {}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// draw is the raster drawing function.
func (fc *FrameCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Dark neutral background.
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 32
		output.Pix[i+1] = 32
		output.Pix[i+2] = 36
		output.Pix[i+3] = 255
	}

	photo := fc.engine.Photo()
	if photo == nil {
		return output
	}

	fc.engine.SetCanvasSize(float64(w), float64(h))
	view := fc.engine.View()

	// Composite the photo at its screen rectangle. Scale clips to the
	// output bounds, so panning past the edge is safe.
	sr := view.ScreenRect()
	dst := image.Rect(int(sr.X), int(sr.Y), int(sr.X+sr.Width), int(sr.Y+sr.Height))
	xdraw.ApproxBiLinear.Scale(output, dst, photo.Image, photo.Image.Bounds(), xdraw.Src, nil)

	fc.drawFrames(output, view)
	return output
}
