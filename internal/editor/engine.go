// Package editor owns the interactive editing session: one Engine value
// holds the view transform, the frame store, and the pointer-interaction
// state machine. There are no globals; every mutation goes through Engine
// methods.
package editor

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"

	"billboard-studio/internal/chroma"
	"billboard-studio/internal/frame"
	"billboard-studio/internal/photo"
	"billboard-studio/internal/preview"
	"billboard-studio/internal/viewport"
	"billboard-studio/pkg/geometry"
)

// Mode is the current interaction mode. Exactly one is active at a time.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModeDraggingCorner
	ModeDraggingFrame
	ModePanning
	ModePinching
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDrawing:
		return "drawing"
	case ModeDraggingCorner:
		return "dragging-corner"
	case ModeDraggingFrame:
		return "dragging-frame"
	case ModePanning:
		return "panning"
	case ModePinching:
		return "pinching"
	}
	return "unknown"
}

const (
	// minDrawSize is the smallest axis-aligned box (image pixels, both
	// axes) a draw gesture must span to produce a frame.
	minDrawSize = 10

	// clickSlop is how far (screen pixels, cumulative) a modifier-press
	// may travel and still be reinterpreted as a color pick on release.
	clickSlop = 4

	zoomStep = 1.25
)

// Engine is the interactive editing session.
type Engine struct {
	logger *slog.Logger

	store *frame.Store
	view  viewport.View
	photo *photo.Photo

	canvasW, canvasH float64

	detector     *chroma.Detector
	detectParams chroma.Params

	// Provenance for the next commit of the current buffer.
	currentSource frame.Source

	mode       Mode
	dragCorner int
	drawStart  geometry.Point2D // image space
	drawEnd    geometry.Point2D
	lastScreen geometry.Point2D
	panPending bool
	panTravel  float64

	pinchStartZoom float64
	pinchStartDist float64
	pinchAnchorImg geometry.Point2D

	previews *preview.Scheduler
	creative photo.Raster

	onChange    func()
	onColorPick func(color.RGBA)
}

// New creates an engine with an empty store and default detection params.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:        logger,
		store:         frame.NewStore(),
		detector:      chroma.NewDetector(logger),
		detectParams:  chroma.DefaultParams(),
		currentSource: frame.SourceManual,
	}
}

// OnChange registers the redraw callback invoked after every state mutation.
func (e *Engine) OnChange(fn func()) { e.onChange = fn }

// OnColorPick registers the callback for modifier-click color sampling.
func (e *Engine) OnColorPick(fn func(color.RGBA)) { e.onColorPick = fn }

// SetPreviews attaches the debounced preview scheduler.
func (e *Engine) SetPreviews(s *preview.Scheduler) { e.previews = s }

// SetCreative sets the creative raster composited into the active frame.
func (e *Engine) SetCreative(r photo.Raster) {
	e.creative = r
	if e.previews != nil {
		e.previews.Invalidate()
	}
	e.requestPreview()
}

// Store exposes the frame store.
func (e *Engine) Store() *frame.Store { return e.store }

// View returns the current view transform.
func (e *Engine) View() viewport.View { return e.view }

// Mode returns the current interaction mode.
func (e *Engine) Mode() Mode { return e.mode }

// Photo returns the loaded base photograph, or nil.
func (e *Engine) Photo() *photo.Photo { return e.photo }

// DetectParams returns the current detection parameters.
func (e *Engine) DetectParams() chroma.Params { return e.detectParams }

// SetDetectParams replaces the detection parameters.
func (e *Engine) SetDetectParams(p chroma.Params) { e.detectParams = p }

// SetPhoto installs a new base photograph. All frames and the current buffer
// are destroyed; the view refits to the canvas.
func (e *Engine) SetPhoto(p *photo.Photo) {
	e.photo = p
	e.store.Clear()
	e.mode = ModeIdle
	e.refit()
	if e.previews != nil {
		e.previews.Invalidate()
	}
	e.notify()
}

// SetCanvasSize records the canvas dimensions and refits the base transform,
// preserving the interactive zoom and pan.
func (e *Engine) SetCanvasSize(w, h float64) {
	if w == e.canvasW && h == e.canvasH {
		return
	}
	e.canvasW, e.canvasH = w, h
	zoom, panX, panY := e.view.Zoom, e.view.PanX, e.view.PanY
	e.refit()
	if zoom != 0 {
		e.view.Zoom = zoom
		e.view.PanX = panX
		e.view.PanY = panY
	}
	e.notify()
}

func (e *Engine) refit() {
	if e.photo == nil || e.canvasW <= 0 || e.canvasH <= 0 {
		return
	}
	w, h := e.photo.Size()
	e.view = viewport.Fit(float64(w), float64(h), e.canvasW, e.canvasH)
}

// ResetView refits the image to the canvas, dropping zoom and pan.
func (e *Engine) ResetView() {
	e.refit()
	e.notify()
}

// PointerDown starts an interaction. panModifier marks a press made with the
// pan modifier key or middle button.
func (e *Engine) PointerDown(pt geometry.Point2D, panModifier bool) {
	if e.mode != ModeIdle || e.photo == nil {
		return
	}

	e.lastScreen = pt

	if panModifier {
		e.mode = ModePanning
		e.panPending = true
		e.panTravel = 0
		return
	}

	// Corner handles win over frame bodies; the uncommitted buffer wins
	// over committed frames.
	if idx, ok := viewport.HitCorner(pt, e.store.Current(), e.view, viewport.DefaultHitRadius); ok {
		e.store.SelectCurrent()
		e.dragCorner = idx
		e.mode = ModeDraggingCorner
		return
	}
	quads := e.store.Quads()
	for i := len(quads) - 1; i >= 0; i-- {
		if idx, ok := viewport.HitCorner(pt, quads[i].Points(), e.view, viewport.DefaultHitRadius); ok {
			_ = e.store.Select(i)
			e.dragCorner = idx
			e.mode = ModeDraggingCorner
			return
		}
	}

	if cur := e.store.Current(); len(cur) == 4 {
		var q geometry.Quad
		copy(q[:], cur)
		if viewport.HitQuad(pt, q, e.view) {
			e.store.SelectCurrent()
			e.mode = ModeDraggingFrame
			return
		}
	}
	if idx, ok := viewport.HitFrame(pt, quads, e.view); ok {
		_ = e.store.Select(idx)
		e.mode = ModeDraggingFrame
		e.notify()
		return
	}

	// Empty canvas: start drawing a new frame.
	if !e.view.ScreenRect().Contains(pt) {
		return
	}
	e.mode = ModeDrawing
	e.drawStart = e.view.ScreenToImage(pt)
	e.drawEnd = e.drawStart
}

// PointerMove advances the active interaction with a new pointer sample.
func (e *Engine) PointerMove(pt geometry.Point2D) {
	switch e.mode {
	case ModeDrawing:
		e.drawEnd = e.view.ScreenToImage(pt)

	case ModeDraggingCorner:
		// Arbitrary corner positions are allowed; no ordering correction.
		if err := e.store.MoveCorner(e.dragCorner, e.view.ScreenToImage(pt)); err != nil {
			e.logger.Warn("corner drag ignored", "error", err)
		}

	case ModeDraggingFrame:
		delta := e.view.ScreenToImage(pt).Sub(e.view.ScreenToImage(e.lastScreen))
		e.store.TranslateActive(delta)

	case ModePanning:
		dx, dy := pt.X-e.lastScreen.X, pt.Y-e.lastScreen.Y
		e.view = e.view.PannedBy(dx, dy)
		e.panTravel += math.Hypot(dx, dy)
		if e.panTravel > clickSlop {
			e.panPending = false
		}

	default:
		return
	}

	e.lastScreen = pt
	e.notify()
}

// PointerUp ends the active interaction.
func (e *Engine) PointerUp(pt geometry.Point2D) {
	switch e.mode {
	case ModeDrawing:
		e.drawEnd = e.view.ScreenToImage(pt)
		if math.Abs(e.drawEnd.X-e.drawStart.X) >= minDrawSize &&
			math.Abs(e.drawEnd.Y-e.drawStart.Y) >= minDrawSize {
			q := geometry.QuadFromRect(e.drawStart, e.drawEnd)
			_ = e.store.SetCurrent(q.Points())
			e.currentSource = frame.SourceManual
		}

	case ModePanning:
		if e.panPending {
			e.pickColor(pt)
		}

	case ModeDraggingCorner, ModeDraggingFrame:
		// Selection already tracks the dragged target.

	default:
		// Idle: tolerate duplicate release events from the toolkit.
		e.mode = ModeIdle
		return
	}

	e.mode = ModeIdle
	e.requestPreview()
	e.notify()
}

// pickColor samples the photo under the pointer and adopts it as the chroma
// key target.
func (e *Engine) pickColor(pt geometry.Point2D) {
	r := e.photo.Raster()
	if r.Empty() {
		return
	}
	img := e.view.ScreenToImage(pt)
	x := int(math.Round(img.X))
	y := int(math.Round(img.Y))
	if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
		return
	}
	c := r.At(x, y)
	e.detectParams.Target = c
	e.logger.Info("chroma target picked", "x", x, "y", y,
		"color", fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	if e.onColorPick != nil {
		e.onColorPick(c)
	}
}

// PinchStart begins a two-pointer zoom gesture.
func (e *Engine) PinchStart(p1, p2 geometry.Point2D) {
	if e.mode != ModeIdle || e.photo == nil {
		return
	}
	e.mode = ModePinching
	e.pinchStartZoom = e.view.Zoom
	e.pinchStartDist = p1.Distance(p2)
	mid := midpoint(p1, p2)
	e.pinchAnchorImg = e.view.ScreenToImage(mid)
}

// PinchMove rescales the view by the live/start distance ratio, keeping the
// image pixel under the starting midpoint anchored to the live midpoint.
func (e *Engine) PinchMove(p1, p2 geometry.Point2D) {
	if e.mode != ModePinching || e.pinchStartDist <= 0 {
		return
	}
	zoom := viewport.ClampZoom(e.pinchStartZoom * p1.Distance(p2) / e.pinchStartDist)
	e.view = e.view.WithAnchoredZoom(zoom, midpoint(p1, p2), e.pinchAnchorImg)
	e.notify()
}

// PinchEnd finishes the pinch gesture.
func (e *Engine) PinchEnd() {
	if e.mode == ModePinching {
		e.mode = ModeIdle
	}
}

func midpoint(a, b geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// ZoomIn steps the zoom up around the anchor screen point.
func (e *Engine) ZoomIn(anchor geometry.Point2D) { e.zoomTo(e.view.Zoom*zoomStep, anchor) }

// ZoomOut steps the zoom down around the anchor screen point.
func (e *Engine) ZoomOut(anchor geometry.Point2D) { e.zoomTo(e.view.Zoom/zoomStep, anchor) }

// SetZoom jumps to an absolute zoom around the anchor screen point.
func (e *Engine) SetZoom(zoom float64, anchor geometry.Point2D) { e.zoomTo(zoom, anchor) }

func (e *Engine) zoomTo(zoom float64, anchor geometry.Point2D) {
	e.view = e.view.WithZoomAtAnchor(zoom, anchor)
	e.notify()
}

// Detect runs green-screen detection against the current photo, excluding
// committed frames, and loads the result into the current buffer. On
// ErrNoDetection prior state is left untouched.
func (e *Engine) Detect() error {
	if e.photo == nil {
		return chroma.ErrNoDetection
	}
	quad, err := e.detector.Detect(e.photo.Raster(), e.detectParams, e.store.Quads())
	if err != nil {
		return err
	}
	_ = e.store.SetCurrent(quad.Points())
	e.currentSource = frame.SourceGreenscreen
	e.notify()
	return nil
}

// AddFrame commits the current buffer as a frame, tagged with how the buffer
// was produced.
func (e *Engine) AddFrame() (int, error) {
	idx, err := e.store.CommitCurrent(e.currentSource)
	if err != nil {
		return 0, err
	}
	e.currentSource = frame.SourceManual
	e.requestPreview()
	e.notify()
	return idx, nil
}

// DeleteFrame removes a committed frame.
func (e *Engine) DeleteFrame(i int) error {
	if err := e.store.Delete(i); err != nil {
		return err
	}
	e.notify()
	return nil
}

// SetActiveConfig updates the active target's appearance config and schedules
// a fresh preview.
func (e *Engine) SetActiveConfig(cfg frame.AppearanceConfig) {
	e.store.SetActiveConfig(cfg)
	e.requestPreview()
	e.notify()
}

// ImportJSON replaces the committed frames from wire-format JSON.
func (e *Engine) ImportJSON(data []byte) error {
	if err := e.store.ImportJSON(data); err != nil {
		return err
	}
	e.notify()
	return nil
}

// ExportJSON serializes frames (plus a complete current buffer).
func (e *Engine) ExportJSON() ([]byte, error) {
	return e.store.ExportJSON()
}

// CurrentDraft returns the in-progress draw box as a quad for rendering,
// when a draw gesture is live.
func (e *Engine) CurrentDraft() (geometry.Quad, bool) {
	if e.mode != ModeDrawing {
		return geometry.Quad{}, false
	}
	return geometry.QuadFromRect(e.drawStart, e.drawEnd), true
}

// requestPreview asks the scheduler for a composite of the active committed
// frame; the scheduler debounces and dedupes.
func (e *Engine) requestPreview() {
	if e.previews == nil || e.photo == nil || e.creative.Empty() {
		return
	}
	active := e.store.Active()
	if active == frame.ActiveCurrent {
		return
	}
	f, err := e.store.Frame(active)
	if err != nil {
		return
	}
	e.previews.Update(preview.Request{
		Base:     e.photo.Raster(),
		Creative: e.creative,
		Frame:    f.Points,
		Config:   f.Config,
	})
}

func (e *Engine) notify() {
	if e.onChange != nil {
		e.onChange()
	}
}
