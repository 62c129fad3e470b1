// Package viewport maintains the transform between image-pixel space and the
// interactively zoomed/panned canvas, plus the screen-space hit tests built
// on it.
package viewport

import (
	"billboard-studio/pkg/geometry"
)

// Zoom limits for the interactive view.
const (
	MinZoom = 0.5
	MaxZoom = 4.0
)

// View converts between image space and screen space. DrawX/Y/W/H and Scale
// are fixed once per loaded image by Fit; Zoom and PanX/PanY are the
// interactively mutable part. The effective on-screen rectangle is
// (DrawX+PanX, DrawY+PanY, DrawW*Zoom, DrawH*Zoom) and the effective pixel
// scale is Scale*Zoom.
type View struct {
	DrawX, DrawY float64
	DrawW, DrawH float64
	Scale        float64
	Zoom         float64
	PanX, PanY   float64
}

// Fit computes the fit-to-canvas transform for an image, centered with zoom 1
// and no pan.
func Fit(imgW, imgH, canvasW, canvasH float64) View {
	if imgW <= 0 || imgH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return View{Scale: 1, Zoom: 1}
	}

	scale := canvasW / imgW
	if s := canvasH / imgH; s < scale {
		scale = s
	}

	drawW := imgW * scale
	drawH := imgH * scale
	return View{
		DrawX: (canvasW - drawW) / 2,
		DrawY: (canvasH - drawH) / 2,
		DrawW: drawW,
		DrawH: drawH,
		Scale: scale,
		Zoom:  1,
	}
}

// ImageToScreen converts an image-space point to screen space.
func (v View) ImageToScreen(p geometry.Point2D) geometry.Point2D {
	s := v.Scale * v.Zoom
	return geometry.Point2D{
		X: v.DrawX + v.PanX + p.X*s,
		Y: v.DrawY + v.PanY + p.Y*s,
	}
}

// ScreenToImage converts a screen-space point to image space. Exact inverse
// of ImageToScreen up to float precision.
func (v View) ScreenToImage(p geometry.Point2D) geometry.Point2D {
	s := v.Scale * v.Zoom
	return geometry.Point2D{
		X: (p.X - v.DrawX - v.PanX) / s,
		Y: (p.Y - v.DrawY - v.PanY) / s,
	}
}

// ScreenRect returns the effective on-screen image rectangle.
func (v View) ScreenRect() geometry.Rect {
	return geometry.Rect{
		X:      v.DrawX + v.PanX,
		Y:      v.DrawY + v.PanY,
		Width:  v.DrawW * v.Zoom,
		Height: v.DrawH * v.Zoom,
	}
}

// ClampZoom forces a zoom factor into [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// PannedBy returns the view shifted by a raw screen-space delta. Pan is in
// screen pixels, deliberately not scale-converted.
func (v View) PannedBy(dx, dy float64) View {
	v.PanX += dx
	v.PanY += dy
	return v
}

// WithZoomAtAnchor returns the view at the new zoom with pan solved so the
// image pixel under the anchor screen point does not visually move.
func (v View) WithZoomAtAnchor(zoom float64, anchor geometry.Point2D) View {
	return v.WithAnchoredZoom(zoom, anchor, v.ScreenToImage(anchor))
}

// WithAnchoredZoom returns the view at the new zoom with pan solved so that
// imagePt lands exactly on the anchor screen point. Pinch gestures use this
// directly: imagePt is the pixel under the touch midpoint at gesture start,
// anchor is the live midpoint.
func (v View) WithAnchoredZoom(zoom float64, anchor, imagePt geometry.Point2D) View {
	zoom = ClampZoom(zoom)
	s := v.Scale * zoom
	v.Zoom = zoom
	v.PanX = anchor.X - v.DrawX - imagePt.X*s
	v.PanY = anchor.Y - v.DrawY - imagePt.Y*s
	return v
}
