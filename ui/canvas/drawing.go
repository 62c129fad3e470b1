// Package canvas provides drawing primitives for the photo canvas.
package canvas

import (
	"image"
	"image/color"
	"strconv"

	"billboard-studio/internal/viewport"
	"billboard-studio/pkg/colorutil"
	"billboard-studio/pkg/geometry"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

const (
	frameLineThickness = 2
	handleHalfSize     = 4
)

// drawFrames renders committed frames, the current buffer, and a live draw
// box on top of the composited photo.
func (fc *FrameCanvas) drawFrames(output *image.RGBA, view viewport.View) {
	store := fc.engine.Store()
	active := store.Active()

	for i, q := range store.Quads() {
		col := colorutil.Cyan
		if i == active {
			col = colorutil.Magenta
		}
		fc.drawQuadOutline(output, view, q, col)
		for _, p := range q.Points() {
			fc.drawHandle(output, view.ImageToScreen(p), col)
		}
		center := view.ImageToScreen(q.Centroid())
		fc.drawNumber(output, i+1, int(center.X), int(center.Y), col)
	}

	// Current buffer: yellow markers, outlined once four corners exist.
	cur := store.Current()
	if len(cur) == 4 {
		var q geometry.Quad
		copy(q[:], cur)
		fc.drawQuadOutline(output, view, q, colorutil.Yellow)
	}
	for _, p := range cur {
		fc.drawHandle(output, view.ImageToScreen(p), colorutil.Yellow)
	}

	if draft, ok := fc.engine.CurrentDraft(); ok {
		fc.drawQuadOutline(output, view, draft, colorutil.White)
	}
}

// drawQuadOutline connects the four corners in order.
func (fc *FrameCanvas) drawQuadOutline(output *image.RGBA, view viewport.View, q geometry.Quad, col color.RGBA) {
	for i := 0; i < 4; i++ {
		a := view.ImageToScreen(q[i])
		b := view.ImageToScreen(q[(i+1)%4])
		fc.drawLine(output, int(a.X), int(a.Y), int(b.X), int(b.Y), col, frameLineThickness)
	}
}

// drawHandle draws a filled square drag handle centered on the point.
func (fc *FrameCanvas) drawHandle(output *image.RGBA, p geometry.Point2D, col color.RGBA) {
	bounds := output.Bounds()
	cx, cy := int(p.X), int(p.Y)
	for y := cy - handleHalfSize; y <= cy+handleHalfSize; y++ {
		for x := cx - handleHalfSize; x <= cx+handleHalfSize; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
				output.Set(x, y, col)
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func (fc *FrameCanvas) drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawNumber draws a frame number centered at the given canvas coordinates.
func (fc *FrameCanvas) drawNumber(output *image.RGBA, n, centerX, centerY int, col color.RGBA) {
	if n < 0 {
		return
	}
	label := strconv.Itoa(n)

	// Scale digit blocks with the zoom so labels stay readable.
	scale := int(fc.engine.View().Zoom * 2)
	if scale < 2 {
		scale = 2
	}
	if scale > 6 {
		scale = 6
	}

	charWidth := 3 * scale
	charHeight := 5 * scale
	spacing := scale
	labelWidth := len(label)*charWidth + (len(label)-1)*spacing

	startX := centerX - labelWidth/2
	startY := centerY - charHeight/2

	bounds := output.Bounds()

	for i, ch := range label {
		pattern := digitPatterns[ch-'0']
		charX := startX + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := startY + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							output.Set(px, py, col)
						}
					}
				}
			}
		}
	}
}
