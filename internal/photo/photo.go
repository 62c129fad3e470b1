// Package photo owns the base photograph: decoding it from disk and exposing
// its pixels as a flat RGBA raster for the segmentation engine and the
// canvas.
package photo

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Raster is a width x height RGBA8 pixel buffer, 4 bytes per pixel,
// row-major with no padding. Segmentation treats it as read-only.
type Raster struct {
	Pix    []uint8
	Width  int
	Height int
}

// Empty reports whether the raster holds no pixels.
func (r Raster) Empty() bool {
	return r.Width <= 0 || r.Height <= 0 || len(r.Pix) < r.Width*r.Height*4
}

// At returns the pixel at (x, y). The caller must stay in bounds.
func (r Raster) At(x, y int) color.RGBA {
	i := (y*r.Width + x) * 4
	return color.RGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// Photo is a loaded base photograph.
type Photo struct {
	Path  string
	Image *image.RGBA
}

// FromImage converts any decoded image to a Photo with a zero-origin RGBA
// buffer, so the raster stride is exactly 4*width.
func FromImage(img image.Image) *Photo {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Photo{Image: rgba}
}

// Load decodes a photograph from disk. JPEG/PNG/etc go through imaging with
// EXIF auto-orientation; WEBP is decoded explicitly since imaging does not
// register it.
func Load(path string) (*Photo, error) {
	var img image.Image
	var err error

	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open photo: %w", openErr)
		}
		defer f.Close()
		img, err = webp.Decode(f)
	} else {
		img, err = imaging.Open(path, imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("decode photo %s: %w", path, err)
	}

	p := FromImage(img)
	p.Path = path
	return p, nil
}

// Raster exposes the photo pixels as a flat RGBA raster.
func (p *Photo) Raster() Raster {
	if p == nil || p.Image == nil {
		return Raster{}
	}
	b := p.Image.Bounds()
	return Raster{Pix: p.Image.Pix, Width: b.Dx(), Height: b.Dy()}
}

// Size returns the photo dimensions in pixels.
func (p *Photo) Size() (int, int) {
	if p == nil || p.Image == nil {
		return 0, 0
	}
	b := p.Image.Bounds()
	return b.Dx(), b.Dy()
}
