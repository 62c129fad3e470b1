package photo

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFromImageNormalizesOrigin(t *testing.T) {
	// A sub-image style bounds that does not start at (0,0).
	src := image.NewRGBA(image.Rect(10, 20, 50, 60))
	src.SetRGBA(12, 22, color.RGBA{R: 200, G: 10, B: 30, A: 255})

	p := FromImage(src)
	w, h := p.Size()
	if w != 40 || h != 40 {
		t.Fatalf("size = %dx%d, want 40x40", w, h)
	}

	r := p.Raster()
	if r.Empty() {
		t.Fatal("raster is empty")
	}
	got := r.At(2, 2)
	if got != (color.RGBA{R: 200, G: 10, B: 30, A: 255}) {
		t.Errorf("pixel (2,2) = %v, want the shifted source pixel", got)
	}
	if len(r.Pix) != w*h*4 {
		t.Errorf("pix length = %d, want %d (stride must be 4*width)", len(r.Pix), w*h*4)
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.SetRGBA(3, 2, color.RGBA{R: 0, G: 177, B: 64, A: 255})

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Path != path {
		t.Errorf("path = %q, want %q", p.Path, path)
	}
	w, h := p.Size()
	if w != 8 || h != 6 {
		t.Fatalf("size = %dx%d, want 8x6", w, h)
	}
	if got := p.Raster().At(3, 2); got != (color.RGBA{R: 0, G: 177, B: 64, A: 255}) {
		t.Errorf("pixel (3,2) = %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestNilPhotoRaster(t *testing.T) {
	var p *Photo
	if !p.Raster().Empty() {
		t.Error("nil photo raster is not empty")
	}
	if w, h := p.Size(); w != 0 || h != 0 {
		t.Errorf("nil photo size = %dx%d", w, h)
	}
}
