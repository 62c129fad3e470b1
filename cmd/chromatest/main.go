// Command chromatest runs green-screen detection on a photo and outputs the
// detected frame corners.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"

	"billboard-studio/internal/chroma"
	"billboard-studio/internal/photo"
	"billboard-studio/pkg/colorutil"
	"billboard-studio/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to photo (PNG, JPEG, or WEBP)")
	keyColor := flag.String("color", colorutil.FormatHex(colorutil.ChromaKey), "Chroma key color (#rrggbb)")
	tolerance := flag.Int("tolerance", 40, "RGB distance tolerance")
	depth := flag.Int("depth", 10, "Perspective padding depth multiplier")
	refine := flag.Bool("refine", false, "Refine corners with least-squares edge fitting")
	maskPath := flag.String("mask", "", "Write the matched-pixel mask to this PNG")
	thumbPath := flag.String("thumb", "", "Write a 640px thumbnail with the frame drawn")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: chromatest -image <path> [-color #00b140] [-tolerance 40] [-depth 10] [-refine] [-mask out.png] [-thumb out.png]")
		os.Exit(1)
	}

	target, err := colorutil.ParseHex(*keyColor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid color: %v\n", err)
		os.Exit(1)
	}

	p, err := photo.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load photo: %v\n", err)
		os.Exit(1)
	}
	w, h := p.Size()
	fmt.Printf("Loaded %s: %dx%d pixels\n", *imagePath, w, h)

	params := chroma.Params{
		Target:          target,
		Tolerance:       *tolerance,
		DepthMultiplier: *depth,
		RefineCorners:   *refine,
	}
	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Key color: %s\n", colorutil.FormatHex(target))
	fmt.Printf("  Tolerance: %d\n", params.Tolerance)
	fmt.Printf("  Depth multiplier: %d\n", params.DepthMultiplier)
	fmt.Printf("  Corner refinement: %v\n", params.RefineCorners)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	fmt.Printf("\nDetecting green screen...\n")
	quad, err := chroma.NewDetector(logger).Detect(p.Raster(), params, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	names := [4]string{"TL", "TR", "BR", "BL"}
	fmt.Printf("\nDetected frame:\n")
	for i, pt := range quad {
		fmt.Printf("  %s  (%8.1f, %8.1f)\n", names[i], pt.X, pt.Y)
	}

	if *maskPath != "" {
		if err := writeMask(*maskPath, p.Raster(), params); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write mask: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nMask written to %s\n", *maskPath)
	}

	if *thumbPath != "" {
		if err := writeThumb(*thumbPath, p, quad); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write thumbnail: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Thumbnail written to %s\n", *thumbPath)
	}
}

// writeMask renders the raw color match (before dilation) as a grayscale PNG.
func writeMask(path string, r photo.Raster, params chroma.Params) error {
	mask := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	limit := float64(params.Tolerance)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if colorutil.Distance(r.At(x, y), params.Target) <= limit {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, mask)
}

// writeThumb draws the detected frame onto a 640px-wide copy of the photo.
func writeThumb(path string, p *photo.Photo, quad geometry.Quad) error {
	marked := image.NewRGBA(p.Image.Bounds())
	copy(marked.Pix, p.Image.Pix)

	for i := 0; i < 4; i++ {
		drawSegment(marked, quad[i], quad[(i+1)%4], colorutil.Magenta)
	}
	for _, pt := range quad {
		drawCross(marked, pt, colorutil.Yellow)
	}

	thumb := imaging.Resize(marked, 640, 0, imaging.Lanczos)
	return imaging.Save(thumb, path)
}

// drawSegment plots the line between two corners by sampling along it.
func drawSegment(img *image.RGBA, a, b geometry.Point2D, col color.RGBA) {
	steps := int(a.Distance(b)) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(a.X + (b.X-a.X)*t)
		y := int(a.Y + (b.Y-a.Y)*t)
		setThick(img, x, y, col)
	}
}

func drawCross(img *image.RGBA, p geometry.Point2D, col color.RGBA) {
	cx, cy := int(p.X), int(p.Y)
	for d := -8; d <= 8; d++ {
		setThick(img, cx+d, cy, col)
		setThick(img, cx, cy+d, col)
	}
}

func setThick(img *image.RGBA, x, y int, col color.RGBA) {
	bounds := img.Bounds()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.SetRGBA(px, py, col)
			}
		}
	}
}
