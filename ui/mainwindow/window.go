// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"billboard-studio/internal/config"
	"billboard-studio/internal/editor"
	"billboard-studio/internal/frame"
	"billboard-studio/internal/photo"
	"billboard-studio/internal/preview"
	"billboard-studio/internal/template"
	"billboard-studio/internal/version"
	appcanvas "billboard-studio/ui/canvas"
	"billboard-studio/pkg/colorutil"
	"billboard-studio/pkg/geometry"
)

const (
	prefKeyLastDir = "lastDirectory"
)

var photoExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	logger *slog.Logger

	engine *editor.Engine
	canvas *appcanvas.FrameCanvas

	cfg       config.Config
	schedule  *preview.Scheduler
	statusBar *widget.Label

	previewImage *fynecanvas.Image
	chromaLabel  *widget.Label

	templatePath string
}

// New creates the main window. renderer may be nil, in which case the
// preview pane stays empty; everything else works without it.
func New(fyneApp fyne.App, cfg config.Config, renderer preview.Renderer, logger *slog.Logger) *MainWindow {
	if logger == nil {
		logger = slog.Default()
	}
	win := fyneApp.NewWindow("Billboard Studio")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		logger: logger,
		cfg:    cfg,
		engine: editor.New(logger),
	}
	mw.engine.SetDetectParams(cfg.DetectParams())

	if renderer != nil {
		mw.schedule = preview.NewScheduler(renderer, mw.applyPreview,
			cfg.PreviewDebounce(), logger)
		mw.engine.SetPreviews(mw.schedule)
	}

	mw.setupUI()
	mw.setupMenus()

	win.SetOnClosed(func() {
		if mw.schedule != nil {
			mw.schedule.Close()
		}
	})
	return mw
}

// Engine exposes the editing engine, mainly for startup argument handling.
func (mw *MainWindow) Engine() *editor.Engine { return mw.engine }

// OpenPhoto loads a photograph from disk into the editor.
func (mw *MainWindow) OpenPhoto(path string) error {
	p, err := photo.Load(path)
	if err != nil {
		return err
	}
	mw.engine.SetPhoto(p)
	mw.SetTitle("Billboard Studio - " + filepath.Base(path))
	mw.updateStatus(fmt.Sprintf("Loaded %s", filepath.Base(path)))
	return nil
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = appcanvas.NewFrameCanvas(mw.engine)
	mw.statusBar = widget.NewLabel("Ready")

	mw.previewImage = fynecanvas.NewImageFromImage(nil)
	mw.previewImage.FillMode = fynecanvas.ImageFillContain
	mw.previewImage.SetMinSize(fyne.NewSize(200, 150))

	mw.chromaLabel = widget.NewLabel("Key: " + mw.cfg.ChromaKey)
	mw.engine.OnColorPick(func(c color.RGBA) {
		mw.chromaLabel.SetText("Key: " + colorutil.FormatHex(c))
		mw.updateStatus("Chroma key set to " + colorutil.FormatHex(c))
	})

	side := container.NewVBox(
		widget.NewLabel("Preview"),
		mw.previewImage,
		widget.NewSeparator(),
		mw.chromaLabel,
		widget.NewSeparator(),
		mw.appearancePanel(),
	)

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil, nil, nil,
		mw.canvas,
	)

	split := container.NewHSplit(container.NewVScroll(side), canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// createToolbar creates the toolbar with zoom and frame controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", func() { mw.engine.ZoomOut(mw.canvasCenter()) })
	zoomInBtn := widget.NewButton("+", func() { mw.engine.ZoomIn(mw.canvasCenter()) })
	fitBtn := widget.NewButton("Fit", mw.engine.ResetView)
	detectBtn := widget.NewButton("Detect", mw.onDetect)
	addBtn := widget.NewButton("Add Frame", mw.onAddFrame)
	deleteBtn := widget.NewButton("Delete", mw.onDeleteFrame)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		widget.NewSeparator(),
		detectBtn,
		addBtn,
		deleteBtn,
	)
}

// appearancePanel builds sliders for the active frame's appearance config.
func (mw *MainWindow) appearancePanel() fyne.CanvasObject {
	type sliderSpec struct {
		label    string
		min, max float64
		get      func(frame.AppearanceConfig) float64
		set      func(*frame.AppearanceConfig, float64)
	}

	specs := []sliderSpec{
		{"Brightness", 50, 200,
			func(c frame.AppearanceConfig) float64 { return c.Brightness },
			func(c *frame.AppearanceConfig, v float64) { c.Brightness = v }},
		{"Contrast", 50, 200,
			func(c frame.AppearanceConfig) float64 { return c.Contrast },
			func(c *frame.AppearanceConfig, v float64) { c.Contrast = v }},
		{"Saturation", 0, 200,
			func(c frame.AppearanceConfig) float64 { return c.Saturation },
			func(c *frame.AppearanceConfig, v float64) { c.Saturation = v }},
		{"Depth", 5, 30,
			func(c frame.AppearanceConfig) float64 { return c.DepthMultiplier },
			func(c *frame.AppearanceConfig, v float64) { c.DepthMultiplier = v }},
		{"Opacity", 0, 100,
			func(c frame.AppearanceConfig) float64 { return c.OverlayOpacity },
			func(c *frame.AppearanceConfig, v float64) { c.OverlayOpacity = v }},
		{"Shadow", 0, 100,
			func(c frame.AppearanceConfig) float64 { return c.ShadowIntensity },
			func(c *frame.AppearanceConfig, v float64) { c.ShadowIntensity = v }},
	}

	items := []fyne.CanvasObject{widget.NewLabel("Appearance")}
	for _, spec := range specs {
		spec := spec
		slider := widget.NewSlider(spec.min, spec.max)
		slider.Value = spec.get(mw.engine.Store().ActiveConfig())
		slider.OnChanged = func(v float64) {
			cfg := mw.engine.Store().ActiveConfig()
			spec.set(&cfg, v)
			mw.engine.SetActiveConfig(cfg)
		}
		items = append(items, widget.NewLabel(spec.label), slider)
	}

	directions := []string{
		string(frame.LightTopLeft), string(frame.LightTop), string(frame.LightTopRight),
		string(frame.LightLeft), string(frame.LightCenter), string(frame.LightRight),
		string(frame.LightBottomLeft), string(frame.LightBottom), string(frame.LightBottomRight),
	}
	lightSelect := widget.NewSelect(directions, func(s string) {
		cfg := mw.engine.Store().ActiveConfig()
		cfg.LightDirection = frame.LightDirection(s)
		mw.engine.SetActiveConfig(cfg)
	})
	lightSelect.SetSelected(string(frame.LightCenter))
	items = append(items, widget.NewLabel("Light"), lightSelect)

	return container.NewVBox(items...)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Photo...", mw.onOpenPhoto),
		fyne.NewMenuItem("Load Creative...", mw.onLoadCreative),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Template...", mw.onOpenTemplate),
		fyne.NewMenuItem("Save Template As...", mw.onSaveTemplate),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Frames...", mw.onImportFrames),
		fyne.NewMenuItem("Export Frames...", mw.onExportFrames),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.engine.ZoomIn(mw.canvasCenter()) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.engine.ZoomOut(mw.canvasCenter()) }),
		fyne.NewMenuItem("Fit to Window", mw.engine.ResetView),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Detect Green Screen", mw.onDetect),
		fyne.NewMenuItem("Add Frame", mw.onAddFrame),
		fyne.NewMenuItem("Delete Frame", mw.onDeleteFrame),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear All Frames", mw.onClearFrames),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, toolsMenu, helpMenu))
}

// applyPreview receives rendered previews from the scheduler's render
// goroutine. Canvas refreshes are safe off the UI thread.
func (mw *MainWindow) applyPreview(img image.Image) {
	mw.previewImage.Image = img
	mw.previewImage.Refresh()
}

// canvasCenter returns the screen-space center of the canvas, the anchor for
// button and menu zooming.
func (mw *MainWindow) canvasCenter() geometry.Point2D {
	size := mw.canvas.Size()
	return geometry.Point2D{X: float64(size.Width) / 2, Y: float64(size.Height) / 2}
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onOpenPhoto() {
	mw.openFile(photoExtensions, func(path string) {
		if err := mw.OpenPhoto(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	})
}

func (mw *MainWindow) onLoadCreative() {
	mw.openFile(photoExtensions, func(path string) {
		p, err := photo.Load(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.engine.SetCreative(p.Raster())
		mw.updateStatus("Creative loaded: " + filepath.Base(path))
	})
}

func (mw *MainWindow) onOpenTemplate() {
	mw.openFile([]string{".bbtpl"}, func(path string) {
		tpl, err := template.Load(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if photoPath := tpl.GetPhotoPath(path); photoPath != "" {
			if err := mw.OpenPhoto(photoPath); err != nil {
				dialog.ShowError(fmt.Errorf("template photo: %w", err), mw.Window)
				return
			}
		}
		tpl.RestoreFrames(mw.engine.Store())
		mw.templatePath = path
		mw.canvas.Refresh()
		mw.updateStatus(fmt.Sprintf("Template %q: %d frames", tpl.Name, len(tpl.Frames)))
	})
}

func (mw *MainWindow) onSaveTemplate() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		mw.saveLastDir(path)

		name := filepath.Base(path)
		tpl := template.New(name[:len(name)-len(filepath.Ext(name))])
		if p := mw.engine.Photo(); p != nil && p.Path != "" {
			tpl.SetPhoto(path, p.Path)
		}
		tpl.CaptureFrames(mw.engine.Store())
		if err := tpl.Save(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.templatePath = path
		mw.updateStatus("Template saved: " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName("template.bbtpl")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onImportFrames() {
	mw.openFile([]string{".json"}, func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if err := mw.engine.ImportJSON(data); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus(fmt.Sprintf("Imported %d frames", mw.engine.Store().Len()))
	})
}

func (mw *MainWindow) onExportFrames() {
	data, err := mw.engine.ExportJSON()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		mw.saveLastDir(writer.URI().Path())
		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Frames exported")
	}, mw.Window)
	fd.SetFileName("frames.json")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onDetect() {
	if err := mw.engine.Detect(); err != nil {
		mw.updateStatus("No green screen region found")
		return
	}
	mw.updateStatus("Green screen detected; Add Frame to keep it")
}

func (mw *MainWindow) onAddFrame() {
	idx, err := mw.engine.AddFrame()
	if err != nil {
		mw.updateStatus("Draw or detect four corners first")
		return
	}
	mw.updateStatus(fmt.Sprintf("Frame %d added", idx+1))
}

func (mw *MainWindow) onDeleteFrame() {
	active := mw.engine.Store().Active()
	if active == frame.ActiveCurrent {
		mw.engine.Store().ClearCurrent()
		mw.canvas.Refresh()
		mw.updateStatus("Current points cleared")
		return
	}
	if err := mw.engine.DeleteFrame(active); err != nil {
		mw.updateStatus("No frame selected")
		return
	}
	mw.updateStatus(fmt.Sprintf("Frame %d deleted", active+1))
}

func (mw *MainWindow) onClearFrames() {
	dialog.ShowConfirm("Clear All Frames", "Remove every frame from this photo?",
		func(ok bool) {
			if !ok {
				return
			}
			mw.engine.Store().Clear()
			mw.canvas.Refresh()
			mw.updateStatus("All frames cleared")
		}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		fmt.Sprintf("Billboard Studio %s\nFrame geometry and green screen detection.",
			version.Version), mw.Window)
}

// openFile shows a file-open dialog filtered to the given extensions and
// hands the chosen path to fn.
func (mw *MainWindow) openFile(extensions []string, fn func(path string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		fn(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(extensions))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}
