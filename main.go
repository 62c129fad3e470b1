// Package main provides the entry point for the Billboard Studio application.
package main

import (
	"log"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"

	"billboard-studio/internal/config"
	"billboard-studio/internal/version"
	"billboard-studio/ui/mainwindow"
)

const appTitle = "Billboard Studio"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Full())

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Printf("Config: %v (using defaults)", err)
		cfg = config.Default()
	}
	logger := newLogger(cfg.LogLevel)

	fyneApp := app.NewWithID("billboard-studio")

	// Preview rendering is provided by an external compositor; the studio
	// runs without one.
	win := mainwindow.New(fyneApp, cfg, nil, logger)
	win.SetTitle(appTitle)

	// Handle command line arguments
	if len(os.Args) > 1 {
		photoPath := os.Args[1]
		if err := win.OpenPhoto(photoPath); err != nil {
			log.Printf("Failed to load photo %s: %v", photoPath, err)
		}
	}

	win.ShowAndRun()
}

// newLogger builds the component logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
