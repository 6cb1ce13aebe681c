package main

import (
	"embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"

	"screenpipe/internal/config"
	"screenpipe/internal/database"
	"screenpipe/internal/events"
	"screenpipe/internal/logger"
	"screenpipe/internal/services"
	"screenpipe/internal/store"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, &logger.Options{
		Level:      cfg.LogLevel,
		TimeFormat: logger.DefaultOptions.TimeFormat,
		NoColor:    cfg.LogNoColor,
	})
	slog.SetDefault(log)

	stores := store.NewProvider(
		store.WithDataDir(cfg.DataDir),
		store.WithOpener(func(path string) (store.Store, error) {
			return store.Open(path,
				store.WithLogger(log),
				store.WithLogLevel(database.ParseLogLevel(cfg.DBLogLevel)),
			)
		}),
	)
	svc := services.NewServices(stores, log)
	app := NewApp(svc.Settings, svc.Stores, log)
	events.EnableRuntimeEmitter()

	// Create application with options
	err = wails.Run(&options.App{
		Title:  "screenpipe",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "screenpipe",
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		log.Error("wails exited with error", logger.Err(err))
		os.Exit(1)
	}
}
