package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/ytget/soql-studio/internal/config"
	"github.com/ytget/soql-studio/internal/fetch"
	"github.com/ytget/soql-studio/internal/library"
	"github.com/ytget/soql-studio/internal/logger"
	"github.com/ytget/soql-studio/internal/platform"
	"github.com/ytget/soql-studio/internal/studio"
	"github.com/ytget/soql-studio/internal/ui"
	"github.com/ytget/soql-studio/internal/worker"
)

// version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.soql-studio"
	AppName = "SoQL Studio"

	shutdownTimeout = 5 * time.Second
)

func main() {
	log, err := logger.New(config.LoadLoggerConfig())
	if err != nil {
		fmt.Printf("failed to build logger: %v\n", err)
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting", zap.String("app", AppName), zap.String("version", version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One runtime for the lifetime of the app
	rt := worker.New(worker.DefaultMaxTasks, log.Named("runtime"))
	if err := rt.Start(ctx); err != nil {
		log.Fatal("failed to start runtime", zap.Error(err))
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			log.Warn("runtime shutdown", zap.Error(err))
		}
	}()

	myApp := app.NewWithID(AppID)
	settings := config.NewSettings(myApp)

	connections := config.NewStore(config.ConnectionFileName, log.Named("config"))
	conn := connections.Load()

	store := library.NewStore(libraryPath(), log.Named("library"))
	if err := store.Load(); err != nil {
		log.Warn("failed to load saved queries", zap.String("path", store.Path()), zap.Error(err))
	}

	fetcher := fetch.NewService(rt, nil, log.Named("fetch"))
	controller := studio.NewController(fetcher, connections, log.Named("studio"))

	window := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	root := ui.NewRootUI(window, myApp, controller, store, settings, conn, log.Named("ui"))
	root.Run(ctx)

	window.ShowAndRun()
	log.Info("window closed")
}

// libraryPath places queries.yaml in the user config directory, falling
// back to the working directory
func libraryPath() string {
	dir, err := platform.GetConfigDir()
	if err != nil {
		return library.FileName
	}
	return filepath.Join(dir, library.FileName)
}
