package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"fyne.io/fyne/v2/app"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/bridge"
	"github.com/ytget/bili-audio/internal/config"
	"github.com/ytget/bili-audio/internal/download"
	"github.com/ytget/bili-audio/internal/library"
	"github.com/ytget/bili-audio/internal/transcode"
	"github.com/ytget/bili-audio/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.bili-audio"
	AppName = "Bili Audio"

	apiTimeout = 30 * time.Second
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("starting", slog.String("app", AppName), slog.String("version", version))

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())
	myWindow := myApp.NewWindow(AppName)

	settings := config.NewSettings(myApp)

	client := bili.NewClient(
		bili.WithHTTPClient(&http.Client{Timeout: apiTimeout}),
		bili.WithSigner(bili.Signer{Salt: settings.GetSaltMode().Func()}),
		bili.WithLogger(logger),
	)
	boundary := bridge.New(client, logger)

	converter := transcode.New(logger)
	if err := converter.Available(); err != nil {
		logger.Warn("downloads will fail until ffmpeg is installed", slog.Any("err", err))
	}

	downloadSvc := download.NewService(boundary, converter, settings.GetMaxParallelDownloads(),
		download.WithLogger(logger))

	ui.NewRootUI(myWindow, ui.Deps{
		Settings:  settings,
		Library:   library.New(boundary, settings.Creators(), logger),
		Bridge:    boundary,
		Downloads: downloadSvc,
		Logger:    logger,
	})

	myWindow.ShowAndRun()
}
