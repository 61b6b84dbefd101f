package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/muesli/termenv"

	"github.com/ellypaws/video2world/pkg/api"
	"github.com/ellypaws/video2world/pkg/api/service"
	"github.com/ellypaws/video2world/pkg/config"
	"github.com/ellypaws/video2world/pkg/db"
	"github.com/ellypaws/video2world/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	storage.SetLogLevel(cfg.LogLevel)
	service.SetLogLevel(cfg.LogLevel)
	db.SetLogLevel(cfg.LogLevel)

	store, err := storage.New(cfg.OutDir)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg.LedgerDB)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.Error(database); err != nil {
		log.Fatal(err)
	}

	err = api.Run(ctx, api.RunConfig{
		Store:       store,
		Database:    database,
		ServerHost:  cfg.APIHost,
		ModelSize:   cfg.ModelSize,
		NumGPUs:     cfg.NumGPUs,
		Port:        cfg.Port,
		LogLevel:    cfg.LogLevel,
		Pre:         pre,
		Middlewares: middlewares,
		Extra:       []func(e *echo.Echo){banner(cfg, store)},
	})
	if err != nil {
		log.Fatal(err)
	}
}

var pre = []echo.MiddlewareFunc{
	middleware.RemoveTrailingSlash(),
}

var middlewares = []echo.MiddlewareFunc{
	middleware.GzipWithConfig(middleware.GzipConfig{Skipper: api.SkipDownloads}),
	middleware.Decompress(),
	middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.POST},
	}),
	middleware.Logger(),
}

func banner(cfg *config.Config, store *storage.Store) func(e *echo.Echo) {
	return func(e *echo.Echo) {
		colors := []struct {
			text  string
			color string
		}{
			{"v", "#447294"},
			{"i", "#4f7d9e"},
			{"d", "#5987a8"},
			{"e", "#6492b2"},
			{"o", "#6f9cbd"},
			{"2", "#7aa7c7"},
			{"w", "#84b1d1"},
			{"o", "#8fbcdb"},
			{"r", "#a0c0d6"},
			{"l", "#b1c5d1"},
			{"d", "#c2c9cc"},
		}

		var coloredText strings.Builder
		for _, ansi := range colors {
			coloredText.WriteString(termenv.String(ansi.text).Foreground(termenv.RGBColor(ansi.color)).Bold().String())
		}

		e.Logger.Infof("%s %s", coloredText.String(), "stub video generation service")

		e.Logger.Infof("   model size: %s", cfg.ModelSize)
		e.Logger.Infof("         gpus: %d", cfg.NumGPUs)
		e.Logger.Infof("      out dir: %s", store.Dir())
		e.Logger.Infof("       ledger: %s", cfg.LedgerDB)
		if cfg.APIHost != nil {
			e.Logger.Infof("     api host: %s", cfg.APIHost)
		} else {
			e.Logger.Infof("     api host: (request host)")
		}
	}
}
