package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	logger "github.com/labstack/gommon/log"

	"github.com/ellypaws/video2world/pkg/api/cache"
	"github.com/ellypaws/video2world/pkg/api/service"
	"github.com/ellypaws/video2world/pkg/db"
	"github.com/ellypaws/video2world/pkg/storage"
)

type RunConfig struct {
	Store    *storage.Store
	Database *db.Sqlite
	// ServerHost is the public base for download URLs, nil to use the request's host.
	ServerHost  *url.URL
	ModelSize   string
	NumGPUs     int
	Port        uint
	LogLevel    logger.Lvl
	// Pre runs before routing, for middleware that rewrites the path.
	Pre         []echo.MiddlewareFunc
	Middlewares []echo.MiddlewareFunc
	Extra       []func(e *echo.Echo)
}

// Server holds the state shared by every handler. Nothing in it changes after startup.
type Server struct {
	Generator  *service.Generator
	Store      *storage.Store
	Database   *db.Sqlite
	ServerHost *url.URL
	ModelSize  string
	NumGPUs    int

	generations *cache.LocalCache[db.Generation]
	pre         []echo.MiddlewareFunc
}

func NewServer(config RunConfig) *Server {
	var ledger service.Ledger
	if config.Database != nil {
		ledger = config.Database
	}
	return &Server{
		Generator:  service.NewGenerator(config.Store, ledger),
		Store:      config.Store,
		Database:   config.Database,
		ServerHost: config.ServerHost,
		ModelSize:  config.ModelSize,
		NumGPUs:    config.NumGPUs,

		generations: cache.New[db.Generation](cache.DefaultItems),
		pre:         config.Pre,
	}
}

// Echo builds the router with every route registered.
func (s *Server) Echo(level logger.Lvl, middlewares ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())

	registerAs(e.GET, s.getHandlers())
	registerAs(e.POST, s.postHandlers())
	registerAs(e.HEAD, s.headHandlers())

	e.Logger.SetLevel(level)
	e.Logger.SetHeader(`${time_rfc3339} ${level}	${short_file}:${line}	`)

	e.Pre(s.pre...)
	e.Use(middlewares...)

	return e
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, config RunConfig) error {
	e := NewServer(config).Echo(config.LogLevel, config.Middlewares...)

	for _, f := range config.Extra {
		f(e)
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdown); err != nil {
			e.Logger.Errorf("shutdown: %v", err)
		}
	}()

	err := e.Start(fmt.Sprintf(":%d", config.Port))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type route = func(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route

type handler struct {
	handler    func(c echo.Context) error
	middleware []echo.MiddlewareFunc
}

type pathHandler = map[string]handler

func registerAs(route route, pathHandler pathHandler) {
	for path, handler := range pathHandler {
		route(path, handler.handler, handler.middleware...)
	}
}
