package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ellypaws/video2world/pkg/api/paths"
)

const timeToLive = 5 * time.Minute

var timeToLiveString = fmt.Sprintf("max-age=%v", timeToLive.Seconds())

func SetCacheHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, timeToLiveString)
		return next(c)
	}
}

var withCache = []echo.MiddlewareFunc{SetCacheHeaders}

// Static marks a response as immutable. The ETag is the last path segment,
// so conditional requests are answered by http.ServeContent.
func Static(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := strings.Split(c.Request().URL.Path, "/")
		etag := s[len(s)-1]

		c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400, immutable") // 24 hours
		c.Response().Header().Set("Etag", `"`+etag+`"`)
		return next(c)
	}
}

var staticMiddleware = []echo.MiddlewareFunc{Static}

// SkipDownloads keeps compression middleware away from artifact downloads.
func SkipDownloads(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, paths.DownloadPrefix)
}
