package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ellypaws/video2world/pkg/db"
)

func (s *Server) headHandlers() pathHandler {
	return pathHandler{
		"/": handler{s.head, withCache},
	}
}

// head is the liveness probe. It fails when the ledger stops answering.
func (s *Server) head(c echo.Context) error {
	if s.Database != nil {
		if err := db.Error(s.Database); err != nil {
			c.Logger().Errorf("ledger unavailable: %v", err)
			return fail(c, echo.NewHTTPError(http.StatusServiceUnavailable, "Ledger unavailable"))
		}
	}
	return c.NoContent(http.StatusOK)
}
