package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ellypaws/video2world/pkg/api/entities"
	"github.com/ellypaws/video2world/pkg/api/paths"
	"github.com/ellypaws/video2world/pkg/db"
)

const VideoMimeType = "video/mp4"

func (s *Server) getHandlers() pathHandler {
	return pathHandler{
		paths.Download:   handler{s.download, staticMiddleware},
		paths.Ping:       handler{s.ping, nil},
		paths.Generation: handler{s.generation, nil},
	}
}

// download streams an artifact back as video/mp4.
// Identifiers that were never issued, or that try to leave the output directory, are 404.
func (s *Server) download(c echo.Context) error {
	path, err := s.Store.Path(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, VideoMimeType)
	return c.File(path)
}

// ping reports the static configuration read at startup.
func (s *Server) ping(c echo.Context) error {
	return c.JSON(http.StatusOK, entities.PingResponse{
		Status:    "ok",
		ModelSize: s.ModelSize,
		NumGPUs:   s.NumGPUs,
	})
}

// generation returns the ledger entry for an artifact.
// Entries are written once, so found rows are kept in memory.
func (s *Server) generation(c echo.Context) error {
	if s.Database == nil {
		return fail(c, db.ErrNoGeneration)
	}

	id := c.Param("id")
	generation, err := s.generations.Fetch(id, func() (db.Generation, error) {
		return s.Database.GetGeneration(c.Request().Context(), id)
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, generation)
}
