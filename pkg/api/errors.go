package api

import (
	"fmt"
	"net/http"

	"github.com/go-errors/errors"
	"github.com/labstack/echo/v4"
	logger "github.com/labstack/gommon/log"

	"github.com/ellypaws/video2world/pkg/api/service"
	"github.com/ellypaws/video2world/pkg/crashy"
	"github.com/ellypaws/video2world/pkg/db"
	"github.com/ellypaws/video2world/pkg/storage"
)

// classify maps an error onto its status code and response body.
//
//	*service.ValidationError -> 422
//	storage.ErrNotFound      -> 404
//	db.ErrNoGeneration       -> 404
//	*echo.HTTPError          -> its own code
//	anything else            -> 500
func classify(err error) (int, crashy.ErrorResponse) {
	var validation *service.ValidationError
	var httpError *echo.HTTPError
	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, crashy.Detail(validation.Detail)
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, crashy.Detail(storage.ErrNotFound.Error())
	case errors.Is(err, db.ErrNoGeneration):
		return http.StatusNotFound, crashy.Detail(db.ErrNoGeneration.Error())
	case errors.As(err, &httpError):
		return httpError.Code, crashy.Detail(fmt.Sprint(httpError.Message))
	}
	return http.StatusInternalServerError, crashy.Wrap(err)
}

// fail writes err as a {"detail": ...} response.
// Stacks are only included when the server logs at debug level.
func fail(c echo.Context, err error) error {
	code, response := classify(err)
	if code >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	if c.Logger().Level() > logger.DEBUG {
		response = response.Stripped()
	}

	header := c.Response().Header()
	header.Del("Etag")
	header.Del(echo.HeaderCacheControl)

	if c.Request().Method == http.MethodHead {
		return c.NoContent(code)
	}
	return c.JSON(code, response)
}

// bindError reports a request body that could not be decoded.
func bindError(c echo.Context, err error) error {
	var httpError *echo.HTTPError
	if errors.As(err, &httpError) {
		return fail(c, echo.NewHTTPError(http.StatusUnprocessableEntity, httpError.Message))
	}
	return fail(c, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error()))
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if err := fail(c, err); err != nil {
		c.Logger().Error(err)
	}
}
