package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	logger "github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellypaws/video2world/pkg/api"
	"github.com/ellypaws/video2world/pkg/db"
	"github.com/ellypaws/video2world/pkg/storage"
)

// production builds the router with the same middleware chain main uses.
func production(t *testing.T) (*api.Server, *echo.Echo) {
	store, err := storage.New(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, err)
	store.WithTempDir(t.TempDir())

	database, err := db.New(context.Background(), db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	s := api.NewServer(api.RunConfig{
		Store:     store,
		Database:  database,
		ModelSize: "dummy",
		Pre:       pre,
	})
	e := s.Echo(logger.OFF, middlewares...)
	return s, e
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDownloadIsNotCompressed(t *testing.T) {
	s, e := production(t)

	id, err := s.Store.CreatePlaceholder()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/download/"+id, nil)
	req.Header.Set(echo.HeaderAcceptEncoding, "gzip")
	rec := do(e, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderContentEncoding))
	assert.Equal(t, api.VideoMimeType, rec.Header().Get(echo.HeaderContentType))
	assert.Empty(t, rec.Body.Bytes())
}

func TestJSONIsCompressed(t *testing.T) {
	_, e := production(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderAcceptEncoding, "gzip")
	rec := do(e, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get(echo.HeaderContentEncoding))
}

func TestTrailingSlash(t *testing.T) {
	_, e := production(t)

	rec := do(e, httptest.NewRequest(http.MethodGet, "/ping/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","model_size":"dummy","num_gpus":0}`, rec.Body.String())
}

func TestGenerateThroughMiddlewares(t *testing.T) {
	s, e := production(t)

	req := httptest.NewRequest(http.MethodPost, "/generate/", strings.NewReader(fmt.Sprintf(`{"prompt":"test","image":%q}`, "eA==")))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), ".mp4")

	entries, err := filepath.Glob(filepath.Join(s.Store.Dir(), "*.mp4"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
