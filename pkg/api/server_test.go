package api

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	logger "github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"

	"github.com/ellypaws/video2world/pkg/db"
	"github.com/ellypaws/video2world/pkg/storage"
)

func tempServer(t *testing.T) *Server {
	store, err := storage.New(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, err)
	store.WithTempDir(t.TempDir())

	database, err := db.New(context.Background(), db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return NewServer(RunConfig{
		Store:     store,
		Database:  database,
		ModelSize: "14B",
		NumGPUs:   2,
	})
}

func tempEcho(t *testing.T) (*Server, *echo.Echo) {
	s := tempServer(t)
	return s, s.Echo(logger.ERROR)
}

func withServerHost(s *Server, host string) *Server {
	u, _ := url.Parse(host)
	s.ServerHost = u
	return s
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
