package library

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-errors/errors"
	logger "github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellypaws/video2world/pkg/api"
	"github.com/ellypaws/video2world/pkg/api/entities"
	"github.com/ellypaws/video2world/pkg/db"
	"github.com/ellypaws/video2world/pkg/llm"
	"github.com/ellypaws/video2world/pkg/storage"
)

func tempService(t *testing.T) *Host {
	store, err := storage.New(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, err)
	store.WithTempDir(t.TempDir())

	database, err := db.New(context.Background(), db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	server := httptest.NewServer(api.NewServer(api.RunConfig{
		Store:     store,
		Database:  database,
		ModelSize: "dummy",
	}).Echo(logger.ERROR))
	t.Cleanup(server.Close)

	h, err := FromString(server.URL + "/")
	require.NoError(t, err)
	return h
}

func TestFromString(t *testing.T) {
	h, err := FromString("http://localhost:8001/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8001/v1/chat/completions", h.WithPath("/v1/chat/completions").String())

	h, err = FromString("https://example.com/prefix")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/prefix/ping", h.WithPath("/ping").String())
	assert.Equal(t, "https://example.com", h.Base())

	_, err = FromString("localhost:8001")
	assert.Error(t, err)
}

func TestNilHost(t *testing.T) {
	_, err := Get(nil)
	assert.True(t, errors.Is(err, ErrNilHost))
}

func TestGetPing(t *testing.T) {
	h := tempService(t)
	ping, err := h.GetPing(NewClient())
	require.NoError(t, err)
	assert.Equal(t, entities.PingResponse{Status: "ok", ModelSize: "dummy"}, ping)
}

func TestChatCompletionsAndDownload(t *testing.T) {
	h := tempService(t)
	c := NewClient()

	body, err := h.PostChatCompletions(c, llm.Request{
		Model:    llm.DefaultModel,
		Messages: []llm.Message{llm.UserMessage(llm.Text("Loop this please"), llm.Image(llm.DataURI("png", []byte("x"))))},
	})
	require.NoError(t, err)

	videoURL, err := VideoURL(body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(videoURL, h.Base()+"/download/"))

	b, err := Download(c, videoURL)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestGenerateAndGetDownload(t *testing.T) {
	h := tempService(t)
	c := NewClient()

	id, err := h.PostGenerate(c, entities.GenerateRequest{
		Prompt: entities.Prompt("test"),
		Image:  base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, ".mp4"))

	b, err := h.GetDownload(c, id)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestStatusError(t *testing.T) {
	h := tempService(t)

	_, err := h.PostGenerate(NewClient(), entities.GenerateRequest{Prompt: entities.Prompt("test")})
	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusUnprocessableEntity, status.StatusCode)
	assert.Contains(t, status.Error(), "Image data required")

	_, err = h.GetDownload(NewClient(), "missing.mp4")
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusNotFound, status.StatusCode)
}

func TestDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>" + strings.Repeat("x", 300) + "</html>"))
	}))
	defer server.Close()

	h, err := FromString(server.URL)
	require.NoError(t, err)
	_, err = h.GetPing(NewClient())

	var decode *DecodeError
	require.True(t, errors.As(err, &decode))
	assert.True(t, strings.HasPrefix(decode.Error(), "invalid JSON: <html>"))
	assert.True(t, strings.HasSuffix(decode.Error(), "…"))
}

func TestVideoURL(t *testing.T) {
	got, err := VideoURL([]byte(`{"choices":[{"message":{"role":"assistant","content":"http://x/download/a.mp4"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "http://x/download/a.mp4", got)

	for _, body := range []string{
		`{}`,
		`{"choices":[]}`,
		`{"choices":[{"message":{"content":42}}]}`,
		`{"choices":[{"message":{"content":[{"type":"text","text":"x"}]}}]}`,
		`{"choices":"nope"}`,
		`[]`,
	} {
		_, err := VideoURL([]byte(body))
		assert.True(t, errors.Is(err, ErrUnexpectedResponse), body)
	}
}

func TestDownloadKeepsURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.RequestURI()))
	}))
	t.Cleanup(server.Close)

	for _, target := range []string{
		"/download/a.mp4/",
		"/download/a.mp4?sig=abc/",
		"/files/",
	} {
		b, err := Download(NewClient(), server.URL+target)
		require.NoError(t, err)
		assert.Equal(t, target, string(b))
	}

	_, err := Download(NewClient(), "/download/a.mp4")
	assert.Error(t, err)
}
