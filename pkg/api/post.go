package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ellypaws/video2world/pkg/api/entities"
	"github.com/ellypaws/video2world/pkg/api/paths"
	"github.com/ellypaws/video2world/pkg/api/service"
	"github.com/ellypaws/video2world/pkg/llm"
)

func (s *Server) postHandlers() pathHandler {
	return pathHandler{
		paths.Generate:        handler{s.generate, nil},
		paths.ChatCompletions: handler{s.chatCompletions, nil},
	}
}

// generate creates a placeholder artifact for a GenerateRequest.
// Example:
//
//	{"prompt": "test", "image": "eA=="} -> {"video_path": "<uuid>.mp4"}
func (s *Server) generate(c echo.Context) error {
	var request entities.GenerateRequest
	if err := c.Bind(&request); err != nil {
		return bindError(c, err)
	}

	id, err := s.Generator.Generate(c.Request().Context(), request)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, entities.GenerateResponse{VideoPath: id})
}

// chatCompletions accepts an OpenAI chat request carrying the prompt as text parts
// and the image as a base64 data URI. The assistant reply is the download URL.
func (s *Server) chatCompletions(c echo.Context) error {
	var request llm.Request
	if err := c.Bind(&request); err != nil {
		return bindError(c, err)
	}

	uri, ok := request.Image()
	if !ok || uri == "" {
		return fail(c, service.ErrImageRequired)
	}

	_, payload, err := llm.ParseDataURI(uri)
	if err != nil {
		return fail(c, service.ErrImageEncoding)
	}

	generate := entities.GenerateRequest{
		Prompt:   entities.Prompt(request.Prompt()),
		Image:    payload,
		Guidance: request.Guidance,
	}
	if request.NegativePrompt != nil {
		generate.NegativePrompt = *request.NegativePrompt
	}

	id, err := s.Generator.Generate(c.Request().Context(), generate)
	if err != nil {
		return fail(c, err)
	}

	model := request.Model
	if model == "" {
		model = llm.DefaultModel
	}

	return c.JSON(http.StatusOK, llm.Response{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []llm.Choice{{
			Index:        0,
			Message:      llm.AssistantMessage(s.downloadURL(c, id)),
			FinishReason: "stop",
		}},
	})
}

// downloadURL builds the absolute URL for id, preferring the configured ServerHost.
func (s *Server) downloadURL(c echo.Context, id string) string {
	base := url.URL{Scheme: c.Scheme(), Host: c.Request().Host}
	if s.ServerHost != nil {
		base = *s.ServerHost
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + paths.DownloadPrefix + id
	base.RawQuery = ""
	base.Fragment = ""
	return base.String()
}
