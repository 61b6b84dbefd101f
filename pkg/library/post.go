package library

import (
	"encoding/json"
	"net/http"

	"github.com/go-errors/errors"

	"github.com/ellypaws/video2world/pkg/api/entities"
	"github.com/ellypaws/video2world/pkg/api/paths"
	"github.com/ellypaws/video2world/pkg/llm"
)

func Post(h *Host, opts ...func(*Request)) ([]byte, error) {
	return NewRequest(h, http.MethodPost, opts...).Do()
}

var ErrUnexpectedResponse = errors.Errorf("unexpected response")

// PostChatCompletions sends req to /v1/chat/completions.
// The reply is only checked to be JSON; use VideoURL to read it.
func (h *Host) PostChatCompletions(c *http.Client, req llm.Request) ([]byte, error) {
	var raw json.RawMessage
	_, err := Post(h.WithPath(paths.ChatCompletions),
		WithStruct(req),
		WithClient(c),
		WithDest(&raw),
	)
	return raw, err
}

// VideoURL reads choices[0].message.content from a chat completion as a string.
func VideoURL(body []byte) (string, error) {
	response, err := llm.UnmarshalResponse(body)
	if err != nil {
		return "", errors.WrapPrefix(ErrUnexpectedResponse, err.Error(), 0)
	}
	if len(response.Choices) == 0 {
		return "", errors.WrapPrefix(ErrUnexpectedResponse, "no choices", 0)
	}
	content, ok := response.Choices[0].Message.Content.String()
	if !ok {
		return "", errors.WrapPrefix(ErrUnexpectedResponse, "message content is not a string", 0)
	}
	return content, nil
}

// PostGenerate calls /generate directly, returning the artifact identifier.
func (h *Host) PostGenerate(c *http.Client, req entities.GenerateRequest) (string, error) {
	var response entities.GenerateResponse
	_, err := Post(h.WithPath(paths.Generate),
		WithStruct(req),
		WithClient(c),
		WithDest(&response),
	)
	return response.VideoPath, err
}
