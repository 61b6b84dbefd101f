package llm

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalRequestParts(t *testing.T) {
	data := []byte(`{
  "model": "dummy-video-001",
  "messages": [
    {"role": "system", "content": "ignored"},
    {"role": "user", "content": [
      {"type": "text", "text": "Loop this please"},
      {"type": "image_url", "image_url": {"url": "data:image/png;base64,eA=="}}
    ]}
  ],
  "negative_prompt": "blurry",
  "guidance": 4.5
}`)
	req, err := UnmarshalRequest(data)
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, "Loop this please", req.Prompt())
	image, ok := req.Image()
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,eA==", image)
	if assert.NotNil(t, req.NegativePrompt) {
		assert.Equal(t, "blurry", *req.NegativePrompt)
	}
	if assert.NotNil(t, req.Guidance) {
		assert.Equal(t, 4.5, *req.Guidance)
	}
}

func TestUnmarshalRequestString(t *testing.T) {
	req, err := UnmarshalRequest([]byte(`{"messages":[{"role":"user","content":"hello"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "hello", req.Prompt())
	_, ok := req.Image()
	assert.False(t, ok)
	assert.Nil(t, req.NegativePrompt)
	assert.Nil(t, req.Guidance)
}

func TestUnmarshalContentInvalid(t *testing.T) {
	_, err := UnmarshalRequest([]byte(`{"messages":[{"role":"user","content":42}]}`))
	assert.Error(t, err)
}

func TestRequestMarshal(t *testing.T) {
	req := Request{
		Model:    DefaultModel,
		Messages: []Message{UserMessage(Text("hi"), Image("data:image/gif;base64,R0lG"))},
	}
	data, err := req.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "model": "dummy-video-001",
  "messages": [{"role": "user", "content": [
    {"type": "text", "text": "hi"},
    {"type": "image_url", "image_url": {"url": "data:image/gif;base64,R0lG"}}
  ]}]
}`, string(data))
}

func TestResponseContentString(t *testing.T) {
	resp := Response{
		Object:  "chat.completion",
		Choices: []Choice{{Message: AssistantMessage("http://localhost:8001/download/a.mp4"), FinishReason: "stop"}},
	}
	data, err := resp.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalResponse(data)
	require.NoError(t, err)
	content, ok := decoded.Choices[0].Message.Content.String()
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8001/download/a.mp4", content)
}

func TestContentNotString(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":[{"type":"text","text":"x"}]}`), &m))
	_, ok := m.Content.String()
	assert.False(t, ok)
	assert.Equal(t, "x", m.Content.Prompt())
}

func TestImageFormat(t *testing.T) {
	for path, want := range map[string]string{
		"a.jpg":  "jpeg",
		"a.JPEG": "jpeg",
		"a.png":  "png",
		"a.gif":  "gif",
	} {
		got, err := ImageFormat(path)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, path := range []string{"a.bmp", "a", "a.webp"} {
		_, err := ImageFormat(path)
		assert.True(t, errors.Is(err, ErrUnsupportedImage), path)
	}
}

func TestFileDataURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	uri, err := FileDataURI(path)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("x")), uri)

	mediaType, payload, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediaType)
	assert.Equal(t, "eA==", payload)
}

func TestFileDataURIUnsupportedBeforeRead(t *testing.T) {
	_, err := FileDataURI(filepath.Join(t.TempDir(), "missing.bmp"))
	assert.True(t, errors.Is(err, ErrUnsupportedImage))
}

func TestParseDataURIInvalid(t *testing.T) {
	for _, uri := range []string{
		"https://example.com/image.png",
		"data:image/png,eA==",
		"data:image/png;base64",
	} {
		_, _, err := ParseDataURI(uri)
		assert.True(t, errors.Is(err, ErrNotDataURI), uri)
	}
}
