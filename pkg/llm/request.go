// Package llm holds the OpenAI chat-completions shapes used as a transport envelope
// for prompts and images.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

func UnmarshalRequest(data []byte) (Request, error) {
	var r Request
	err := json.Unmarshal(data, &r)
	return r, err
}

func (r *Request) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)

const DefaultModel = "dummy-video-001"

type Request struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`

	// Extensions understood by the video service.
	NegativePrompt *string  `json:"negative_prompt,omitempty"`
	Guidance       *float64 `json:"guidance,omitempty"`
}

type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

type PartType string

const (
	TextPart  PartType = "text"
	ImagePart PartType = "image_url"
)

type Part struct {
	Type     PartType  `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// Content is either a plain string or a list of parts on the wire.
// A Content built from a string marshals back to a string.
type Content struct {
	Text  *string
	Parts []Part
}

func TextContent(s string) Content {
	return Content{Text: &s}
}

func PartsContent(parts ...Part) Content {
	return Content{Parts: parts}
}

func Text(s string) Part {
	return Part{Type: TextPart, Text: s}
}

func Image(url string) Part {
	return Part{Type: ImagePart, ImageURL: &ImageURL{URL: url}}
}

func UserMessage(parts ...Part) Message {
	return Message{Role: UserRole, Content: PartsContent(parts...)}
}

func AssistantMessage(s string) Message {
	return Message{Role: AssistantRole, Content: TextContent(s)}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Text != nil {
		return json.Marshal(*c.Text)
	}
	if c.Parts == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Parts)
}

func (c *Content) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*c = Content{}
	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.Text = &s
		return nil
	case len(b) > 0 && b[0] == '[':
		return json.Unmarshal(b, &c.Parts)
	}
	return fmt.Errorf("content must be a string or an array of parts, got %s", b)
}

// String reports the plain-string form, false when the content is not a string.
func (c Content) String() (string, bool) {
	if c.Text == nil {
		return "", false
	}
	return *c.Text, true
}

// Prompt joins every text in the content with newlines.
func (c Content) Prompt() string {
	if c.Text != nil {
		return *c.Text
	}
	var texts []string
	for _, p := range c.Parts {
		if p.Type == TextPart {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// FirstImage returns the url of the first image part.
func (c Content) FirstImage() (string, bool) {
	for _, p := range c.Parts {
		if p.Type == ImagePart && p.ImageURL != nil {
			return p.ImageURL.URL, true
		}
	}
	return "", false
}

// Prompt collects the text of every user message.
func (r *Request) Prompt() string {
	var prompts []string
	for _, m := range r.Messages {
		if m.Role != UserRole {
			continue
		}
		if p := m.Content.Prompt(); p != "" {
			prompts = append(prompts, p)
		}
	}
	return strings.Join(prompts, "\n")
}

// Image returns the first image url across the user messages.
func (r *Request) Image() (string, bool) {
	for _, m := range r.Messages {
		if m.Role != UserRole {
			continue
		}
		if url, ok := m.Content.FirstImage(); ok {
			return url, true
		}
	}
	return "", false
}

func UnmarshalResponse(data []byte) (Response, error) {
	var r Response
	err := json.Unmarshal(data, &r)
	return r, err
}

func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int64   `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}
