package entities

const DefaultGuidance = 7.0

// GenerateRequest is the body of POST /generate.
// Image is base64 encoded. Prompt is a pointer so a missing prompt can be told apart from an empty one,
// Guidance so an omitted value can take the default.
type GenerateRequest struct {
	Prompt         *string  `json:"prompt"`
	Image          string   `json:"image"`
	NegativePrompt string   `json:"negative_prompt"`
	Guidance       *float64 `json:"guidance,omitempty"`
}

// Prompt returns a pointer to s for use in GenerateRequest.
func Prompt(s string) *string {
	return &s
}

// PromptText returns the prompt, empty when unset.
func (r GenerateRequest) PromptText() string {
	if r.Prompt == nil {
		return ""
	}
	return *r.Prompt
}

// GuidanceOrDefault returns the requested guidance, DefaultGuidance when unset.
func (r GenerateRequest) GuidanceOrDefault() float64 {
	if r.Guidance == nil {
		return DefaultGuidance
	}
	return *r.Guidance
}

type GenerateResponse struct {
	VideoPath string `json:"video_path"`
}

type PingResponse struct {
	Status    string `json:"status"`
	ModelSize string `json:"model_size"`
	NumGPUs   int    `json:"num_gpus"`
}
