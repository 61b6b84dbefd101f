package db

import "time"

// Generation is one ledger row, written after a placeholder artifact is created.
type Generation struct {
	ID             string    `json:"id"`
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negative_prompt"`
	Guidance       float64   `json:"guidance"`
	InputBytes     int       `json:"input_bytes"`
	CreatedAt      time.Time `json:"created_at"`
}
