package db

import (
	"context"
	"time"
)

// Insert statements
const (
	insertGeneration = `
	INSERT INTO generations (id, prompt, negative_prompt, guidance, input_bytes, created_at)
	VALUES (?, ?, ?, ?, ?, ?);
	`
)

// InsertGeneration records g. CreatedAt defaults to now.
func (db *Sqlite) InsertGeneration(ctx context.Context, g Generation) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, insertGeneration,
		g.ID, g.Prompt, g.NegativePrompt, g.Guidance, g.InputBytes,
		g.CreatedAt.UTC().Format(time.RFC3339Nano),
	)

	return err
}
