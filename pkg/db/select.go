package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-errors/errors"
)

// Selection statements
const (
	selectGeneration = `
	SELECT id,
	       prompt,
	       negative_prompt,
	       guidance,
	       input_bytes,
	       created_at
	FROM generations WHERE id = ?;
	`

	countGenerations = `
	SELECT COUNT(*) FROM generations;
	`
)

var ErrNoGeneration = errors.Errorf("no such generation")

func (db *Sqlite) GetGeneration(ctx context.Context, id string) (Generation, error) {
	var g Generation
	var createdAt string

	err := db.QueryRowContext(ctx, selectGeneration, id).Scan(
		&g.ID, &g.Prompt, &g.NegativePrompt, &g.Guidance, &g.InputBytes, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNoGeneration
	}
	if err != nil {
		return g, err
	}

	g.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return g, errors.WrapPrefix(err, "invalid created_at", 0)
	}

	return g, nil
}

func (db *Sqlite) CountGenerations(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, countGenerations).Scan(&n)
	return n, err
}
