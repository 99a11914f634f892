package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hanapwede/job-recommender/internal/types"
)

// ListTags returns the preference tag catalogue ordered by id.
func (db *DB) ListTags(ctx context.Context) ([]types.Tag, error) {
	return db.listCatalogue(ctx, `SELECT id, name FROM tags ORDER BY id`)
}

// ListDisabilityTags returns the disability tag catalogue ordered by id.
func (db *DB) ListDisabilityTags(ctx context.Context) ([]types.Tag, error) {
	return db.listCatalogue(ctx, `SELECT id, name FROM disability_tags ORDER BY id`)
}

func (db *DB) listCatalogue(ctx context.Context, query string) ([]types.Tag, error) {
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[types.Tag])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tags: %w", err)
	}
	return tags, nil
}
