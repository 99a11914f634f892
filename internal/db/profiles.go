package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/types"
)

// -----------------------------------------------------------------------------
// Candidate Profile Methods
// -----------------------------------------------------------------------------

// GetCandidateProfile assembles the recommendation profile for a user from the
// employee profile and saved preference tags. A missing user and a user
// without an employee profile both wrap ranking.ErrCandidateNotFound.
func (db *DB) GetCandidateProfile(ctx context.Context, userID int64) (*types.CandidateProfile, error) {
	var (
		hasProfile bool
		p          = types.CandidateProfile{UserID: userID}
	)
	err := db.pool.QueryRow(ctx,
		`SELECT ep.user_id IS NOT NULL, COALESCE(ep.disability_type, ''), COALESCE(ep.skills, '')
		 FROM users u
		 LEFT JOIN employee_profiles ep ON ep.user_id = u.id
		 WHERE u.id = $1`,
		userID,
	).Scan(&hasProfile, &p.DisabilityType, &p.Skills)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d does not exist", ranking.ErrCandidateNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}
	if !hasProfile {
		return nil, fmt.Errorf("%w: user %d has no employee profile", ranking.ErrCandidateNotFound, userID)
	}

	prefs, err := db.GetUserPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Preferences = prefs.Tags
	return &p, nil
}

// GetUserPreferences returns the preference tag labels saved by a user,
// ordered by tag id. Users without preferences get an empty list.
func (db *DB) GetUserPreferences(ctx context.Context, userID int64) (*types.UserPreferences, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT t.name
		 FROM user_preferences up
		 JOIN tags t ON t.id = up.tag_id
		 WHERE up.user_id = $1
		 ORDER BY t.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user preferences: %w", err)
	}
	defer rows.Close()

	prefs := &types.UserPreferences{UserID: userID, Tags: []string{}}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan user preference: %w", err)
		}
		prefs.Tags = append(prefs.Tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user preferences: %w", err)
	}
	return prefs, nil
}

// ListAppliedJobIDs returns the ids of job posts a user applied to.
func (db *DB) ListAppliedJobIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT job_post_id FROM applications WHERE user_id = $1 ORDER BY job_post_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan applications: %w", err)
	}
	return ids, nil
}
