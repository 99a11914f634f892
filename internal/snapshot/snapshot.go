// Package snapshot stores a self-contained copy of the job corpus and candidate
// profiles in a SQLite file so recommendations can run without PostgreSQL.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	post_id      INTEGER PRIMARY KEY,
	job_title    TEXT NOT NULL,
	job_desc     TEXT NOT NULL DEFAULT '',
	skills_req   TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	job_type     TEXT NOT NULL DEFAULT '',
	salary_range TEXT NOT NULL DEFAULT '',
	posted_by    INTEGER NOT NULL DEFAULT 0,
	comp_name    TEXT NOT NULL DEFAULT '',
	job_fair_id  INTEGER
);
CREATE TABLE IF NOT EXISTS job_tags (
	post_id  INTEGER NOT NULL REFERENCES jobs(post_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	PRIMARY KEY (post_id, position)
);
CREATE TABLE IF NOT EXISTS job_disability_tags (
	post_id  INTEGER NOT NULL REFERENCES jobs(post_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	PRIMARY KEY (post_id, position)
);
CREATE TABLE IF NOT EXISTS candidates (
	user_id         INTEGER PRIMARY KEY,
	disability_type TEXT NOT NULL DEFAULT '',
	skills          TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS candidate_preferences (
	user_id  INTEGER NOT NULL REFERENCES candidates(user_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	PRIMARY KEY (user_id, position)
);
`

// Store reads and writes a snapshot file. It implements ranking.CorpusReader
// and ranking.ProfileReader.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListJobPostings returns the jobs in scope ordered by post_id.
func (s *Store) ListJobPostings(ctx context.Context, scope ranking.Scope) ([]types.JobPosting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, job_title, job_desc, skills_req, category, location, job_type,
		       salary_range, posted_by, comp_name, job_fair_id
		FROM jobs
		WHERE (?1 IS NULL OR posted_by = ?1)
		  AND (?2 IS NULL OR job_fair_id = ?2)
		ORDER BY post_id`,
		nullable(scope.EmployerID), nullable(scope.JobFairID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.JobPosting
	for rows.Next() {
		var (
			j    types.JobPosting
			fair sql.NullInt64
		)
		if err := rows.Scan(&j.PostID, &j.Title, &j.Description, &j.SkillsRequired,
			&j.Category, &j.Location, &j.JobType, &j.SalaryRange, &j.EmployerID,
			&j.CompanyName, &fair); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot job: %w", err)
		}
		if fair.Valid {
			id := fair.Int64
			j.JobFairID = &id
		}
		j.Tags = []string{}
		j.DisabilityTags = []string{}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot jobs: %w", err)
	}
	if len(jobs) == 0 {
		return jobs, nil
	}

	byID := make(map[int64]*types.JobPosting, len(jobs))
	for i := range jobs {
		byID[jobs[i].PostID] = &jobs[i]
	}
	if err := s.attachLabels(ctx, "job_tags", func(id int64, name string) {
		if j, ok := byID[id]; ok {
			j.Tags = append(j.Tags, name)
		}
	}); err != nil {
		return nil, err
	}
	if err := s.attachLabels(ctx, "job_disability_tags", func(id int64, name string) {
		if j, ok := byID[id]; ok {
			j.DisabilityTags = append(j.DisabilityTags, name)
		}
	}); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) attachLabels(ctx context.Context, table string, add func(id int64, name string)) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id, name FROM `+table+` ORDER BY post_id, position`)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		add(id, name)
	}
	return rows.Err()
}

// GetCandidateProfile returns the stored profile for userID or an error
// wrapping ranking.ErrCandidateNotFound.
func (s *Store) GetCandidateProfile(ctx context.Context, userID int64) (*types.CandidateProfile, error) {
	p := types.CandidateProfile{UserID: userID, Preferences: []string{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT disability_type, skills FROM candidates WHERE user_id = ?`,
		userID,
	).Scan(&p.DisabilityType, &p.Skills)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d is not in the snapshot", ranking.ErrCandidateNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get snapshot candidate: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM candidate_preferences WHERE user_id = ? ORDER BY position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate preferences: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan candidate preference: %w", err)
		}
		p.Preferences = append(p.Preferences, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidate preferences: %w", err)
	}
	return &p, nil
}

// ListCandidateIDs returns every user id in the snapshot in ascending order.
func (s *Store) ListCandidateIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM candidates ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot candidates: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullable(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
