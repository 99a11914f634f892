package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hanapwede/job-recommender/internal/types"
)

// ImportStats counts the rows written by Import.
type ImportStats struct {
	Jobs       int `json:"jobs"`
	Candidates int `json:"candidates"`
}

// Import replaces the snapshot contents with jobs and candidates in a single
// transaction. Tag and preference order is preserved.
func (s *Store) Import(ctx context.Context, jobs []types.JobPosting, candidates []types.CandidateProfile) (ImportStats, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"job_tags", "job_disability_tags", "jobs", "candidate_preferences", "candidates"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return ImportStats{}, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i := range jobs {
		if err := insertJob(ctx, tx, &jobs[i]); err != nil {
			return ImportStats{}, err
		}
	}
	for i := range candidates {
		if err := insertCandidate(ctx, tx, &candidates[i]); err != nil {
			return ImportStats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportStats{}, fmt.Errorf("failed to commit import: %w", err)
	}
	return ImportStats{Jobs: len(jobs), Candidates: len(candidates)}, nil
}

func insertJob(ctx context.Context, tx *sql.Tx, j *types.JobPosting) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO jobs (post_id, job_title, job_desc, skills_req, category, location,
		                  job_type, salary_range, posted_by, comp_name, job_fair_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.PostID, j.Title, j.Description, j.SkillsRequired, j.Category, j.Location,
		j.JobType, j.SalaryRange, j.EmployerID, j.CompanyName, nullable(j.JobFairID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job %d: %w", j.PostID, err)
	}
	if err := insertLabels(ctx, tx, "job_tags", "post_id", j.PostID, j.Tags); err != nil {
		return err
	}
	return insertLabels(ctx, tx, "job_disability_tags", "post_id", j.PostID, j.DisabilityTags)
}

func insertCandidate(ctx context.Context, tx *sql.Tx, c *types.CandidateProfile) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO candidates (user_id, disability_type, skills) VALUES (?, ?, ?)`,
		c.UserID, c.DisabilityType, c.Skills,
	)
	if err != nil {
		return fmt.Errorf("failed to insert candidate %d: %w", c.UserID, err)
	}
	return insertLabels(ctx, tx, "candidate_preferences", "user_id", c.UserID, c.Preferences)
}

func insertLabels(ctx context.Context, tx *sql.Tx, table, owner string, id int64, names []string) error {
	for pos, name := range names {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (`+owner+`, position, name) VALUES (?, ?, ?)`,
			id, pos, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s for %d: %w", table, id, err)
		}
	}
	return nil
}
